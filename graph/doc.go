// Package graph implements the directed/undirected adjacency-index
// modality on top of polykv's blob layer: each vertex's outgoing and
// incoming edges are packed into one substrate value under its Key,
// and every operation here is a batched read-modify-write expressed in
// terms of polykv.BlobRead/polykv.BlobWrite.
//
// The package enforces no graph discipline of its own (directedness,
// multiplicity, self-loop policy) — those are the caller's concern; this
// package provides the primitives a wrapper composes them from.
package graph
