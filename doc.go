/*
Package polykv implements the core of a multi-modal key-value engine: a
single sorted substrate shared by three data modalities — opaque blobs,
semi-structured documents (see the docs subpackage), and vertex/edge
graphs (see the graph subpackage).

# Technical Details

**Collections.**
Every value lives at an Address, a (CollectionId, Key) pair. Collections
are the substrate's namespacing mechanism — they map onto Bolt buckets,
Badger key prefixes, or a plain map depending on backend. CollectionId 0
is reserved as the "main collection" sentinel.

**Keys.**
Key is a signed 64-bit integer. math.MinInt64 is reserved as the
"unknown/end-of-range" sentinel used as an exclusive upper scan bound.
Keys are encoded as order-preserving 8-byte big-endian values (sign bit
flipped) so substrate byte comparison matches signed integer comparison.

**Batched data-plane.**
Every read/write accepts a slice of Addresses (the docs layer can
broadcast a field name via a StridedView). BlobRead (blob.go) sorts a
permutation of the request indices by Address, issues one substrate Get
per distinct Address, and scatters the results back to the caller's
original order.

**Arena.**
An Arena is a per-call scratch allocator with named regions; docs.Gather
carves its string/binary column tape from one. Arenas are single-owner
and may be hoisted across calls by the caller for amortization.

## Binary encoding

**Address key encoding.** Each CollectionId selects its own sub-bucket
(named by the id in hex) under one shared root bucket; within it the
stored key is the Key alone (8 bytes big-endian, sign bit flipped).

**Value**: opaque bytes for blobs; canonical msgpack-family encoding for
documents (see package docs); a fixed little-endian adjacency record for
graphs (see package graph).
*/
package polykv
