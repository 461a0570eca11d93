package graph

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/nkanaev/polykv"
)

// Edge is one directed edge to upsert or remove. EdgeID may be AnyEdge
// when the caller's graph configuration doesn't assign edge identity.
type Edge struct {
	Source polykv.Key
	Target polykv.Key
	EdgeID polykv.Key
}

// Role selects which half of a vertex's adjacency list an operation
// considers: RoleSource is the out-list (this vertex is the edge's
// source), RoleTarget the in-list, RoleAny both.
type Role int

const (
	RoleSource Role = iota
	RoleTarget
	RoleAny
)

func vertexAddr(collection polykv.CollectionId, k polykv.Key) polykv.Address {
	return polykv.Address{Collection: collection, Key: k}
}

// readEntries loads and decodes the adjacency entries for keys in one
// polykv.BlobRead call. An absent vertex decodes to the zero Entry,
// which is indistinguishable from "present but empty" — a state
// writeEntries never persists (see below), so the two cases coincide.
func readEntries(tx *polykv.Tx, collection polykv.CollectionId, keys []polykv.Key) (map[polykv.Key]Entry, error) {
	addrs := make([]polykv.Address, len(keys))
	for i, k := range keys {
		addrs[i] = vertexAddr(collection, k)
	}
	read, err := polykv.BlobRead(tx, polykv.ReadBatch{Addrs: addrs}, polykv.CallOptions{})
	if err != nil {
		return nil, err
	}
	out := make(map[polykv.Key]Entry, len(keys))
	for i, k := range keys {
		if !read.Present[i] {
			out[k] = Entry{}
			continue
		}
		e, err := decodeEntry(read.Values[i])
		if err != nil {
			return nil, err
		}
		out[k] = e
	}
	return out, nil
}

// writeEntries applies entries to collection in one polykv.BlobWrite
// call, in order. A vertex whose entry has become fully empty is
// deleted rather than persisted as a zero-length record, so "vertex
// absent" and "vertex present with no edges" never diverge.
func writeEntries(tx *polykv.Tx, collection polykv.CollectionId, entries map[polykv.Key]Entry, order []polykv.Key) error {
	addrs := make([]polykv.Address, 0, len(order))
	values := make([][]byte, 0, len(order))
	for _, k := range order {
		e := entries[k]
		addrs = append(addrs, vertexAddr(collection, k))
		if len(e.Out) == 0 && len(e.In) == 0 {
			values = append(values, nil)
			continue
		}
		values = append(values, encodeEntry(nil, e))
	}
	return polykv.BlobWrite(tx, polykv.WriteBatch{Addrs: addrs, Values: values}, polykv.CallOptions{})
}

// loadTouchedVertices gathers the distinct vertices referenced by
// edges, preserving first-occurrence order, and loads their current
// entries in one batched read.
func loadTouchedVertices(tx *polykv.Tx, collection polykv.CollectionId, edges []Edge) ([]polykv.Key, map[polykv.Key]Entry, error) {
	seen := make(map[polykv.Key]bool)
	var order []polykv.Key
	add := func(k polykv.Key) {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	for _, e := range edges {
		add(e.Source)
		add(e.Target)
	}
	entries, err := readEntries(tx, collection, order)
	return order, entries, err
}

// UpsertEdges applies edges to collection's adjacency index (spec
// §4.4's upsert_edges): for each (u,v,e), (v,e) is appended to u's
// out-list and (u,e) to v's in-list. When u == v, both appends land on
// the same vertex entry, producing the self-loop's required
// degree(v,source)=degree(v,target)=1 from that one record.
func UpsertEdges(tx *polykv.Tx, collection polykv.CollectionId, edges []Edge) error {
	if len(edges) == 0 {
		return nil
	}
	order, entries, err := loadTouchedVertices(tx, collection, edges)
	if err != nil {
		return err
	}

	for _, e := range edges {
		src := entries[e.Source]
		src.Out = append(src.Out, Record{Neighbor: e.Target, EdgeID: e.EdgeID})
		entries[e.Source] = src

		dst := entries[e.Target]
		dst.In = append(dst.In, Record{Neighbor: e.Source, EdgeID: e.EdgeID})
		entries[e.Target] = dst
	}

	return writeEntries(tx, collection, entries, order)
}

// RemoveEdges removes edges from collection's adjacency index,
// symmetric to UpsertEdges. An edge not present is silently skipped
// (spec §4.4's remove_edges).
func RemoveEdges(tx *polykv.Tx, collection polykv.CollectionId, edges []Edge) error {
	if len(edges) == 0 {
		return nil
	}
	order, entries, err := loadTouchedVertices(tx, collection, edges)
	if err != nil {
		return err
	}

	for _, e := range edges {
		src := entries[e.Source]
		src.Out = removeRecord(src.Out, e.Target, e.EdgeID)
		entries[e.Source] = src

		dst := entries[e.Target]
		dst.In = removeRecord(dst.In, e.Source, e.EdgeID)
		entries[e.Target] = dst
	}

	return writeEntries(tx, collection, entries, order)
}

// removeRecord strips the first record matching neighbor (and, unless
// edgeID is AnyEdge, matching edgeID too), per spec §4.4's "an edge_id
// equal to the any-edge sentinel matches the first pair with the given
// (source,target)."
func removeRecord(list []Record, neighbor, edgeID polykv.Key) []Record {
	for i, r := range list {
		if r.Neighbor != neighbor {
			continue
		}
		if edgeID != AnyEdge && r.EdgeID != edgeID {
			continue
		}
		return append(list[:i], list[i+1:]...)
	}
	return list
}

// VertexRemoval is one vertex to remove from collection's adjacency
// index, along with the role filter selecting which half of its
// adjacency list the removal considers.
type VertexRemoval struct {
	Vertex polykv.Key
	Role   Role
}

// RemoveVertices implements spec §4.4's remove_vertex fan-out, batched
// across every vertex in removals as a single two-round-trip substrate
// exchange: one batched read of the removed vertices, one batched
// read-modify-write of every distinct neighbor they reference (with the
// removed vertices' own rewrite folded into that same write).
//
// Distinct-neighbor collection uses a 64-bit Roaring bitmap rather than
// a Go map, so a large fan-out doesn't pay per-key map overhead —
// generalized from hupe1980-vecgo's 32-bit LocalBitmap wrapper to the
// 64-bit roaring64.Bitmap variant, since a graph Key is a signed 64-bit
// integer rather than vecgo's 32-bit LocalID.
func RemoveVertices(tx *polykv.Tx, collection polykv.CollectionId, removals []VertexRemoval) error {
	if len(removals) == 0 {
		return nil
	}

	vertexKeys := make([]polykv.Key, len(removals))
	for i, r := range removals {
		vertexKeys[i] = r.Vertex
	}
	vertexEntries, err := readEntries(tx, collection, vertexKeys)
	if err != nil {
		return err
	}

	neighbors := roaring64.New()
	filtered := make([]Entry, len(removals))
	for i, r := range removals {
		e := vertexEntries[r.Vertex]
		switch r.Role {
		case RoleSource:
			for _, rec := range e.Out {
				neighbors.Add(uint64(rec.Neighbor))
			}
			filtered[i] = Entry{In: e.In}
		case RoleTarget:
			for _, rec := range e.In {
				neighbors.Add(uint64(rec.Neighbor))
			}
			filtered[i] = Entry{Out: e.Out}
		default: // RoleAny
			for _, rec := range e.Out {
				neighbors.Add(uint64(rec.Neighbor))
			}
			for _, rec := range e.In {
				neighbors.Add(uint64(rec.Neighbor))
			}
			filtered[i] = Entry{}
		}
	}

	removedSet := make(map[polykv.Key]bool, len(removals))
	for _, r := range removals {
		removedSet[r.Vertex] = true
	}
	var neighborKeys []polykv.Key
	it := neighbors.Iterator()
	for it.HasNext() {
		k := polykv.Key(it.Next())
		if !removedSet[k] {
			neighborKeys = append(neighborKeys, k)
		}
	}

	neighborEntries, err := readEntries(tx, collection, neighborKeys)
	if err != nil {
		return err
	}

	for _, r := range removals {
		e := vertexEntries[r.Vertex]
		if r.Role == RoleSource || r.Role == RoleAny {
			for _, rec := range e.Out {
				ne := neighborEntries[rec.Neighbor]
				ne.In = removeRecord(ne.In, r.Vertex, rec.EdgeID)
				neighborEntries[rec.Neighbor] = ne
			}
		}
		if r.Role == RoleTarget || r.Role == RoleAny {
			for _, rec := range e.In {
				ne := neighborEntries[rec.Neighbor]
				ne.Out = removeRecord(ne.Out, r.Vertex, rec.EdgeID)
				neighborEntries[rec.Neighbor] = ne
			}
		}
	}

	order := append([]polykv.Key{}, neighborKeys...)
	inOrder := make(map[polykv.Key]bool, len(order)+len(removals))
	for _, k := range order {
		inOrder[k] = true
	}
	for i, r := range removals {
		if !inOrder[r.Vertex] {
			inOrder[r.Vertex] = true
			order = append(order, r.Vertex)
		}
		neighborEntries[r.Vertex] = filtered[i]
	}

	return writeEntries(tx, collection, neighborEntries, order)
}
