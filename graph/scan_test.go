package graph

import (
	"testing"

	"github.com/nkanaev/polykv"
)

func TestVertexCursor_IteratesAllVerticesInOrder(t *testing.T) {
	db := newTestDB(t)
	edges := make([]Edge, 0, 10)
	for k := polykv.Key(1); k <= 10; k++ {
		edges = append(edges, Edge{Source: k, Target: k + 100, EdgeID: AnyEdge})
	}
	err := db.Update(func(tx *polykv.Tx) error {
		return UpsertEdges(tx, testCollection, edges)
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		cur := NewVertexCursor(tx, testCollection, polykv.NoKey, 3) // small window forces multiple BlobScan calls
		var got []polykv.Key
		for {
			k, ok, err := cur.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			got = append(got, k)
		}
		if len(got) != 20 {
			t.Fatalf("VertexCursor yielded %d keys, wanted 20", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i] <= got[i-1] {
				t.Fatalf("keys not strictly increasing at index %d: %v", i, got)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestVertexCursor_EmptyCollection(t *testing.T) {
	db := newTestDB(t)
	err := db.View(func(tx *polykv.Tx) error {
		cur := NewVertexCursor(tx, testCollection, polykv.NoKey, 0)
		_, ok, err := cur.Next()
		if err != nil {
			return err
		}
		if ok {
			t.Fatalf("Next() on empty collection ok = true, wanted false")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestVertexCursor_ResumesFromStart(t *testing.T) {
	db := newTestDB(t)
	err := db.Update(func(tx *polykv.Tx) error {
		return UpsertEdges(tx, testCollection, []Edge{
			{Source: 1, Target: 100, EdgeID: AnyEdge},
			{Source: 5, Target: 100, EdgeID: AnyEdge},
			{Source: 9, Target: 100, EdgeID: AnyEdge},
		})
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		cur := NewVertexCursor(tx, testCollection, polykv.Key(2), 64)
		var got []polykv.Key
		for {
			k, ok, err := cur.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			got = append(got, k)
		}
		// Vertices are 1, 5, 9, 100 on disk; starting at key 2 should
		// skip 1 but include everything from 5 on.
		if len(got) < 3 {
			t.Fatalf("got %v, wanted at least [5 9 100]", got)
		}
		if got[0] != 5 {
			t.Fatalf("first resumed key = %d, wanted 5", got[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}
