package docs

import (
	"bytes"
	"reflect"
	"sort"
	"testing"

	"github.com/nkanaev/polykv"
)

func newTestDB(t *testing.T) *polykv.DB {
	t.Helper()
	db, err := polykv.Open("", polykv.Options{Backend: polykv.BackendMem})
	if err != nil {
		t.Fatalf("Open(mem) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustWriteDoc(t *testing.T, tx *polykv.Tx, addr polykv.Address, tree any) {
	t.Helper()
	enc, err := Marshal(tree, FormatCanonical)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	err = polykv.BlobWrite(tx, polykv.WriteBatch{Addrs: []polykv.Address{addr}, Values: [][]byte{enc}}, polykv.CallOptions{})
	if err != nil {
		t.Fatalf("BlobWrite error: %v", err)
	}
}

func TestWrite_WholeDocumentCanonicalPassThrough(t *testing.T) {
	db := newTestDB(t)
	addr := polykv.Address{Collection: 1, Key: 1}
	tree := map[string]any{"a": int64(1)}
	payload, err := Marshal(tree, FormatCanonical)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	err = db.Update(func(tx *polykv.Tx) error {
		req := WriteRequest{
			Addrs:    []polykv.Address{addr},
			Fields:   polykv.Broadcast("", 1),
			Payloads: [][]byte{payload},
			Format:   FormatCanonical,
		}
		return Write(tx, req, polykv.CallOptions{})
	})
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		res, err := Read(tx, ReadRequest{Addrs: []polykv.Address{addr}, Format: FormatCanonical})
		if err != nil {
			return err
		}
		got, err := Unmarshal(res.Payloads[0], FormatCanonical)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(got, tree) {
			t.Fatalf("got %#v, wanted %#v", got, tree)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestWrite_FieldReplaceViaJSON(t *testing.T) {
	db := newTestDB(t)
	addr := polykv.Address{Collection: 1, Key: 1}

	err := db.Update(func(tx *polykv.Tx) error {
		mustWriteDoc(t, tx, addr, map[string]any{"a": int64(1), "b": int64(2)})
		req := WriteRequest{
			Addrs:    []polykv.Address{addr},
			Fields:   polykv.Broadcast("/b", 1),
			Payloads: [][]byte{[]byte(`99`)},
			Format:   FormatJSON,
		}
		return Write(tx, req, polykv.CallOptions{})
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		res, err := Read(tx, ReadRequest{
			Addrs:  []polykv.Address{addr},
			Fields: polykv.Broadcast("", 1),
			Format: FormatCanonical,
		})
		if err != nil {
			return err
		}
		got, err := Unmarshal(res.Payloads[0], FormatCanonical)
		if err != nil {
			return err
		}
		want := map[string]any{"a": int64(1), "b": int64(99)}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %#v, wanted %#v", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestWrite_BroadcastFieldAppliesToEveryRow(t *testing.T) {
	db := newTestDB(t)
	addrs := []polykv.Address{{Collection: 1, Key: 1}, {Collection: 1, Key: 2}}

	err := db.Update(func(tx *polykv.Tx) error {
		for _, a := range addrs {
			mustWriteDoc(t, tx, a, map[string]any{"count": int64(0)})
		}
		req := WriteRequest{
			Addrs:    addrs,
			Fields:   polykv.Broadcast("/count", len(addrs)),
			Payloads: [][]byte{[]byte(`7`), []byte(`9`)},
			Format:   FormatJSON,
		}
		return Write(tx, req, polykv.CallOptions{})
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		res, err := Read(tx, ReadRequest{Addrs: addrs, Fields: polykv.Broadcast("/count", len(addrs)), Format: FormatJSON})
		if err != nil {
			return err
		}
		want := []string{"7", "9"}
		for i, w := range want {
			got := bytes.TrimRight(res.Payloads[i], "\x00")
			if string(got) != w {
				t.Fatalf("row %d: got %q, wanted %q", i, got, w)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestRead_MissingFieldReturnsNull(t *testing.T) {
	db := newTestDB(t)
	addr := polykv.Address{Collection: 1, Key: 1}

	err := db.Update(func(tx *polykv.Tx) error {
		mustWriteDoc(t, tx, addr, map[string]any{"a": int64(1)})
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		res, err := Read(tx, ReadRequest{
			Addrs:  []polykv.Address{addr},
			Fields: polykv.Broadcast("/missing", 1),
			Format: FormatCanonical,
		})
		if err != nil {
			return err
		}
		got, err := Unmarshal(res.Payloads[0], FormatCanonical)
		if err != nil {
			return err
		}
		if got != nil {
			t.Fatalf("missing field = %#v, wanted nil", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestGist_CollectsLeafPaths(t *testing.T) {
	db := newTestDB(t)
	addr := polykv.Address{Collection: 1, Key: 1}

	err := db.Update(func(tx *polykv.Tx) error {
		mustWriteDoc(t, tx, addr, map[string]any{
			"name": "alice",
			"tags": []any{"a", "b"},
			"meta": map[string]any{},
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *polykv.Tx) error {
		paths, err := Gist(tx, []polykv.Address{addr})
		if err != nil {
			return err
		}
		want := []string{"/meta", "/name", "/tags/0", "/tags/1"}
		sort.Strings(paths)
		if !reflect.DeepEqual(paths, want) {
			t.Fatalf("Gist = %v, wanted %v", paths, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}
