package polykv

import (
	"path/filepath"
	"testing"
)

func newBoltTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polykv.bolt")
	db, err := Open(path, Options{Backend: BackendBolt, IsTesting: true})
	if err != nil {
		t.Fatalf("Open(bolt) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

// TestBoltStorage_SurvivesCloseAndReopen is the one property a file-backed
// backend has that BackendMem and an in-memory BackendBadger can't cover:
// data written before Close must still be there after Open'ing the same
// path again.
func TestBoltStorage_SurvivesCloseAndReopen(t *testing.T) {
	db, path := newBoltTestDB(t)
	addr := Address{Collection: 1, Key: 42}

	if err := db.Update(func(tx *Tx) error {
		return BlobWrite(tx, WriteBatch{Addrs: []Address{addr}, Values: [][]byte{[]byte("hello")}}, CallOptions{})
	}); err != nil {
		t.Fatalf("Update(write) error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened, err := Open(path, Options{Backend: BackendBolt, IsTesting: true})
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	err = reopened.View(func(tx *Tx) error {
		res, err := BlobRead(tx, ReadBatch{Addrs: []Address{addr}}, CallOptions{})
		if err != nil {
			return err
		}
		if !res.Present[0] || string(res.Values[0]) != "hello" {
			t.Fatalf("after reopen: present=%v value=%q, wanted present with %q", res.Present[0], res.Values[0], "hello")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestBoltStorage_BucketIsolation(t *testing.T) {
	db, _ := newBoltTestDB(t)
	err := db.Update(func(tx *Tx) error {
		if err := BlobWrite(tx, WriteBatch{
			Addrs:  []Address{{Collection: 1, Key: 1}},
			Values: [][]byte{[]byte("in collection 1")},
		}, CallOptions{}); err != nil {
			return err
		}
		return BlobWrite(tx, WriteBatch{
			Addrs:  []Address{{Collection: 2, Key: 1}},
			Values: [][]byte{[]byte("in collection 2")},
		}, CallOptions{})
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *Tx) error {
		res, err := BlobRead(tx, ReadBatch{Addrs: []Address{{Collection: 1, Key: 1}, {Collection: 2, Key: 1}}}, CallOptions{})
		if err != nil {
			return err
		}
		if string(res.Values[0]) != "in collection 1" || string(res.Values[1]) != "in collection 2" {
			t.Fatalf("values = %q, %q, wanted distinct per-collection payloads", res.Values[0], res.Values[1])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestBoltStorage_CursorForwardAndReverse(t *testing.T) {
	db, _ := newBoltTestDB(t)
	err := db.Update(func(tx *Tx) error {
		bucket, err := tx.CreateBucket(rootBucketName, collectionSubBucket(1))
		if err != nil {
			return err
		}
		for _, k := range []string{"a", "b", "c"} {
			if err := bucket.Put([]byte(k), []byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *Tx) error {
		bucket := tx.Bucket(rootBucketName, collectionSubBucket(1))
		if bucket == nil {
			t.Fatalf("Bucket returned nil")
		}
		cur := bucket.Cursor()
		var fwd []string
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			fwd = append(fwd, string(k))
		}
		if len(fwd) != 3 || fwd[0] != "a" || fwd[2] != "c" {
			t.Fatalf("forward scan = %v, wanted [a b c]", fwd)
		}

		var rev []string
		for k, _ := cur.Last(); k != nil; k, _ = cur.Prev() {
			rev = append(rev, string(k))
		}
		if len(rev) != 3 || rev[0] != "c" || rev[2] != "a" {
			t.Fatalf("reverse scan = %v, wanted [c b a]", rev)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}
