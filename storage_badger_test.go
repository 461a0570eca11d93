package polykv

import (
	"bytes"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func newBadgerTestDB(t *testing.T) *DB {
	t.Helper()
	bopt := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	bdb, err := badger.Open(bopt)
	if err != nil {
		t.Fatalf("badger.Open error: %v", err)
	}
	db := &DB{st: newBadgerStorage(bdb)}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerStorage_PutGetDelete(t *testing.T) {
	db := newBadgerTestDB(t)
	addr := Address{0, 7}

	if err := db.Update(func(tx *Tx) error {
		return BlobWrite(tx, WriteBatch{Addrs: []Address{addr}, Values: [][]byte{[]byte("hello")}}, CallOptions{})
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := db.View(func(tx *Tx) error {
		res, err := BlobRead(tx, ReadBatch{Addrs: []Address{addr}}, CallOptions{})
		if err != nil {
			return err
		}
		if !res.Present[0] || !bytes.Equal(res.Values[0], []byte("hello")) {
			t.Fatalf("got Present=%v Values=%q, wanted present %q", res.Present[0], res.Values[0], "hello")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if err := db.Update(func(tx *Tx) error {
		return BlobWrite(tx, WriteBatch{Addrs: []Address{addr}, Values: [][]byte{nil}}, CallOptions{})
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = db.View(func(tx *Tx) error {
		res, err := BlobRead(tx, ReadBatch{Addrs: []Address{addr}}, CallOptions{})
		if err != nil {
			return err
		}
		if res.Present[0] {
			t.Fatalf("Present = true after delete, wanted false")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read after delete: %v", err)
	}
}

func TestBadgerStorage_BucketIsolation(t *testing.T) {
	db := newBadgerTestDB(t)
	err := db.Update(func(tx *Tx) error {
		a, err := tx.CreateBucket("bucketA", "")
		if err != nil {
			return err
		}
		b, err := tx.CreateBucket("bucketB", "")
		if err != nil {
			return err
		}
		if err := a.Put([]byte("k"), []byte("from-a")); err != nil {
			return err
		}
		if err := b.Put([]byte("k"), []byte("from-b")); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = db.View(func(tx *Tx) error {
		a := tx.Bucket("bucketA", "")
		b := tx.Bucket("bucketB", "")
		if got := a.Get([]byte("k")); !bytes.Equal(got, []byte("from-a")) {
			t.Fatalf("bucketA[k] = %q, wanted %q", got, "from-a")
		}
		if got := b.Get([]byte("k")); !bytes.Equal(got, []byte("from-b")) {
			t.Fatalf("bucketB[k] = %q, wanted %q", got, "from-b")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestBadgerStorage_CursorForwardAndReverse(t *testing.T) {
	db := newBadgerTestDB(t)
	err := db.Update(func(tx *Tx) error {
		bucket, err := tx.CreateBucket("scan", "")
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
		bucket := tx.Bucket("scan", "")
		fwd := collect(RawOO(), bucket)
		want := []string{"a", "b", "c"}
		for i := range want {
			if fwd[i] != want[i] {
				t.Fatalf("forward = %v, wanted %v", fwd, want)
			}
		}
		rev := collect(RawOO().Reversed(), bucket)
		wantRev := []string{"c", "b", "a"}
		for i := range wantRev {
			if rev[i] != wantRev[i] {
				t.Fatalf("reverse = %v, wanted %v", rev, wantRev)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

func TestBadgerStorage_DeleteBucketRemovesAllKeys(t *testing.T) {
	db := newBadgerTestDB(t)
	err := db.Update(func(tx *Tx) error {
		bucket, err := tx.CreateBucket("gone", "sub")
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte("x"), []byte("y")); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update(seed) error: %v", err)
	}

	err = db.Update(func(tx *Tx) error {
		return tx.DeleteBucket("gone", "sub")
	})
	if err != nil {
		t.Fatalf("Update(delete) error: %v", err)
	}

	err = db.View(func(tx *Tx) error {
		if b := tx.Bucket("gone", "sub"); b != nil {
			t.Fatalf("Bucket still present after DeleteBucket")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}
