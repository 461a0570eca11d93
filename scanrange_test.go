package polykv

import (
	"testing"
)

func seedBucket(t *testing.T, tx *Tx, keys ...string) storageBucket {
	t.Helper()
	b, err := tx.CreateBucket("scanrange-test", "")
	if err != nil {
		t.Fatalf("CreateBucket error: %v", err)
	}
	for _, k := range keys {
		if err := b.Put([]byte(k), []byte(k)); err != nil {
			t.Fatalf("Put(%q) error: %v", k, err)
		}
	}
	return b
}

func collect(rang RawRange, bucket storageBucket) []string {
	var got []string
	cur := rang.newCursor(bucket.Cursor(), nil)
	for cur.Next() {
		got = append(got, string(cur.Key()))
	}
	return got
}

func TestRawRange_Bounds(t *testing.T) {
	db := newTestDB(t)
	err := db.Update(func(tx *Tx) error {
		bucket := seedBucket(t, tx, "a", "b", "c", "d", "e")

		cases := []struct {
			name string
			rang RawRange
			want []string
		}{
			{"OO", RawOO(), []string{"a", "b", "c", "d", "e"}},
			{"IO", RawIO([]byte("c")), []string{"c", "d", "e"}},
			{"EO", RawEO([]byte("c")), []string{"d", "e"}},
			{"OI", RawOI([]byte("c")), []string{"a", "b", "c"}},
			{"OE", RawOE([]byte("c")), []string{"a", "b"}},
			{"II", RawII([]byte("b"), []byte("d")), []string{"b", "c", "d"}},
			{"IE", RawIE([]byte("b"), []byte("d")), []string{"b", "c"}},
			{"EI", RawEI([]byte("b"), []byte("d")), []string{"c", "d"}},
			{"EE", RawEE([]byte("b"), []byte("d")), []string{"c"}},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				got := collect(c.rang, bucket)
				if len(got) != len(c.want) {
					t.Fatalf("got %v, wanted %v", got, c.want)
				}
				for i := range got {
					if got[i] != c.want[i] {
						t.Fatalf("got %v, wanted %v", got, c.want)
					}
				}
			})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestRawRange_Reversed(t *testing.T) {
	db := newTestDB(t)
	err := db.Update(func(tx *Tx) error {
		bucket := seedBucket(t, tx, "a", "b", "c")
		got := collect(RawOO().Reversed(), bucket)
		want := []string{"c", "b", "a"}
		if len(got) != len(want) {
			t.Fatalf("got %v, wanted %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("got %v, wanted %v", got, want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestRawRange_Prefixed(t *testing.T) {
	db := newTestDB(t)
	err := db.Update(func(tx *Tx) error {
		bucket := seedBucket(t, tx, "ax", "ay", "bz")
		got := collect(RawPrefix([]byte("a")), bucket)
		want := []string{"ax", "ay"}
		if len(got) != len(want) {
			t.Fatalf("got %v, wanted %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("got %v, wanted %v", got, want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
}
