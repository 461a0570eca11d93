package polykv

import "testing"

func TestAddress_Less(t *testing.T) {
	cases := []struct {
		a, b Address
		want bool
	}{
		{Address{1, 5}, Address{2, 0}, true},
		{Address{2, 0}, Address{1, 5}, false},
		{Address{1, -5}, Address{1, 5}, true},
		{Address{1, 5}, Address{1, 5}, false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Fatalf("%+v.Less(%+v) = %v, wanted %v", c.a, c.b, got, c.want)
		}
	}
}

func TestAddress_Equal(t *testing.T) {
	a := Address{Collection: 1, Key: 5}
	b := Address{Collection: 1, Key: 5}
	c := Address{Collection: 1, Key: 6}
	if !a.Equal(b) {
		t.Fatalf("a.Equal(b) = false, wanted true")
	}
	if a.Equal(c) {
		t.Fatalf("a.Equal(c) = true, wanted false")
	}
}

func TestFlipSign_OrderMatchesSigned(t *testing.T) {
	keys := []Key{NoKey, -100, -1, 0, 1, 100, MaxKeyForTest}
	for i := 0; i+1 < len(keys); i++ {
		lo, hi := keys[i], keys[i+1]
		if !(flipSign(uint64(lo)) < flipSign(uint64(hi))) {
			t.Fatalf("flipSign(%d)=%d should sort before flipSign(%d)=%d",
				lo, flipSign(uint64(lo)), hi, flipSign(uint64(hi)))
		}
	}
}

// MaxKeyForTest avoids importing math in the test just for one constant.
const MaxKeyForTest Key = 1<<63 - 1
