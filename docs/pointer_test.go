package docs

import (
	"reflect"
	"testing"
)

func TestParsePointer(t *testing.T) {
	cases := []struct {
		in   string
		want Pointer
	}{
		{"", nil},
		{"/a", Pointer{"a"}},
		{"/a/b", Pointer{"a", "b"}},
		{"/a~1b", Pointer{"a/b"}},
		{"/a~0b", Pointer{"a~b"}},
		{"/0/1", Pointer{"0", "1"}},
	}
	for _, c := range cases {
		got, err := ParsePointer(c.in)
		if err != nil {
			t.Fatalf("ParsePointer(%q) error: %v", c.in, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParsePointer(%q) = %#v, wanted %#v", c.in, got, c.want)
		}
	}
}

func TestParsePointer_RejectsMissingLeadingSlash(t *testing.T) {
	if _, err := ParsePointer("a/b"); err == nil {
		t.Fatalf("ParsePointer(%q) succeeded, wanted error", "a/b")
	}
}

func TestPointer_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "/a", "/a/b", "/a~1b", "/a~0b"} {
		p, err := ParsePointer(s)
		if err != nil {
			t.Fatalf("ParsePointer(%q) error: %v", s, err)
		}
		if got := p.String(); got != s {
			t.Fatalf("ParsePointer(%q).String() = %q, wanted %q", s, got, s)
		}
	}
}

func TestFieldPointer(t *testing.T) {
	cases := []struct {
		in   string
		want Pointer
	}{
		{"", nil},
		{"name", Pointer{"name"}},
		{"/a/b", Pointer{"a", "b"}},
	}
	for _, c := range cases {
		got, err := FieldPointer(c.in)
		if err != nil {
			t.Fatalf("FieldPointer(%q) error: %v", c.in, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("FieldPointer(%q) = %#v, wanted %#v", c.in, got, c.want)
		}
	}
}

func TestPointer_Get(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{"b": []any{int64(1), int64(2), int64(3)}},
	}
	p := Pointer{"a", "b", "1"}
	got, ok := p.Get(tree)
	if !ok {
		t.Fatalf("Get(%v) ok = false, wanted true", p)
	}
	if got != int64(2) {
		t.Fatalf("Get(%v) = %v, wanted 2", p, got)
	}

	missing := Pointer{"a", "z"}
	if _, ok := missing.Get(tree); ok {
		t.Fatalf("Get(%v) ok = true, wanted false", missing)
	}
}

func TestPointer_SetCreatesIntermediateObjects(t *testing.T) {
	var tree any
	p := Pointer{"a", "b"}
	got, err := p.Set(tree, "value")
	if err != nil {
		t.Fatalf("Set error: %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": "value"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Set result = %#v, wanted %#v", got, want)
	}
}

func TestPointer_SetArrayIndexOutOfRangeErrors(t *testing.T) {
	tree := map[string]any{"a": []any{int64(1)}}
	p := Pointer{"a", "5"}
	if _, err := p.Set(tree, "x"); err == nil {
		t.Fatalf("Set out-of-range index succeeded, wanted error")
	}
}

func TestPointer_SetWholeDocument(t *testing.T) {
	got, err := Pointer(nil).Set(map[string]any{"old": 1}, "new")
	if err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if got != "new" {
		t.Fatalf("Set(nil pointer) = %v, wanted %q", got, "new")
	}
}
