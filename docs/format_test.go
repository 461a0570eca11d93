package docs

import (
	"reflect"
	"testing"
)

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	tree := map[string]any{
		"name":  "alice",
		"age":   int64(30),
		"score": 1.5,
		"tags":  []any{"a", "b"},
	}
	for _, f := range []Format{FormatCanonical, FormatMsgpack, FormatJSON, FormatBSON, FormatCBOR, FormatUBJSON} {
		t.Run(f.String(), func(t *testing.T) {
			enc, err := Marshal(tree, f)
			if err != nil {
				t.Fatalf("Marshal(%v) error: %v", f, err)
			}
			got, err := Unmarshal(enc, f)
			if err != nil {
				t.Fatalf("Unmarshal(%v) error: %v", f, err)
			}
			if !reflect.DeepEqual(got, tree) {
				t.Fatalf("Unmarshal(Marshal(tree)) = %#v, wanted %#v", got, tree)
			}
		})
	}
}

func TestMarshal_JSONIsNULTerminated(t *testing.T) {
	enc, err := Marshal(map[string]any{"a": int64(1)}, FormatJSON)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if n := len(enc); n == 0 || enc[n-1] != 0 {
		t.Fatalf("Marshal(FormatJSON) = %q, wanted trailing NUL", enc)
	}
}

func TestMarshal_RawRequiresBytes(t *testing.T) {
	if _, err := Marshal("not bytes", FormatRaw); err == nil {
		t.Fatalf("Marshal(non-[]byte, FormatRaw) succeeded, wanted error")
	}
	enc, err := Marshal([]byte("xyz"), FormatRaw)
	if err != nil {
		t.Fatalf("Marshal([]byte, FormatRaw) error: %v", err)
	}
	if string(enc) != "xyz" {
		t.Fatalf("Marshal(FormatRaw) = %q, wanted %q", enc, "xyz")
	}
}

func TestUnmarshal_JSONUsesInt64ForIntegers(t *testing.T) {
	got, err := Unmarshal([]byte(`{"n": 42}`), FormatJSON)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Unmarshal result type = %T, wanted map[string]any", got)
	}
	n, ok := m["n"].(int64)
	if !ok {
		t.Fatalf("m[n] type = %T, wanted int64", m["n"])
	}
	if n != 42 {
		t.Fatalf("m[n] = %d, wanted 42", n)
	}
}

func TestUnmarshal_MsgpackNormalizesMapKeys(t *testing.T) {
	enc, err := Marshal(map[string]any{"x": map[string]any{"y": int64(1)}}, FormatMsgpack)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	got, err := Unmarshal(enc, FormatMsgpack)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	top, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("top type = %T, wanted map[string]any", got)
	}
	if _, ok := top["x"].(map[string]any); !ok {
		t.Fatalf("top[x] type = %T, wanted map[string]any", top["x"])
	}
}
