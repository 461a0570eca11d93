package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// Format names one of the exchange encodings a document can cross the
// API boundary in. The internal at-rest encoding is always
// FormatCanonical (msgpack-family); every other format is translated
// to/from the canonical in-memory tree on the way in or out.
type Format int

const (
	FormatCanonical Format = iota
	FormatJSON
	FormatJSONPatch
	FormatJSONMergePatch
	FormatMsgpack
	FormatBSON
	FormatCBOR
	FormatUBJSON
	FormatRaw
)

func (f Format) String() string {
	switch f {
	case FormatCanonical:
		return "canonical"
	case FormatJSON:
		return "json"
	case FormatJSONPatch:
		return "json_patch"
	case FormatJSONMergePatch:
		return "json_merge_patch"
	case FormatMsgpack:
		return "msgpack"
	case FormatBSON:
		return "bson"
	case FormatCBOR:
		return "cbor"
	case FormatUBJSON:
		return "ubjson"
	case FormatRaw:
		return "raw"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// isPatchFormat reports whether f carries patch semantics rather than a
// plain value.
func isPatchFormat(f Format) bool {
	return f == FormatJSONPatch || f == FormatJSONMergePatch
}

// Marshal encodes tree (a canonical value: map[string]any, []any, or a
// scalar) into format f. Text JSON output is NUL-terminated per spec
// §4.2; binary forms are not.
func Marshal(tree any, f Format) ([]byte, error) {
	switch f {
	case FormatCanonical, FormatMsgpack:
		return msgpack.Marshal(tree)
	case FormatJSON:
		b, err := json.Marshal(tree)
		if err != nil {
			return nil, err
		}
		return append(b, 0), nil
	case FormatBSON:
		// bson.Marshal requires a document (map/struct) at the top
		// level; a bare scalar is wrapped and unwrapped transparently
		// by the caller via the "v" member.
		return bson.Marshal(bson.M{"v": tree})
	case FormatCBOR:
		return cbor.Marshal(tree)
	case FormatUBJSON:
		return marshalUBJSON(tree)
	case FormatRaw:
		b, ok := tree.([]byte)
		if !ok {
			return nil, fmt.Errorf("docs: raw format requires []byte, got %T", tree)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("docs: format %v has no value representation", f)
	}
}

// Unmarshal decodes data (encoded per f) into a canonical tree.
func Unmarshal(data []byte, f Format) (any, error) {
	switch f {
	case FormatCanonical, FormatMsgpack:
		var v any
		if err := msgpack.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return normalizeMsgpackTree(v), nil
	case FormatJSON:
		data = trimNUL(data)
		var v any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return normalizeJSONNumbers(v), nil
	case FormatBSON:
		var wrapper bson.M
		if err := bson.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		return normalizeBSONTree(wrapper["v"]), nil
	case FormatCBOR:
		var v any
		if err := cbor.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return normalizeMsgpackTree(v), nil
	case FormatUBJSON:
		return unmarshalUBJSON(data)
	case FormatRaw:
		return append([]byte(nil), data...), nil
	default:
		return nil, fmt.Errorf("docs: format %v has no value representation", f)
	}
}

func trimNUL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return b[:n-1]
	}
	return b
}

// normalizeMsgpackTree recursively converts the map[interface{}]interface{}
// shape msgpack/cbor decoding into `any` can produce into the
// map[string]any/[]any canonical shape the rest of the package assumes
// (the same shape encoding/json produces), widening every integer/float
// leaf to int64/float64 the same way normalizeJSONNumbers does — msgpack
// and cbor both decode non-negative integers to unsigned Go types (cbor's
// FormatCBOR path decodes a non-negative integer to uint64) and
// fixed-width ints/floats to their exact width, none of which
// docs/gather.go's decision table dispatches on directly.
func normalizeMsgpackTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeMsgpackTree(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalizeMsgpackTree(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeMsgpackTree(child)
		}
		return t
	default:
		return widenNumericScalar(t)
	}
}

func normalizeBSONTree(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = normalizeBSONTree(child)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalizeBSONTree(child)
		}
		return out
	default:
		return normalizeMsgpackTree(t)
	}
}

// widenNumericScalar widens any of msgpack/cbor/bson's decoded integer or
// float Go types into int64 (or, for a uint64 too large to fit, float64)
// or float64, matching the two numeric kinds normalizeJSONNumbers already
// produces for JSON and docs/gather.go's decision table dispatches on.
func widenNumericScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return widenUint64(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return widenUint64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return v
	}
}

func widenUint64(n uint64) any {
	if n <= math.MaxInt64 {
		return int64(n)
	}
	return float64(n)
}

// normalizeJSONNumbers converts json.Number leaves (from UseNumber) into
// int64 or float64, matching the numeric kinds the gather decision table
// in §4.3 dispatches on.
func normalizeJSONNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeJSONNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalizeJSONNumbers(child)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	default:
		return t
	}
}
