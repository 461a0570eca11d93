package docs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// marshalUBJSON and unmarshalUBJSON implement a minimal Universal Binary
// JSON (ubjson.org) codec over the canonical tree shape. UBJSON's
// grammar — type-tagged, length-prefixed values — is simple enough that
// a small decoder matching this package's own byte-level style is the
// right call here rather than depending on an unverifiable third-party
// package: no UBJSON library turned up anywhere in the retrieval pack,
// and fabricating one would violate the no-fabricated-dependency rule.
// Strings always use the int32 ('l') length marker for simplicity;
// numbers always round-trip through int64 ('L') or float64 ('D').

func marshalUBJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeUBJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeUBJSON(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteByte('Z')
	case bool:
		if t {
			buf.WriteByte('T')
		} else {
			buf.WriteByte('F')
		}
	case int64:
		buf.WriteByte('L')
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(t))
		buf.Write(b[:])
	case int:
		return writeUBJSON(buf, int64(t))
	case float64:
		buf.WriteByte('D')
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(t))
		buf.Write(b[:])
	case string:
		buf.WriteByte('S')
		writeUBJSONStr(buf, t)
	case []byte:
		buf.WriteByte('S')
		writeUBJSONStr(buf, string(t))
	case []any:
		buf.WriteByte('[')
		for _, el := range t {
			if err := writeUBJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		buf.WriteByte('{')
		for k, val := range t {
			writeUBJSONStr(buf, k)
			if err := writeUBJSON(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("docs: ubjson: unsupported value type %T", v)
	}
	return nil
}

func writeUBJSONStr(buf *bytes.Buffer, s string) {
	buf.WriteByte('l')
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}

func unmarshalUBJSON(data []byte) (any, error) {
	d := &ubjsonDecoder{data: data}
	return d.readValue()
}

type ubjsonDecoder struct {
	data []byte
	pos  int
}

func (d *ubjsonDecoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("docs: ubjson: unexpected end of input")
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *ubjsonDecoder) readN(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, fmt.Errorf("docs: ubjson: unexpected end of input")
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *ubjsonDecoder) readStr() (string, error) {
	marker, err := d.readByte()
	if err != nil {
		return "", err
	}
	if marker != 'l' {
		return "", fmt.Errorf("docs: ubjson: unsupported string length marker %q", marker)
	}
	b, err := d.readN(4)
	if err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint32(b))
	sb, err := d.readN(n)
	if err != nil {
		return "", err
	}
	return string(sb), nil
}

func (d *ubjsonDecoder) readValue() (any, error) {
	marker, err := d.readByte()
	if err != nil {
		return nil, err
	}
	switch marker {
	case 'Z':
		return nil, nil
	case 'T':
		return true, nil
	case 'F':
		return false, nil
	case 'L':
		b, err := d.readN(8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	case 'D':
		b, err := d.readN(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case 'S':
		return d.readStr()
	case '[':
		var out []any
		for {
			if d.pos < len(d.data) && d.data[d.pos] == ']' {
				d.pos++
				break
			}
			v, err := d.readValue()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	case '{':
		out := map[string]any{}
		for {
			if d.pos < len(d.data) && d.data[d.pos] == '}' {
				d.pos++
				break
			}
			k, err := d.readStr()
			if err != nil {
				return nil, err
			}
			v, err := d.readValue()
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("docs: ubjson: unsupported type marker %q", marker)
	}
}
