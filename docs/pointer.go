package docs

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer is a parsed JSON Pointer (RFC 6901): a sequence of already
// unescaped reference tokens navigating a canonical tree
// (map[string]any / []any / scalars — the shape encoding/json.Unmarshal
// produces into `any`).
//
// The escaping rules (~1 -> "/", ~0 -> "~") follow
// github.com/go-openapi/jsonpointer; only that package's escaping
// algorithm is reused here, reimplemented directly over the dynamic
// tree, since the upstream package itself navigates via reflection over
// Go structs and has no notion of a schemaless map/slice tree.
type Pointer []string

// ParsePointer parses s into a Pointer. The empty string denotes the
// whole-document pointer (nil Pointer).
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return nil, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("docs: invalid JSON pointer %q: must start with /", s)
	}
	parts := strings.Split(s[1:], "/")
	tok := make(Pointer, len(parts))
	for i, p := range parts {
		tok[i] = unescapeToken(p)
	}
	return tok, nil
}

// FieldPointer interprets a §4.2 field address: a string beginning with
// "/" is a JSON Pointer, otherwise it names a top-level member. The
// empty string means "whole document."
func FieldPointer(field string) (Pointer, error) {
	if field == "" {
		return nil, nil
	}
	if field[0] == '/' {
		return ParsePointer(field)
	}
	return Pointer{field}, nil
}

func unescapeToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

func escapeToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		b.WriteString(escapeToken(tok))
	}
	return b.String()
}

// Get navigates tree along p. ok is false if any segment didn't resolve.
func (p Pointer) Get(tree any) (value any, ok bool) {
	cur := tree
	for _, tok := range p {
		switch v := cur.(type) {
		case map[string]any:
			next, present := v[tok]
			if !present {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at p inside tree, creating intermediate object
// members as needed (per spec §4.2, "insert the path" applies to object
// members; array indices are never auto-extended). Returns the
// (possibly new) root.
func (p Pointer) Set(tree any, value any) (any, error) {
	if len(p) == 0 {
		return value, nil
	}
	root := tree
	if root == nil {
		root = map[string]any{}
	}
	cur := root
	for i, tok := range p {
		last := i == len(p)-1
		switch v := cur.(type) {
		case map[string]any:
			if last {
				v[tok] = value
				return root, nil
			}
			next, present := v[tok]
			if !present {
				next = map[string]any{}
				v[tok] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("docs: array index %q out of range", tok)
			}
			if last {
				v[idx] = value
				return root, nil
			}
			cur = v[idx]
		default:
			return nil, fmt.Errorf("docs: cannot descend into scalar value at %q", tok)
		}
	}
	return root, nil
}
