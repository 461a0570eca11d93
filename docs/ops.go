package docs

import (
	"sort"
	"strconv"

	"github.com/nkanaev/polykv"
)

// WriteRequest is the batched §4.2 docs_write request: one (field,
// payload) pair per address, all sharing one wire Format. Fields is a
// polykv.StridedView so that the common case — every row writing the
// same field — never materializes n copies of an identical string
// (polykv.Broadcast(field, n) rather than a repeated []string).
type WriteRequest struct {
	Addrs    []polykv.Address
	Fields   polykv.StridedView[string]
	Payloads [][]byte
	Format   Format
}

// Write implements spec §4.2's write pipeline: canonical-format,
// whole-document writes pass straight through to the blob layer;
// anything else is a batched read-modify-write (sort+dedupe is inherited
// from polykv.BlobRead, which the pipeline below builds on).
func Write(tx *polykv.Tx, req WriteRequest, opt polykv.CallOptions) error {
	n := len(req.Addrs)
	if n == 0 {
		return nil
	}
	if len(req.Payloads) != n || req.Fields.Len() != n {
		return polykv.InvalidArgument(nil, "docs: write request length mismatch")
	}

	if req.Format == FormatCanonical && allFieldsEmpty(req.Fields) {
		return polykv.BlobWrite(tx, polykv.WriteBatch{Addrs: req.Addrs, Values: req.Payloads}, opt)
	}

	read, err := polykv.BlobRead(tx, polykv.ReadBatch{Addrs: req.Addrs}, polykv.CallOptions{})
	if err != nil {
		return err
	}

	out := make([][]byte, n)
	for i := range req.Addrs {
		var tree any
		if read.Present[i] {
			tree, err = Unmarshal(read.Values[i], FormatCanonical)
			if err != nil {
				return polykv.ParseFailure("canonical", read.Values[i], err)
			}
		}
		tree, err = applyWrite(tree, req.Fields.At(i), req.Payloads[i], req.Format)
		if err != nil {
			return err
		}
		enc, err := Marshal(tree, FormatCanonical)
		if err != nil {
			return polykv.ParseFailure(FormatCanonical.String(), nil, err)
		}
		out[i] = enc
	}
	return polykv.BlobWrite(tx, polykv.WriteBatch{Addrs: req.Addrs, Values: out}, opt)
}

func allFieldsEmpty(fields polykv.StridedView[string]) bool {
	for i := 0; i < fields.Len(); i++ {
		if fields.At(i) != "" {
			return false
		}
	}
	return true
}

// applyWrite implements the per-field patch/replace rules of §4.2.
func applyWrite(tree any, field string, payload []byte, format Format) (any, error) {
	ptr, err := FieldPointer(field)
	if err != nil {
		return nil, polykv.InvalidArgument(err, "docs: bad field %q", field)
	}

	switch format {
	case FormatJSONPatch:
		sub, ok := ptr.Get(tree)
		if !ok {
			// Missing path on a patch format is a no-op.
			return tree, nil
		}
		patched, err := applyJSONPatch(sub, payload)
		if err != nil {
			return nil, polykv.ParseFailure(format.String(), payload, err)
		}
		return ptr.Set(tree, patched)

	case FormatJSONMergePatch:
		if len(ptr) == 0 {
			// An empty field on a merge-patch format is a
			// whole-document merge-patch (spec §9 open question,
			// resolved by preserving this behavior).
			return applyMergePatch(tree, payload)
		}
		sub, _ := ptr.Get(tree) // missing path merges against null
		merged, err := applyMergePatch(sub, payload)
		if err != nil {
			return nil, polykv.ParseFailure(format.String(), payload, err)
		}
		return ptr.Set(tree, merged)

	default:
		value, err := Unmarshal(payload, format)
		if err != nil {
			return nil, polykv.ParseFailure(format.String(), payload, err)
		}
		if len(ptr) == 0 {
			return value, nil
		}
		return ptr.Set(tree, value)
	}
}

// ReadRequest is the batched §4.2 docs_read request. Fields follows
// WriteRequest.Fields's broadcast convention; a zero StridedView (as
// from the zero ReadRequest) reads the whole document for every row.
type ReadRequest struct {
	Addrs  []polykv.Address
	Fields polykv.StridedView[string]
	Format Format
}

// ReadResult parallels ReadRequest.Addrs.
type ReadResult struct {
	Payloads [][]byte
	Present  []bool
}

// Read implements spec §4.2's read/projection pipeline.
func Read(tx *polykv.Tx, req ReadRequest) (*ReadResult, error) {
	n := len(req.Addrs)
	read, err := polykv.BlobRead(tx, polykv.ReadBatch{Addrs: req.Addrs}, polykv.CallOptions{})
	if err != nil {
		return nil, err
	}

	out := &ReadResult{Payloads: make([][]byte, n), Present: make([]bool, n)}
	for i := range req.Addrs {
		if !read.Present[i] {
			continue
		}
		tree, err := Unmarshal(read.Values[i], FormatCanonical)
		if err != nil {
			return nil, polykv.ParseFailure("canonical", read.Values[i], err)
		}

		var field string
		if req.Fields.Len() == n {
			field = req.Fields.At(i)
		}
		ptr, err := FieldPointer(field)
		if err != nil {
			return nil, polykv.InvalidArgument(err, "docs: bad field %q", field)
		}

		// A missing field resolves to a shared "null object" sentinel
		// rather than an error (spec §4.2).
		sub := tree
		if len(ptr) > 0 {
			if v, ok := ptr.Get(tree); ok {
				sub = v
			} else {
				sub = nil
			}
		}

		enc, err := Marshal(sub, req.Format)
		if err != nil {
			return nil, err
		}
		out.Payloads[i] = enc
		out.Present[i] = true
	}
	return out, nil
}

// Gist implements spec §4.2's gist operation: the deduplicated, sorted
// set of JSON-Pointer paths observed across every document in addrs.
func Gist(tx *polykv.Tx, addrs []polykv.Address) ([]string, error) {
	read, err := polykv.BlobRead(tx, polykv.ReadBatch{Addrs: addrs}, polykv.CallOptions{})
	if err != nil {
		return nil, err
	}

	set := map[string]struct{}{}
	for i, present := range read.Present {
		if !present {
			continue
		}
		tree, err := Unmarshal(read.Values[i], FormatCanonical)
		if err != nil {
			return nil, polykv.ParseFailure("canonical", read.Values[i], err)
		}
		collectGist(tree, nil, set)
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// collectGist walks tree, recording a path for every leaf: a scalar, or
// an empty container (a "nested container boundary" with nothing
// further to descend into). Non-empty containers are recursed into, not
// recorded themselves.
func collectGist(node any, prefix Pointer, set map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		if len(v) == 0 {
			recordGistLeaf(prefix, set)
			return
		}
		for k, child := range v {
			collectGist(child, appendToken(prefix, k), set)
		}
	case []any:
		if len(v) == 0 {
			recordGistLeaf(prefix, set)
			return
		}
		for i, child := range v {
			collectGist(child, appendToken(prefix, strconv.Itoa(i)), set)
		}
	default:
		recordGistLeaf(prefix, set)
	}
}

func recordGistLeaf(prefix Pointer, set map[string]struct{}) {
	if len(prefix) == 0 {
		return
	}
	set[prefix.String()] = struct{}{}
}

func appendToken(prefix Pointer, tok string) Pointer {
	next := make(Pointer, len(prefix)+1)
	copy(next, prefix)
	next[len(prefix)] = tok
	return next
}
