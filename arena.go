package polykv

// Arena is a per-call scratch allocator. docs.Gather writes its
// string/binary column tape into an Arena; the other batched operations
// allocate their result slices directly. Callers own the Arena's lifetime and may hoist one
// across several calls to amortize growth. An Arena is single-owner and
// not safe for concurrent use.
//
// The five named regions below generalize the caller-owned byte-region
// arena described by the source system this module reimplements: in that
// system regions were raw pointer+length pairs into a C allocator. Go's
// memory model makes per-element pointer arithmetic unnecessary, so each
// region here is simply a reusable, growable Go slice of the relevant
// element type — the "single block split into sections" memory-layout
// requirement for tabular gather (scalar columns, string tape, bitmaps)
// is still honored explicitly where that layout is externally observable
// (docs.Gather carves a column's string/binary tape out of GrowingTape).
type Arena struct {
	updatedKeys   bytesBuilder
	updatedValues bytesBuilder
	growingTape   bytesBuilder
	unpackedTape  bytesBuilder
	auxTape       bytesBuilder

	uint32s [][]uint32
	bools   [][]bool
}

// NewArena returns an empty Arena ready for one (or, if hoisted, several)
// batched calls.
func NewArena() *Arena {
	return &Arena{}
}

// Reset truncates every region to zero length while keeping their
// underlying capacity, so a hoisted Arena doesn't reallocate across calls.
// Any views previously returned by this Arena become invalid once Reset
// is called.
func (a *Arena) Reset() {
	a.updatedKeys.Trim(0)
	a.updatedValues.Trim(0)
	a.growingTape.Trim(0)
	a.unpackedTape.Trim(0)
	a.auxTape.Trim(0)
	a.uint32s = a.uint32s[:0]
	a.bools = a.bools[:0]
}

// UpdatedKeys returns a freshly grown n-byte window of the updated-keys
// region (used when a batched write needs to stage re-encoded keys, e.g.
// graph vertex rewrites).
func (a *Arena) UpdatedKeys(n int) []byte { return growRegion(&a.updatedKeys, n) }

// UpdatedValues returns a freshly grown n-byte window of the
// updated-values region (staged re-encoded values before a substrate
// write, e.g. a document read-modify-write's re-serialized payload).
func (a *Arena) UpdatedValues(n int) []byte { return growRegion(&a.updatedValues, n) }

// GrowingTape returns a freshly grown n-byte window of the general
// growing-output tape (concatenated read payloads, gather's string tape,
// and similar accumulate-then-slice outputs).
func (a *Arena) GrowingTape(n int) []byte { return growRegion(&a.growingTape, n) }

// GrowingTapeLen returns the growing-output tape's current length, the
// offset a caller should remember before appending a run of cells it
// later wants to slice out as its own contiguous view.
func (a *Arena) GrowingTapeLen() int { return len(a.growingTape.Buf) }

// GrowingTapeSince returns the portion of the growing-output tape
// appended since offset start (as previously observed via
// GrowingTapeLen).
func (a *Arena) GrowingTapeSince(start int) []byte { return a.growingTape.Buf[start:] }

// UnpackedTape returns a freshly grown n-byte window of the unpacked-form
// tape (decoded adjacency records, parsed document trees staged as bytes
// when a caller asks for a binary re-encoding).
func (a *Arena) UnpackedTape(n int) []byte { return growRegion(&a.unpackedTape, n) }

// AuxTape returns a freshly grown n-byte window of the auxiliary byte
// tape (NUL-terminated gist paths, scratch for format conversion, etc).
func (a *Arena) AuxTape(n int) []byte { return growRegion(&a.auxTape, n) }

func growRegion(bb *bytesBuilder, n int) []byte {
	off := bb.Grow(n)
	return bb.Buf[off : off+n]
}

// Uint32s allocates (and remembers, for Reset bookkeeping) a slice of n
// zeroed uint32s — used for the offsets/lengths arrays of a batched read
// or gather result.
func (a *Arena) Uint32s(n int) []uint32 {
	s := make([]uint32, n)
	a.uint32s = append(a.uint32s, s)
	return s
}

// Bools allocates (and remembers) a slice of n false bools — used for
// presence flags alongside a batched read result.
func (a *Arena) Bools(n int) []bool {
	s := make([]bool, n)
	a.bools = append(a.bools, s)
	return s
}
