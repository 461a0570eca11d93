package docs

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"

	"github.com/nkanaev/polykv"
	"github.com/nkanaev/polykv/internal/bitpack"
)

// GatherType names a target column type for the tabular gather
// projection (spec §4.3). Grounded on andreyvit-edb/kvo/type.go's
// IntegerValue/FloatValue type-constraint generics — the closed set of
// numeric types dispatched over at compile time rather than through a
// runtime format-code table (spec §9's redesign note on exactly this
// pattern).
type GatherType int

const (
	TypeI8 GatherType = iota
	TypeI16
	TypeI32
	TypeI64
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeF32
	TypeF64
	TypeBool
	TypeString
	TypeBinary
)

func (t GatherType) isString() bool { return t == TypeString || t == TypeBinary }

// GatherColumn is one requested (field, type) projection's output: a
// dense scalar array (TypeI8..TypeBool) or, for string/binary types,
// parallel offset/length arrays into Tape. Validity/Conversion/Collision
// are Arrow-style LSB-first bitmaps sized for len(Addrs) bits.
type GatherColumn struct {
	Type GatherType

	Ints    []int64   // populated for signed integer types
	Uints   []uint64  // populated for unsigned integer types
	Floats  []float64 // populated for float types
	Bools   []bool    // populated for TypeBool

	Offsets []uint32 // populated for string/binary types
	Lengths []uint32
	Tape    []byte

	Validity   []byte
	Conversion []byte
	Collision  []byte
}

// GatherRequest is the batched §4.3 docs_gather request. Arena is
// optional: when nil, Gather allocates its own; a caller issuing many
// gathers back-to-back can hoist one Arena across calls (via
// Arena.Reset between them) to amortize the tape's growth.
type GatherRequest struct {
	Addrs  []polykv.Address
	Fields []string
	Types  []GatherType
	Arena  *polykv.Arena
}

// Gather implements spec §4.3: for each (document, field, type) cell,
// apply the decision table and write into the corresponding column.
func Gather(tx *polykv.Tx, req GatherRequest) ([]GatherColumn, error) {
	if len(req.Fields) != len(req.Types) {
		return nil, polykv.InvalidArgument(nil, "docs: gather fields/types length mismatch")
	}
	n := len(req.Addrs)

	read, err := polykv.BlobRead(tx, polykv.ReadBatch{Addrs: req.Addrs}, polykv.CallOptions{})
	if err != nil {
		return nil, err
	}

	trees := make([]any, n)
	for i := range req.Addrs {
		if !read.Present[i] {
			continue
		}
		tree, err := Unmarshal(read.Values[i], FormatCanonical)
		if err != nil {
			return nil, polykv.ParseFailure("canonical", read.Values[i], err)
		}
		trees[i] = tree
	}

	arena := req.Arena
	if arena == nil {
		arena = polykv.NewArena()
	}

	cols := make([]GatherColumn, len(req.Fields))
	for c, field := range req.Fields {
		ptr, err := FieldPointer(field)
		if err != nil {
			return nil, polykv.InvalidArgument(err, "docs: bad field %q", field)
		}
		col, err := gatherColumn(arena, trees, ptr, req.Types[c], read.Present)
		if err != nil {
			return nil, err
		}
		cols[c] = col
	}
	return cols, nil
}

// gatherColumn fills one output column. Scalar storage and the
// Validity/Conversion/Collision bitmaps are owned by the column itself
// (their shape is part of the public result); the string/binary tape is
// carved from arena's growing-tape region, the one piece of gather's
// output that genuinely benefits from amortized growth across a hoisted
// Arena (spec §4.3's "single contiguous output buffer" framing).
func gatherColumn(arena *polykv.Arena, trees []any, ptr Pointer, typ GatherType, present []bool) (GatherColumn, error) {
	n := len(trees)
	col := GatherColumn{
		Type:       typ,
		Validity:   bitpack.Make(n),
		Conversion: bitpack.Make(n),
		Collision:  bitpack.Make(n),
	}
	if typ.isString() {
		col.Offsets = arena.Uint32s(n)
		col.Lengths = arena.Uint32s(n)
	} else {
		allocScalarStorage(&col, typ, n)
	}

	tapeStart := arena.GrowingTapeLen()
	for i := 0; i < n; i++ {
		if !present[i] {
			continue // absent: valid=0, convert=0, collide=0
		}
		var cell any
		if len(ptr) == 0 {
			cell = trees[i]
		} else {
			v, ok := ptr.Get(trees[i])
			if !ok {
				continue // absent
			}
			cell = v
		}
		if cell == nil {
			continue // JSON null: absent
		}

		valid, convert, collide := gatherCell(arena, tapeStart, &col, i, cell, typ)
		bitpack.PutBit(col.Validity, i, valid)
		bitpack.PutBit(col.Conversion, i, convert)
		bitpack.PutBit(col.Collision, i, collide)
	}
	if typ.isString() {
		col.Tape = arena.GrowingTapeSince(tapeStart)
	}
	return col, nil
}

func allocScalarStorage(col *GatherColumn, typ GatherType, n int) {
	switch typ {
	case TypeI8, TypeI16, TypeI32, TypeI64:
		col.Ints = make([]int64, n)
	case TypeU8, TypeU16, TypeU32, TypeU64:
		col.Uints = make([]uint64, n)
	case TypeF32, TypeF64:
		col.Floats = make([]float64, n)
	case TypeBool:
		col.Bools = make([]bool, n)
	}
}

// gatherCell implements one row of spec §4.3's per-cell decision table.
// tapeStart is the column's own starting offset into arena's shared
// growing-tape region (gatherColumn slices the column's final Tape out
// of that region once every cell has been gathered).
func gatherCell(arena *polykv.Arena, tapeStart int, col *GatherColumn, i int, cell any, typ GatherType) (valid, convert, collide bool) {
	switch v := cell.(type) {
	case map[string]any, []any:
		return false, false, true // object/array: collide

	case []byte:
		if typ.isString() {
			appendTapeCell(arena, tapeStart, col, i, v)
			return true, false, false
		}
		if scalarByteWidth(typ) == len(v) {
			writeScalarFromBytes(col, i, typ, v)
			return true, true, false
		}
		return false, false, true

	case string:
		if typ.isString() {
			appendTapeCell(arena, tapeStart, col, i, []byte(v))
			return true, false, false
		}
		return parseStringScalar(col, i, typ, v)

	case bool:
		if typ == TypeBool {
			col.Bools[i] = v
			return true, false, false
		}
		if typ.isString() {
			appendTapeCell(arena, tapeStart, col, i, []byte(strconv.FormatBool(v)))
			return true, true, false
		}
		return castNumericScalar(col, i, typ, boolToFloat(v), true), true, false

	case int64:
		return gatherIntCell(arena, tapeStart, col, i, typ, v)

	case float64:
		return gatherFloatCell(arena, tapeStart, col, i, typ, v)

	default:
		return false, false, true
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func gatherIntCell(arena *polykv.Arena, tapeStart int, col *GatherColumn, i int, typ GatherType, v int64) (valid, convert, collide bool) {
	if typ.isString() {
		appendTapeCell(arena, tapeStart, col, i, []byte(strconv.FormatInt(v, 10)))
		return true, true, false
	}
	convert = !isSignedType(typ)
	return castNumericScalar(col, i, typ, float64(v), isIntegerType(typ)), convert, false
}

func gatherFloatCell(arena *polykv.Arena, tapeStart int, col *GatherColumn, i int, typ GatherType, v float64) (valid, convert, collide bool) {
	if typ.isString() {
		appendTapeCell(arena, tapeStart, col, i, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
		return true, true, false
	}
	convert = typ != TypeF32 && typ != TypeF64
	return castNumericScalar(col, i, typ, v, false), convert, false
}

func parseStringScalar(col *GatherColumn, i int, typ GatherType, s string) (valid, convert, collide bool) {
	if isIntegerType(typ) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, false, true
		}
		return castNumericScalar(col, i, typ, float64(n), true), true, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, false, true
	}
	return castNumericScalar(col, i, typ, f, false), true, false
}

func isIntegerType(typ GatherType) bool {
	switch typ {
	case TypeI8, TypeI16, TypeI32, TypeI64, TypeU8, TypeU16, TypeU32, TypeU64:
		return true
	}
	return false
}

func isSignedType(typ GatherType) bool {
	switch typ {
	case TypeI8, TypeI16, TypeI32, TypeI64:
		return true
	}
	return false
}

func scalarByteWidth(typ GatherType) int {
	switch typ {
	case TypeI8, TypeU8:
		return 1
	case TypeI16, TypeU16:
		return 2
	case TypeI32, TypeU32, TypeF32:
		return 4
	case TypeI64, TypeU64, TypeF64:
		return 8
	default:
		return 0
	}
}

// appendTapeCell appends data to arena's shared growing-tape region and
// records the cell's offset relative to tapeStart, the column's own
// starting point within that shared region.
func appendTapeCell(arena *polykv.Arena, tapeStart int, col *GatherColumn, i int, data []byte) {
	off := arena.GrowingTapeLen()
	buf := arena.GrowingTape(len(data))
	copy(buf, data)
	col.Offsets[i] = uint32(off - tapeStart)
	col.Lengths[i] = uint32(len(data))
}

// castNumericScalar writes v (as a float64) into col's scalar storage
// for typ. It mirrors kvo's intScalarConverter/floatScalarConverter
// ValueToScalar/ScalarToValue pair, targeting this package's dense
// Arrow-style columns instead of kvo's tagged 64-bit word.
func castNumericScalar(col *GatherColumn, i int, typ GatherType, v float64, fromInteger bool) bool {
	switch typ {
	case TypeI8:
		return writeInt(col, i, castInt[int8](v))
	case TypeI16:
		return writeInt(col, i, castInt[int16](v))
	case TypeI32:
		return writeInt(col, i, castInt[int32](v))
	case TypeI64:
		return writeInt(col, i, castInt[int64](v))
	case TypeU8:
		return writeUint(col, i, castUint[uint8](v))
	case TypeU16:
		return writeUint(col, i, castUint[uint16](v))
	case TypeU32:
		return writeUint(col, i, castUint[uint32](v))
	case TypeU64:
		return writeUint(col, i, castUint[uint64](v))
	case TypeF32:
		col.Floats[i] = float64(float32(v))
		return true
	case TypeF64:
		col.Floats[i] = v
		return true
	default:
		return false
	}
}

func castInt[T constraints.Integer](v float64) int64 { return int64(T(v)) }
func castUint[T constraints.Integer](v float64) uint64 { return uint64(T(v)) }

func writeInt(col *GatherColumn, i int, v int64) bool {
	col.Ints[i] = v
	return true
}
func writeUint(col *GatherColumn, i int, v uint64) bool {
	col.Uints[i] = v
	return true
}

func writeScalarFromBytes(col *GatherColumn, i int, typ GatherType, raw []byte) {
	// Binary cells with a matching byte width are memcpy'd in as a raw
	// bit pattern (spec §4.3), not numerically cast.
	var bits uint64
	for _, b := range raw {
		bits = bits<<8 | uint64(b)
	}
	switch typ {
	case TypeI8, TypeI16, TypeI32, TypeI64:
		col.Ints[i] = int64(bits)
	case TypeU8, TypeU16, TypeU32, TypeU64:
		col.Uints[i] = bits
	case TypeF32:
		col.Floats[i] = float64(math.Float32frombits(uint32(bits)))
	case TypeF64:
		col.Floats[i] = math.Float64frombits(bits)
	}
}
