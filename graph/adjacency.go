package graph

import (
	"encoding/binary"

	"github.com/nkanaev/polykv"
)

// wireVersion is the only adjacency wire format this package knows how
// to read: a one-byte version prefix of 0, meaning "uncompressed," per
// spec §6.4. Integer-compressed adjacency lists are a possible future
// version but are not implemented.
const wireVersion = 0

const recordLen = 16 // (neighbor Key, edge_id Key), each 8 bytes

// Record is one packed adjacency entry: a neighbor vertex together with
// the identifier of the edge connecting it.
type Record struct {
	Neighbor polykv.Key
	EdgeID   polykv.Key
}

// AnyEdge is the "edge identity irrelevant" sentinel, reusing
// polykv.NoKey: simple graphs that never assign edge identifiers pass
// this for edge_id on every upsert/remove.
const AnyEdge = polykv.NoKey

// Entry is one vertex's decoded adjacency list: Out holds records where
// this vertex is the source, In holds records where it is the target.
// A self-loop (u,u,e) appears once in each list.
type Entry struct {
	Out []Record
	In  []Record
}

func decodeEntry(raw []byte) (Entry, error) {
	if len(raw) < 1 {
		return Entry{}, polykv.Fatal("graph: adjacency entry has no version byte")
	}
	if raw[0] != wireVersion {
		return Entry{}, polykv.NotImplemented("graph: adjacency version %d is not supported", raw[0])
	}
	raw = raw[1:]
	if len(raw) < 8 {
		return Entry{}, polykv.Fatal("graph: adjacency header truncated")
	}
	outCount := binary.LittleEndian.Uint32(raw[0:4])
	inCount := binary.LittleEndian.Uint32(raw[4:8])
	raw = raw[8:]

	need := (int(outCount) + int(inCount)) * recordLen
	if len(raw) < need {
		return Entry{}, polykv.Fatal("graph: adjacency records truncated: need %d bytes, have %d", need, len(raw))
	}

	e := Entry{
		Out: make([]Record, outCount),
		In:  make([]Record, inCount),
	}
	off := 0
	for i := range e.Out {
		e.Out[i] = readRecord(raw[off:])
		off += recordLen
	}
	for i := range e.In {
		e.In[i] = readRecord(raw[off:])
		off += recordLen
	}
	return e, nil
}

func readRecord(b []byte) Record {
	return Record{
		Neighbor: polykv.Key(binary.LittleEndian.Uint64(b[0:8])),
		EdgeID:   polykv.Key(binary.LittleEndian.Uint64(b[8:16])),
	}
}

// encodeEntry serializes e into the §6.4 wire format, growing buf
// (append-don't-allocate, in the teacher's byteutil.go style) rather
// than always allocating fresh.
func encodeEntry(buf []byte, e Entry) []byte {
	need := 1 + 8 + (len(e.Out)+len(e.In))*recordLen
	buf = ensureLen(buf, need)

	buf[0] = wireVersion
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(e.Out)))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(len(e.In)))

	off := 9
	for _, r := range e.Out {
		writeRecord(buf[off:], r)
		off += recordLen
	}
	for _, r := range e.In {
		writeRecord(buf[off:], r)
		off += recordLen
	}
	return buf
}

func writeRecord(b []byte, r Record) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(r.Neighbor))
	binary.LittleEndian.PutUint64(b[8:16], uint64(r.EdgeID))
}

func ensureLen(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
