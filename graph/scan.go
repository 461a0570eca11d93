package graph

import (
	"math"

	"github.com/nkanaev/polykv"
)

const defaultVertexWindow = 64

// VertexCursor is a read-ahead vertex iterator: it buffers up to
// windowSize keys per underlying polykv.BlobScan call instead of
// round-tripping the substrate once per vertex. Per spec §4.4, the
// window is a cooperative performance hint, not a correctness
// guarantee — a smaller or larger window produces the same sequence of
// keys.
type VertexCursor struct {
	tx         *polykv.Tx
	collection polykv.CollectionId
	window     int

	buf       []polykv.Key
	pos       int
	next      polykv.Key
	exhausted bool
}

// NewVertexCursor returns a cursor over collection's vertices in
// substrate order, starting at start (polykv.NoKey to scan from the
// beginning). windowSize <= 0 selects a default window.
func NewVertexCursor(tx *polykv.Tx, collection polykv.CollectionId, start polykv.Key, windowSize int) *VertexCursor {
	if windowSize <= 0 {
		windowSize = defaultVertexWindow
	}
	return &VertexCursor{tx: tx, collection: collection, window: windowSize, next: start}
}

// Next advances the cursor, returning the next vertex key and true, or
// ok=false once the collection is exhausted.
func (c *VertexCursor) Next() (key polykv.Key, ok bool, err error) {
	if c.pos >= len(c.buf) {
		if c.exhausted {
			return 0, false, nil
		}
		keys, err := polykv.BlobScan(c.tx, c.collection, c.next, c.window)
		if err != nil {
			return 0, false, err
		}
		if len(keys) == 0 {
			c.exhausted = true
			return 0, false, nil
		}
		if len(keys) < c.window {
			c.exhausted = true
		}
		c.buf, c.pos = keys, 0

		last := keys[len(keys)-1]
		if last == math.MaxInt64 {
			c.exhausted = true
		} else {
			c.next = last + 1
		}
	}
	k := c.buf[c.pos]
	c.pos++
	return k, true, nil
}
