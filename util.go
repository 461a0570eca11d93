package polykv

import (
	"encoding/hex"
	"log/slog"
)

// inc increments data in place, treating it as a big-endian number, and
// reports whether the increment succeeded: it returns false, leaving data
// unchanged, when every byte is 0xFF. Used by the backends to turn a
// prefix into its exclusive upper bound for "seek to last key matching
// this prefix".
func inc(data []byte) bool {
	for i := len(data) - 1; i >= 0; i-- {
		if data[i] != 0xFF {
			for j := i; j < len(data); j++ {
				data[j]++
			}
			return true
		}
	}
	return false
}

func hexstr(b []byte) string {
	if b == nil {
		return "<nil>"
	}
	if len(b) == 0 {
		return "<empty>"
	}
	return hex.EncodeToString(b)
}

func hexAttr(key string, b []byte) slog.Attr {
	return slog.String(key, hexstr(b))
}
