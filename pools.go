package polykv

import "sync"

// Small scratch buffers are pooled the way andreyvit-edb pools its key and
// value buffers: callers Get before use and Put (after resetting length to
// zero) when done, keeping per-call allocations off the hot path.

var keyBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 64) // keyLen rounds up comfortably
	},
}

func getKeyBytes() []byte      { return keyBytesPool.Get().([]byte) }
func releaseKeyBytes(b []byte) { keyBytesPool.Put(b[:0]) }

var addrIndexPool = &sync.Pool{
	New: func() any {
		return make([]int, 0, 256)
	},
}

func getAddrIndexSlice() []int      { return addrIndexPool.Get().([]int) }
func releaseAddrIndexSlice(s []int) { addrIndexPool.Put(s[:0]) }
