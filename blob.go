package polykv

import (
	"fmt"
	"sort"
)

// Blob is the raw byte modality: batched read/write/scan directly
// against collection buckets, with no document or graph semantics
// layered on top. The docs and graph subpackages are both built by
// encoding/decoding the bytes these functions move, mirroring
// andreyvit-edb's KVGetRaw/KVPutRaw pattern (opkv.go) generalised from a
// single fixed table to an open set of CollectionIds addressed per call.

// BlobRead resolves batch against tx through the sort+dedupe path from
// spec §4.1, for every batch (an already ascending, unique batch takes
// the same path): a permutation of indices is sorted by Address, duplicates
// are coalesced to a single substrate Get, and results are scattered
// back to every index that asked for that Address.
func BlobRead(tx *Tx, batch ReadBatch, opt CallOptions) (*ReadResult, error) {
	n := len(batch.Addrs)
	if n == 0 {
		return &ReadResult{}, nil
	}

	perm := getAddrIndexSlice()
	defer releaseAddrIndexSlice(perm)
	for i := 0; i < n; i++ {
		perm = append(perm, i)
	}
	sort.Slice(perm, func(i, j int) bool {
		return batch.Addrs[perm[i]].Less(batch.Addrs[perm[j]])
	})

	result := &ReadResult{
		Values:  make([][]byte, n),
		Present: make([]bool, n),
		Lengths: make([]int, n),
	}

	keyBuf := getKeyBytes()
	defer releaseKeyBytes(keyBuf)
	var bucket storageBucket
	var curColl CollectionId
	haveBucket := false

	i := 0
	for i < n {
		idx := perm[i]
		addr := batch.Addrs[idx]
		if !haveBucket || addr.Collection != curColl {
			bucket = collectionBucket(tx, addr.Collection)
			curColl = addr.Collection
			haveBucket = true
		}

		var val []byte
		var present bool
		var length int
		if bucket != nil {
			raw := bucket.Get(keyBytes(keyBuf, addr.Key))
			if raw != nil {
				present = true
				length = len(raw)
				if !opt.ReadLengths {
					val = append([]byte(nil), raw...)
				}
			}
		}

		// Scatter to every occurrence of this exact Address in the
		// permutation (this is the dedupe step: all duplicates share
		// the single Get issued above).
		j := i
		for j < n && batch.Addrs[perm[j]].Equal(addr) {
			k := perm[j]
			result.Values[k] = val
			result.Present[k] = present
			result.Lengths[k] = length
			j++
		}
		i = j
	}

	return result, nil
}

// BlobWrite applies batch to tx in the caller's given order (writes are
// never reordered, unlike reads: spec §4.1 "Writes are passed through in
// caller order").
func BlobWrite(tx *Tx, batch WriteBatch, opt CallOptions) error {
	n := len(batch.Addrs)
	if len(batch.Values) != n {
		return InvalidArgument(nil, "write batch addrs/values length mismatch (%d/%d)", n, len(batch.Values))
	}
	if n == 0 {
		return nil
	}
	if !tx.Writable() {
		return Substrate("write", fmt.Errorf("tx not writable"), false)
	}

	buckets := make(map[CollectionId]storageBucket)
	keyBuf := getKeyBytes()
	defer releaseKeyBytes(keyBuf)
	for i, addr := range batch.Addrs {
		bucket, ok := buckets[addr.Collection]
		if !ok {
			created, err := createCollectionBucket(tx, addr.Collection)
			if err != nil {
				return Substrate("create-bucket", err, false)
			}
			bucket = created
			buckets[addr.Collection] = bucket
		}

		k := keyBytes(keyBuf, addr.Key)
		val := batch.Values[i]
		var err error
		if val == nil {
			err = bucket.Delete(k)
		} else {
			err = bucket.Put(k, val)
		}
		if err != nil {
			return Substrate("write", err, false)
		}
	}

	if opt.WriteFlush {
		if s, ok := tx.db.st.(syncer); ok {
			if err := s.Sync(); err != nil {
				return Substrate("sync", err, false)
			}
		}
	}
	return nil
}

// BlobScan returns up to count keys from collection in ascending order,
// starting at start (NoKey scans from the very beginning), per §6.1's
// scan(collection, start, count) -> keys primitive.
func BlobScan(tx *Tx, collection CollectionId, start Key, count int) ([]Key, error) {
	if count <= 0 {
		return nil, nil
	}
	bucket := collectionBucket(tx, collection)
	if bucket == nil {
		return nil, nil
	}

	var rang RawRange
	if start == NoKey {
		rang = RawOO()
	} else {
		keyBuf := getKeyBytes()
		defer releaseKeyBytes(keyBuf)
		rang = RawIO(keyBytes(keyBuf, start))
	}

	keys := make([]Key, 0, count)
	cur := rang.newCursor(bucket.Cursor(), nil)
	for len(keys) < count && cur.Next() {
		keys = append(keys, decodeKey(cur.Key()))
	}
	return keys, nil
}

// SizeEstimates reports best-effort size metrics for a collection,
// generalising andreyvit-edb's TableStats/monitoring.go bucket stats
// from a fixed table set to an arbitrary CollectionId.
type SizeEstimates struct {
	KeyCount int
	ByteSize int64
}

// BlobSizeEstimates returns SizeEstimates for collection (zero value if
// the collection has never been written to).
func BlobSizeEstimates(tx *Tx, collection CollectionId) SizeEstimates {
	bucket := collectionBucket(tx, collection)
	if bucket == nil {
		return SizeEstimates{}
	}
	stats := bucket.Stats()
	return SizeEstimates{KeyCount: stats.KeyN, ByteSize: stats.TotalAlloc()}
}
