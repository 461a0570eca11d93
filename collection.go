package polykv

import (
	"encoding/binary"
	"strconv"
)

// All collections live as sub-buckets of one root bucket, named by the
// collection id in hex. This mirrors andreyvit-edb's per-table bucket
// layout (each Table owns its own bbolt bucket) generalised from a
// static set of named tables to an open set of numeric CollectionIds.
const rootBucketName = "polykv"

func collectionSubBucket(id CollectionId) string {
	return strconv.FormatUint(uint64(id), 16)
}

// collectionBucket returns the bucket for id, or nil if nothing has been
// written to it yet.
func collectionBucket(tx *Tx, id CollectionId) storageBucket {
	return tx.Bucket(rootBucketName, collectionSubBucket(id))
}

// createCollectionBucket returns the bucket for id, creating it (and the
// shared root bucket) on demand.
func createCollectionBucket(tx *Tx, id CollectionId) (storageBucket, error) {
	return tx.CreateBucket(rootBucketName, collectionSubBucket(id))
}

const keyLen = 8

// keyBytes writes key's order-preserving 8-byte substrate encoding into
// buf (grown if needed) and returns it sliced to length.
func keyBytes(buf []byte, key Key) []byte {
	buf = ensureCapacity(buf, keyLen)[:keyLen]
	binary.BigEndian.PutUint64(buf, flipSign(uint64(key)))
	return buf
}

// decodeKey is the inverse of keyBytes.
func decodeKey(raw []byte) Key {
	return Key(flipSign(binary.BigEndian.Uint64(raw)))
}
