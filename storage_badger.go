package polykv

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger has no native notion of nested buckets: it's a flat, globally
// ordered keyspace. We simulate bbolt's two-level bucket namespace by
// prefixing every key with the bucket's (name, sub) pair, and we track bucket existence with a small marker
// key per bucket since an empty bucket would otherwise leave no trace
// in the flat keyspace.

const (
	badgerMarkerNS = "\x01b\x00"
	badgerDataNS   = "\x02d\x00"
)

type badgerStorage struct {
	bdb *badger.DB
}

// newBadgerStorage wraps an already-open *badger.DB as a storage.
func newBadgerStorage(bdb *badger.DB) storage {
	return &badgerStorage{bdb: bdb}
}

func (s *badgerStorage) BeginTx(writable bool) (storageTx, error) {
	return &badgerStorageTx{bdb: s.bdb, txn: s.bdb.NewTransaction(writable), writable: writable}, nil
}

func (s *badgerStorage) Close() error { return s.bdb.Close() }

// Sync flushes badger's value log to disk, satisfying the syncer
// interface used by CallOptions.WriteFlush.
func (s *badgerStorage) Sync() error { return s.bdb.Sync() }

type badgerStorageTx struct {
	bdb      *badger.DB
	txn      *badger.Txn
	writable bool
	closed   bool
}

func (tx *badgerStorageTx) Writable() bool { return tx.writable }

func bucketMarkerKey(name, sub string) []byte {
	return []byte(badgerMarkerNS + name + "\x00" + sub)
}

func bucketDataPrefix(name, sub string) []byte {
	return []byte(badgerDataNS + name + "\x00" + sub + "\x00")
}

func (tx *badgerStorageTx) markerExists(marker []byte) bool {
	_, err := tx.txn.Get(marker)
	return err == nil
}

func (tx *badgerStorageTx) Bucket(name, sub string) storageBucket {
	if !tx.markerExists(bucketMarkerKey(name, sub)) {
		return nil
	}
	return &badgerBucket{tx: tx, prefix: bucketDataPrefix(name, sub)}
}

func (tx *badgerStorageTx) CreateBucket(name, sub string) (storageBucket, error) {
	if !tx.writable {
		return nil, fmt.Errorf("tx not writable")
	}
	if sub != "" {
		rootMarker := bucketMarkerKey(name, "")
		if !tx.markerExists(rootMarker) {
			if err := tx.txn.Set(rootMarker, []byte{1}); err != nil {
				return nil, err
			}
		}
	}
	marker := bucketMarkerKey(name, sub)
	if !tx.markerExists(marker) {
		if err := tx.txn.Set(marker, []byte{1}); err != nil {
			return nil, err
		}
	}
	return &badgerBucket{tx: tx, prefix: bucketDataPrefix(name, sub)}, nil
}

func (tx *badgerStorageTx) DeleteBucket(name, sub string) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	if sub == "" {
		return ErrBucketNotFound
	}
	marker := bucketMarkerKey(name, sub)
	if !tx.markerExists(marker) {
		return ErrBucketNotFound
	}

	prefix := bucketDataPrefix(name, sub)
	it := tx.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	var victims [][]byte
	for it.Seek(prefix); it.Valid(); it.Next() {
		victims = append(victims, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, k := range victims {
		if err := tx.txn.Delete(k); err != nil {
			return err
		}
	}
	return tx.txn.Delete(marker)
}

func (tx *badgerStorageTx) Commit() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	return tx.txn.Commit()
}

func (tx *badgerStorageTx) Rollback() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	tx.txn.Discard()
	return nil
}

func (tx *badgerStorageTx) Size() int64 {
	lsm, vlog := tx.bdb.Size()
	return lsm + vlog
}

type badgerBucket struct {
	tx     *badgerStorageTx
	prefix []byte
}

func (b *badgerBucket) fullKey(key []byte) []byte {
	full := make([]byte, 0, len(b.prefix)+len(key))
	full = append(full, b.prefix...)
	full = append(full, key...)
	return full
}

func (b *badgerBucket) Get(key []byte) []byte {
	item, err := b.tx.txn.Get(b.fullKey(key))
	if err != nil {
		return nil
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil
	}
	return val
}

func (b *badgerBucket) Put(key, value []byte) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	return b.tx.txn.Set(b.fullKey(key), append([]byte(nil), value...))
}

func (b *badgerBucket) Delete(key []byte) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	return b.tx.txn.Delete(b.fullKey(key))
}

func (b *badgerBucket) Cursor() storageCursor {
	return &badgerCursor{txn: b.tx.txn, prefix: b.prefix}
}

func (b *badgerBucket) Stats() bucketStats {
	var n int
	var size int64
	it := b.tx.txn.NewIterator(badger.IteratorOptions{Prefix: b.prefix})
	defer it.Close()
	for it.Seek(b.prefix); it.Valid(); it.Next() {
		n++
		size += int64(it.Item().EstimatedSize())
	}
	return bucketStats{KeyN: n, LeafInuse: size, LeafAlloc: size}
}

func (b *badgerBucket) KeyCount() int {
	var n int
	it := b.tx.txn.NewIterator(badger.IteratorOptions{Prefix: b.prefix})
	defer it.Close()
	for it.Seek(b.prefix); it.Valid(); it.Next() {
		n++
	}
	return n
}

// badgerCursor adapts badger's forward-only, direction-fixed-at-open
// iterators to the bidirectional storageCursor contract. It keeps at most
// one badger.Iterator open at a time and reopens it (repositioning at the
// current key) whenever the caller flips direction.
type badgerCursor struct {
	txn     *badger.Txn
	prefix  []byte
	it      *badger.Iterator
	reverse bool
	curKey  []byte
	valid   bool
}

func (c *badgerCursor) setDirection(reverse bool) {
	if c.it != nil && c.reverse == reverse {
		return
	}
	if c.it != nil {
		c.it.Close()
	}
	opts := badger.DefaultIteratorOptions
	opts.Prefix = c.prefix
	opts.Reverse = reverse
	opts.PrefetchValues = true
	c.it = c.txn.NewIterator(opts)
	c.reverse = reverse
}

func (c *badgerCursor) current() ([]byte, []byte) {
	if !c.it.Valid() {
		c.valid, c.curKey = false, nil
		return nil, nil
	}
	item := c.it.Item()
	key := append([]byte(nil), item.Key()[len(c.prefix):]...)
	val, err := item.ValueCopy(nil)
	if err != nil {
		c.valid, c.curKey = false, nil
		return nil, nil
	}
	c.valid, c.curKey = true, key
	return key, val
}

func (c *badgerCursor) First() ([]byte, []byte) {
	c.setDirection(false)
	c.it.Seek(c.prefix)
	return c.current()
}

func (c *badgerCursor) Last() ([]byte, []byte) {
	c.setDirection(true)
	c.it.Seek(incOrMax(c.prefix))
	return c.current()
}

func (c *badgerCursor) Seek(seek []byte) ([]byte, []byte) {
	c.setDirection(false)
	c.it.Seek(append(append([]byte(nil), c.prefix...), seek...))
	return c.current()
}

func (c *badgerCursor) SeekLast(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return c.Last()
	}
	c.setDirection(true)
	c.it.Seek(incOrMax(append(append([]byte(nil), c.prefix...), prefix...)))
	return c.current()
}

func (c *badgerCursor) Next() ([]byte, []byte) {
	if !c.valid {
		return c.First()
	}
	if c.reverse {
		c.repositionAt(c.curKey, false)
	}
	c.it.Next()
	return c.current()
}

func (c *badgerCursor) Prev() ([]byte, []byte) {
	if !c.valid {
		return nil, nil
	}
	if !c.reverse {
		c.repositionAt(c.curKey, true)
	}
	c.it.Next() // a reverse iterator's Next() walks toward smaller keys.
	return c.current()
}

// repositionAt flips the iterator's direction and re-seeks to the given
// bucket-relative key, skipping past it so the caller's own Next/Prev
// call lands one step beyond where direction was flipped.
func (c *badgerCursor) repositionAt(key []byte, reverse bool) {
	full := append(append([]byte(nil), c.prefix...), key...)
	c.setDirection(reverse)
	c.it.Seek(full)
}

func (c *badgerCursor) Delete() error {
	if !c.valid {
		return nil
	}
	return c.txn.Delete(append(append([]byte(nil), c.prefix...), c.curKey...))
}

// incOrMax returns the exclusive upper bound of prefix, or, if prefix is
// all 0xFF bytes and can't be incremented, a key guaranteed to sort after
// every key carrying that prefix.
func incOrMax(prefix []byte) []byte {
	limit := append([]byte(nil), prefix...)
	if inc(limit) {
		return limit
	}
	return append(limit, 0xFF)
}
