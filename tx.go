package polykv

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/dgraph-io/badger/v4"
)

// Tx wraps a single substrate transaction. Unlike andreyvit-edb's Tx,
// which hides bbolt's single-writer serialization behind a Check-Mutate
// retry loop inside bdb.Batch, this Tx never retries: a commit conflict
// (possible on the Badger backend, whose transactions are optimistic)
// is surfaced to the caller as a *SubstrateError with Retryable set,
// and it's the caller's job to retry the whole operation if it wants to.
type Tx struct {
	db      *DB
	stx     storageTx
	managed bool
	closed  bool
}

func (db *DB) newTx(stx storageTx, managed bool) *Tx {
	return &Tx{db: db, stx: stx, managed: managed}
}

func (tx *Tx) DB() *DB { return tx.db }

func (tx *Tx) Writable() bool { return tx.stx.Writable() }

// Bucket returns a bucket (see storageTx.Bucket); sub="" for a root
// bucket. Returns nil if the bucket doesn't exist.
func (tx *Tx) Bucket(name, sub string) storageBucket { return tx.stx.Bucket(name, sub) }

// CreateBucket creates a bucket if it doesn't already exist.
func (tx *Tx) CreateBucket(name, sub string) (storageBucket, error) {
	return tx.stx.CreateBucket(name, sub)
}

// DeleteBucket deletes a nested bucket.
func (tx *Tx) DeleteBucket(name, sub string) error { return tx.stx.DeleteBucket(name, sub) }

// BeginRead starts a read-only transaction. Callers must Close it.
func (db *DB) BeginRead() (*Tx, error) {
	stx, err := db.st.BeginTx(false)
	if err != nil {
		return nil, Substrate("begin", err, false)
	}
	db.ReaderCount.Add(1)
	return db.newTx(stx, false), nil
}

// BeginWrite starts a writable transaction. Callers must Commit or
// Close it.
func (db *DB) BeginWrite() (*Tx, error) {
	db.PendingWriterCount.Add(1)
	stx, err := db.st.BeginTx(true)
	db.PendingWriterCount.Add(-1)
	if err != nil {
		return nil, Substrate("begin", err, false)
	}
	db.WriterCount.Add(1)
	return db.newTx(stx, false), nil
}

// View runs f inside a read-only transaction.
func (db *DB) View(f func(tx *Tx) error) error {
	tx, err := db.BeginRead()
	if err != nil {
		return err
	}
	defer tx.Close()
	db.ReadCount.Add(1)
	if db.verbose && db.logf != nil {
		db.logf("polykv: VIEW begin")
	}
	return safelyCall(f, tx)
}

// Update runs f inside a writable transaction and commits if f returns
// nil. A commit conflict comes back wrapped in *SubstrateError with its
// Retryable field set; Update does not retry it itself.
func (db *DB) Update(f func(tx *Tx) error) error {
	tx, err := db.BeginWrite()
	if err != nil {
		return err
	}
	defer tx.Close()
	db.WriteCount.Add(1)
	if err := safelyCall(f, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Commit commits a transaction begun with BeginWrite.
func (tx *Tx) Commit() error {
	if tx.closed {
		return nil
	}
	size := tx.stx.Size()
	err := tx.stx.Commit()
	tx.finish()
	if err == nil {
		tx.db.lastSize.Store(size)
	}
	if err != nil {
		return Substrate("commit", err, isRetryableCommitErr(err))
	}
	return nil
}

// Close rolls back the transaction if it hasn't been committed yet.
// Safe to call more than once.
func (tx *Tx) Close() {
	if tx.closed {
		return
	}
	if err := tx.stx.Rollback(); err != nil {
		tx.finish()
		panic(fmt.Errorf("polykv: rollback: %w", err))
	}
	tx.finish()
}

// finish marks the transaction closed and releases its slot in the
// reader/writer counters. Idempotent.
func (tx *Tx) finish() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.stx.Writable() {
		tx.db.WriterCount.Add(-1)
	} else {
		tx.db.ReaderCount.Add(-1)
	}
}

func isRetryableCommitErr(err error) bool {
	return errors.Is(err, badger.ErrConflict)
}

type panicked struct {
	reason any
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func safelyCall(fn func(*Tx) error, tx *Tx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn(tx)
}
