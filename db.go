package polykv

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.etcd.io/bbolt"
)

// Backend selects which substrate implementation a DB opens against.
type Backend int

const (
	// BackendBolt stores data in a single-file bbolt database. This is
	// the default: andreyvit-edb's own choice of substrate.
	BackendBolt Backend = iota
	// BackendBadger stores data in a Badger LSM directory.
	BackendBadger
	// BackendMem keeps everything in an in-process map; data does not
	// survive process exit. Intended for tests.
	BackendMem
)

// Options configures Open. It mirrors andreyvit-edb's Options struct,
// extended with the backend selector this module needs to support more
// than one substrate.
type Options struct {
	Backend Backend

	// Logf receives structured-ish log lines the way andreyvit-edb's
	// DB.logf does; nil disables logging. To plug in log/slog, format
	// the line and hand it to the default logger (DefaultLogf does this):
	//
	//	opt.Logf = func(format string, args ...any) {
	//		slog.Default().Info(fmt.Sprintf(format, args...))
	//	}
	Logf func(format string, args ...any)

	// Verbose enables per-operation log lines (GET/PUT/EXISTS/...).
	Verbose bool

	// IsTesting relaxes durability (NoSync) for the bolt backend and
	// turns off synchronous writes and L0 compaction on close for the
	// badger backend, trading durability for speed in tests.
	IsTesting bool

	// MmapSize overrides bbolt's initial mmap size; ignored by other
	// backends.
	MmapSize int
}

// DB owns a substrate handle and issues transactions against it.
type DB struct {
	st      storage
	logf    func(format string, args ...any)
	verbose bool

	lastSize           atomic.Int64
	ReaderCount        atomic.Int64
	WriterCount        atomic.Int64
	PendingWriterCount atomic.Int64
	ReadCount          atomic.Uint64
	WriteCount         atomic.Uint64
}

// Open opens (creating if necessary) a database at path using the backend
// named by opt.Backend. BackendMem ignores path.
func Open(path string, opt Options) (*DB, error) {
	var st storage
	var err error
	switch opt.Backend {
	case BackendBolt:
		st, err = openBoltForDB(path, opt)
	case BackendBadger:
		st, err = openBadgerForDB(path, opt)
	case BackendMem:
		st = newMemStorage()
	default:
		return nil, InvalidArgument(nil, "unknown backend %d", opt.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &DB{st: st, logf: opt.Logf, verbose: opt.Verbose}, nil
}

func openBoltForDB(path string, opt Options) (storage, error) {
	bopt := &bbolt.Options{Timeout: 10 * time.Second}
	*bopt = *bbolt.DefaultOptions
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}
	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("polykv: %w", err)
	}
	return newBoltStorage(bdb), nil
}

func openBadgerForDB(path string, opt Options) (storage, error) {
	bopt := badger.DefaultOptions(path)
	if opt.IsTesting {
		bopt = bopt.WithSyncWrites(false).WithCompactL0OnClose(false)
	}
	if !opt.Verbose {
		bopt = bopt.WithLogger(nil)
	}
	bdb, err := badger.Open(bopt)
	if err != nil {
		return nil, fmt.Errorf("polykv: %w", err)
	}
	return newBadgerStorage(bdb), nil
}

// Bolt returns the underlying *bbolt.DB, or nil if this DB wasn't opened
// with BackendBolt. Escape hatch for callers that need backend-specific
// tuning, mirroring andreyvit-edb's DB.Bolt().
func (db *DB) Bolt() *bbolt.DB {
	if b, ok := db.st.(*boltStorage); ok {
		return b.bdb
	}
	return nil
}

// Size returns the database size in bytes observed by the last
// successful Tx.Commit (0 before any commit, or if the backend doesn't
// report one).
func (db *DB) Size() int64 { return db.lastSize.Load() }

// Close closes the underlying substrate.
func (db *DB) Close() error { return db.st.Close() }

// DefaultLogf adapts log/slog's default logger into the Printf-style hook
// Options.Logf expects.
func DefaultLogf() func(format string, args ...any) {
	return func(format string, args ...any) {
		slog.Default().Info(fmt.Sprintf(format, args...))
	}
}
