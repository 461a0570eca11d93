package polykv

// ReadBatch is the SoA request for a batched blob read: one Address per
// task. Fields is consulted only by the docs layer (projection by field
// name or JSON Pointer); the blob layer ignores it and always returns
// whole values.
type ReadBatch struct {
	Addrs  []Address
	Fields []string
}

// ReadResult is the SoA response to a ReadBatch: parallel to Addrs.
// Values[i] is nil when the address was missing. Lengths is populated
// even when CallOptions.ReadLengths suppresses the payload copy, so
// callers that only need sizes never pay for materializing bytes.
type ReadResult struct {
	Values  [][]byte
	Present []bool
	Lengths []int
}

// WriteBatch is the SoA request for a batched blob write: Values[i]==nil
// erases Addrs[i].
type WriteBatch struct {
	Addrs  []Address
	Values [][]byte
}

// CallOptions carries the per-call flags from spec §4.1/§5.
type CallOptions struct {
	// WriteFlush requests durability before a write call returns, where
	// the backend supports an explicit sync (badger); ignored by
	// backends that are durable per-commit (bolt) or never durable
	// (mem).
	WriteFlush bool
	// ReadTrack requests that reads be recorded into the transaction's
	// conflict read-set. Bolt and the in-memory backend serialize
	// writers and never detect conflicts, so this only has an effect on
	// the badger backend, whose Txn.Get already records the read-set
	// natively — ReadTrack is accepted for API symmetry across
	// backends but requires no extra bookkeeping here.
	ReadTrack bool
	// ReadLengths skips copying payload bytes out of the substrate,
	// populating only ReadResult.Present/Lengths.
	ReadLengths bool
}

// syncer is implemented by substrate backends that support an explicit
// fsync-style flush distinct from transaction commit.
type syncer interface {
	Sync() error
}
