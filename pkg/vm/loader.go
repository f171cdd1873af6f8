// Package vm models the transaction introspection surface a CKB-style
// script VM exposes to a running lock script.
//
// On chain these reads are syscalls against the ambient transaction; here
// they are an explicit Loader capability so the digest code can run both
// inside a script runtime and against simulated transactions in tests.
//
// Load semantics follow the syscall convention: buffered reads copy as
// much as fits starting at the requested offset, and report the
// distinguished "length not enough" condition when the region holds more
// than the destination buffer.
package vm

// Source identifies a transaction region an index refers to.
//
// The Group variants restrict the index space to the cells validated by
// the currently executing script (the "script group").
type Source uint64

// Region codes as they appear on the wire (inside RefCell references)
// and in syscall arguments.
const (
	SourceInput       Source = 1
	SourceOutput      Source = 2
	SourceCellDep     Source = 3
	SourceHeaderDep   Source = 4
	SourceGroupInput  Source = 0x0100000000000001
	SourceGroupOutput Source = 0x0100000000000002
)

// SourceFromCode translates a raw numeric code (as read from a RefCell
// field) into a Source. ok is false for codes outside the six known
// regions.
func SourceFromCode(code uint64) (Source, bool) {
	switch s := Source(code); s {
	case SourceInput, SourceOutput, SourceCellDep, SourceHeaderDep,
		SourceGroupInput, SourceGroupOutput:
		return s, true
	default:
		return 0, false
	}
}

// Loader is the read-only transaction introspection port.
//
// Buffered loads (LoadTransaction, LoadCellData) copy up to len(buf)
// bytes of the region starting at offset and return the number of bytes
// copied. If the region holds more data than fits in buf, the buffer is
// filled completely and a *LengthNotEnoughError reports the full size.
// An offset at or past the end of the region copies zero bytes with a
// nil error. An index outside the region returns ErrIndexOutOfBound.
type Loader interface {
	// TxHash returns the hash of the current transaction.
	TxHash() ([32]byte, error)

	// LoadTransaction reads from the serialized transaction.
	LoadTransaction(buf []byte, offset uint32) (int, error)

	// LoadCellData reads from the data of the cell at (source, index).
	LoadCellData(buf []byte, offset, index uint32, source Source) (int, error)

	// LoadWitness returns the witness at (index, source).
	LoadWitness(index uint32, source Source) ([]byte, error)

	// LoadInputSince returns the since field of the input at
	// (index, source). Source must be an input region.
	LoadInputSince(index uint32, source Source) (uint64, error)
}
