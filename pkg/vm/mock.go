package vm

// MockTransaction is an in-memory Loader that simulates an arbitrary
// transaction without a script runtime. Tests and the CLI build one
// directly; every accessor follows the syscall semantics documented on
// Loader.
type MockTransaction struct {
	Hash [32]byte
	Raw  []byte // serialized transaction bytes

	// Sinces holds the since field of every input; its length is the
	// input count the boundary probe should discover.
	Sinces []uint64

	// Witnesses is the transaction-wide witness list. It may be longer
	// than Sinces: trailing entries belong to no input.
	Witnesses [][]byte

	// Group and GroupOutputs map script-group-scoped indices to absolute
	// input/output indices for the currently executing script.
	Group        []uint32
	GroupOutputs []uint32

	// CellData holds per-region cell data, keyed by the four absolute
	// sources. Group sources resolve through Group/GroupOutputs.
	CellData map[Source][][]byte
}

var _ Loader = (*MockTransaction)(nil)

// TxHash returns the simulated transaction hash.
func (m *MockTransaction) TxHash() ([32]byte, error) {
	return m.Hash, nil
}

// LoadTransaction reads from the simulated serialized transaction.
func (m *MockTransaction) LoadTransaction(buf []byte, offset uint32) (int, error) {
	return copyRegion(buf, m.Raw, offset)
}

// LoadCellData reads from the data of the cell at (source, index).
func (m *MockTransaction) LoadCellData(buf []byte, offset, index uint32, source Source) (int, error) {
	abs, index, err := m.resolve(index, source)
	if err != nil {
		return 0, err
	}
	region := m.CellData[abs]
	if int(index) >= len(region) {
		return 0, ErrIndexOutOfBound
	}
	return copyRegion(buf, region[index], offset)
}

// LoadWitness returns the witness at (index, source).
func (m *MockTransaction) LoadWitness(index uint32, source Source) ([]byte, error) {
	switch source {
	case SourceGroupInput:
		var err error
		if index, err = mapGroup(index, m.Group); err != nil {
			return nil, err
		}
	case SourceGroupOutput:
		var err error
		if index, err = mapGroup(index, m.GroupOutputs); err != nil {
			return nil, err
		}
	}
	if int(index) >= len(m.Witnesses) {
		return nil, ErrIndexOutOfBound
	}
	return m.Witnesses[index], nil
}

// LoadInputSince returns the since field of the input at (index, source).
func (m *MockTransaction) LoadInputSince(index uint32, source Source) (uint64, error) {
	switch source {
	case SourceInput:
	case SourceGroupInput:
		var err error
		if index, err = mapGroup(index, m.Group); err != nil {
			return 0, err
		}
	default:
		return 0, ErrItemMissing
	}
	if int(index) >= len(m.Sinces) {
		return 0, ErrIndexOutOfBound
	}
	return m.Sinces[index], nil
}

// resolve maps a possibly group-scoped (index, source) pair to an
// absolute region and index.
func (m *MockTransaction) resolve(index uint32, source Source) (Source, uint32, error) {
	switch source {
	case SourceInput, SourceOutput, SourceCellDep, SourceHeaderDep:
		return source, index, nil
	case SourceGroupInput:
		index, err := mapGroup(index, m.Group)
		return SourceInput, index, err
	case SourceGroupOutput:
		index, err := mapGroup(index, m.GroupOutputs)
		return SourceOutput, index, err
	default:
		return 0, 0, ErrItemMissing
	}
}

func mapGroup(index uint32, group []uint32) (uint32, error) {
	if int(index) >= len(group) {
		return 0, ErrIndexOutOfBound
	}
	return group[index], nil
}

// copyRegion implements the buffered-read convention: copy up to
// len(buf) bytes starting at offset, reporting LengthNotEnoughError when
// the region held more than the buffer.
func copyRegion(buf, data []byte, offset uint32) (int, error) {
	if int(offset) >= len(data) {
		return 0, nil
	}
	remaining := data[offset:]
	n := copy(buf, remaining)
	if n < len(remaining) {
		return n, &LengthNotEnoughError{Available: len(remaining)}
	}
	return n, nil
}
