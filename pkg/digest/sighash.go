package digest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	blake2b "github.com/minio/blake2b-simd"

	"github.com/cellscript/typedtx/pkg/schema"
	"github.com/cellscript/typedtx/pkg/vm"
)

// SighashAllPersonalization is the 16-byte BLAKE2b personalization tag
// of the default transaction digest scheme. The personalization is NOT a
// key; it is a distinct parameter that makes this hash domain-separate
// from every other use of BLAKE2b-256.
const SighashAllPersonalization = "ckb-default-hash"

// Markers distinguishing the first group witness's variant inside the
// digest preimage.
const (
	markerSighash           byte = 0
	markerSighashWithAction byte = 1
)

// blake2b256 creates a BLAKE2b-256 hash with the given personalization.
func blake2b256(personalization []byte) (hash.Hash, error) {
	return blake2b.New(&blake2b.Config{
		Size:   32,
		Person: personalization,
	})
}

// Protocol implements the sighash-all scheme over one transaction's
// introspection port: the witness scan locating the optional action, the
// witness-set shape rules, and the transaction-wide digest.
type Protocol struct {
	loader vm.Loader
}

// NewProtocol returns a Protocol reading through loader.
func NewProtocol(loader vm.Loader) *Protocol {
	return &Protocol{loader: loader}
}

// FindActionWitness scans all input witnesses for the transaction's
// action payload.
//
// The scan walks indices 0, 1, 2, ... over the global input source.
// Witnesses that do not parse as an ExtendedWitness, and witnesses of
// unrecognized future variants, are skipped. The first SighashWithAction
// ends the search but not the scan: the remaining indices are still
// visited to reject a second occurrence (ErrDuplicateAction — at most
// one action per transaction). A scan that exhausts without a find
// returns ErrNotTypedTransaction.
//
// The returned payload is an owned copy of the action message bytes.
func (p *Protocol) FindActionWitness() ([]byte, error) {
	var found []byte
	for i := uint32(0); ; i++ {
		witness, err := p.loader.LoadWitness(i, vm.SourceInput)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			if found == nil {
				return nil, ErrNotTypedTransaction
			}
			return found, nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading witness %d: %w", i, err)
		}
		extended, err := schema.ParseExtendedWitness(witness)
		if err != nil || extended.Kind != schema.WitnessSighashWithAction {
			continue
		}
		if found != nil {
			return nil, ErrDuplicateAction
		}
		found = append([]byte(nil), extended.Message...)
	}
}

// IsTypedTransaction reports whether the transaction carries exactly one
// action witness, i.e. uses the extended signing scheme.
//
// It re-runs the full scan. Callers that need both the flag and the
// payload should call FindActionWitness once and branch on its error.
func (p *Protocol) IsTypedTransaction() bool {
	_, err := p.FindActionWitness()
	return err == nil
}

// SighashAllDigest computes the transaction-wide authenticated digest:
// a personalized BLAKE2b-256 over the transaction hash, the current
// group's first witness (marker byte plus, for an action witness, the
// raw message bytes), and every witness past the last input-bound slot.
//
// The action message is fed with no length prefix: its own schema
// encoding already bounds it, so hashing a length would be redundant.
//
// The caller must have established that the transaction is a typed
// transaction (FindActionWitness); this is not re-verified here.
func (p *Protocol) SighashAllDigest() ([32]byte, error) {
	var out [32]byte
	hasher, err := blake2b256([]byte(SighashAllPersonalization))
	if err != nil {
		return out, err
	}

	txHash, err := p.loader.TxHash()
	if err != nil {
		return out, fmt.Errorf("loading transaction hash: %w", err)
	}
	hasher.Write(txHash[:])

	// The group's first witness decides whether an action is covered.
	first, err := p.loader.LoadWitness(0, vm.SourceGroupInput)
	if err != nil {
		return out, fmt.Errorf("loading group witness 0: %w", err)
	}
	extended, err := schema.ParseExtendedWitness(first)
	if err != nil {
		return out, fmt.Errorf("%w: group witness 0: %v", ErrMalformedEncoding, err)
	}
	switch extended.Kind {
	case schema.WitnessSighashWithAction:
		hasher.Write([]byte{markerSighashWithAction})
		hasher.Write(extended.Message)
	case schema.WitnessSighash:
		hasher.Write([]byte{markerSighash})
	default:
		return out, fmt.Errorf("%w: variant tag %d", ErrNotSighashVariant, extended.Tag)
	}

	// Every further witness of the group must be empty: one script
	// group signs through exactly one witness slot.
	for i := uint32(1); ; i++ {
		witness, err := p.loader.LoadWitness(i, vm.SourceGroupInput)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("loading group witness %d: %w", i, err)
		}
		if len(witness) > 0 {
			return out, fmt.Errorf("%w: index %d", ErrNonEmptyGroupWitness, i)
		}
	}

	// Witnesses past the last input-bound slot exist for cell-dep or
	// extension purposes and must still be covered by the signature,
	// length-prefixed.
	inputs, err := p.countInputs()
	if err != nil {
		return out, fmt.Errorf("counting inputs: %w", err)
	}
	for i := inputs; ; i++ {
		witness, err := p.loader.LoadWitness(i, vm.SourceInput)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("loading witness %d: %w", i, err)
		}
		var length [8]byte
		binary.LittleEndian.PutUint64(length[:], uint64(len(witness)))
		hasher.Write(length[:])
		hasher.Write(witness)
	}

	copy(out[:], hasher.Sum(nil))
	return out, nil
}

// countInputs determines the number of transaction inputs using only an
// existence probe per index (the since field read), since the port has
// no direct count primitive. An exponential phase brackets the boundary,
// a binary search pins it: O(log n) probes total, a deliberate bound for
// metered execution.
func (p *Protocol) countInputs() (uint32, error) {
	// An empty input set would otherwise make the search below converge
	// on 1.
	if _, err := p.loader.LoadInputSince(0, vm.SourceInput); err != nil {
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			return 0, nil
		}
		return 0, err
	}

	lo, hi := uint32(0), uint32(4)
	for {
		_, err := p.loader.LoadInputSince(hi, vm.SourceInput)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return 0, err
		}
		lo, hi = hi, hi*2
	}

	for lo+1 != hi {
		mid := (lo + hi) / 2
		_, err := p.loader.LoadInputSince(mid, vm.SourceInput)
		switch {
		case err == nil:
			lo = mid
		case errors.Is(err, vm.ErrIndexOutOfBound):
			hi = mid
		default:
			return 0, err
		}
	}
	return hi, nil
}
