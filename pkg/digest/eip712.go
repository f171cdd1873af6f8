// Package digest computes the two digests a signature over a typed
// transaction must cover.
//
// The typed-message engine hashes a structured message per EIP-712:
// Keccak-256 over 0x19 || 0x01 || domainSeparator || hashStruct(message),
// where hashStruct concatenates the struct's type hash with the encoding
// of every member in declaration order and hashes the whole input once.
//
// One deliberate deviation from canonical EIP-712: array elements are
// encoded directly into the enclosing struct's running hash input
// instead of being hashed as one concatenated unit first. This is the
// behavior existing signers depend on; correcting it would change every
// digest containing an array and needs explicit versioning.
//
// References:
//   - EIP-712: https://eips.ethereum.org/EIPS/eip-712
package digest

import (
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"

	"github.com/cellscript/typedtx/pkg/schema"
	"github.com/cellscript/typedtx/pkg/vm"
)

// eip712Prefix is the fixed two-byte magic EIP-712 prepends to prevent
// digest collisions with other signing schemes.
var eip712Prefix = []byte{0x19, 0x01}

// Engine computes typed-message digests against one transaction's
// introspection port. It holds no state between calls; every digest is a
// pure function of the message and the port's contents.
type Engine struct {
	loader vm.Loader
}

// New returns an Engine reading through loader.
func New(loader vm.Loader) *Engine {
	return &Engine{loader: loader}
}

// TypedMessageDigest hashes a typed message into its 32-byte EIP-712
// digest.
func (e *Engine) TypedMessageDigest(msg *schema.TypedMessage) ([32]byte, error) {
	var out [32]byte
	if msg.Kind != schema.MessageEIP712 {
		return out, fmt.Errorf("%w: unrecognized typed message variant %d",
			ErrMalformedEncoding, msg.Tag)
	}

	domain, err := e.resolveHash(&msg.DomainSeparator)
	if err != nil {
		return out, fmt.Errorf("resolving domain separator: %w", err)
	}
	messageHash, err := e.hashStruct(&msg.Message)
	if err != nil {
		return out, err
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(eip712Prefix)
	h.Write(domain[:])
	h.Write(messageHash[:])
	copy(out[:], h.Sum(nil))
	return out, nil
}

// resolveHash materializes a Hash reference into its 32 bytes. Inline
// hashes return directly; deferred references read a 32-byte window
// through the port.
//
// Window rule: the destination buffer is pre-zeroed, so a read that the
// port reports as "length not enough" (buffer filled, more data beyond)
// succeeds, and a window starting before the end of a shorter region is
// implicitly zero-filled only up to what was copied — fewer than 32
// copied bytes is ErrCellDataEof.
func (e *Engine) resolveHash(h *schema.Hash) ([32]byte, error) {
	var out [32]byte
	switch h.Kind {
	case schema.HashInline:
		return h.Inline, nil
	case schema.HashCellRef:
		source, ok := vm.SourceFromCode(h.Source)
		if !ok {
			return out, fmt.Errorf("%w: %d", ErrInvalidSource, h.Source)
		}
		n, err := e.loader.LoadCellData(out[:], h.Offset, h.Index, source)
		return finishWindow(out, n, err)
	case schema.HashTransactionRef:
		n, err := e.loader.LoadTransaction(out[:], h.Offset)
		return finishWindow(out, n, err)
	default:
		return out, fmt.Errorf("%w: unknown hash variant", ErrMalformedEncoding)
	}
}

func finishWindow(out [32]byte, n int, err error) ([32]byte, error) {
	switch {
	case err == nil:
		if n < len(out) {
			return out, fmt.Errorf("%w: read %d bytes", ErrCellDataEof, n)
		}
		return out, nil
	case vm.IsLengthNotEnough(err):
		// Buffer filled completely; the region simply held more.
		return out, nil
	default:
		return out, fmt.Errorf("loading hash window: %w", err)
	}
}

// hashStruct implements the EIP-712 hashStruct operation: one Keccak-256
// over the resolved type hash followed by every member's encoding, in
// declaration order. Members are not hashed individually first.
func (e *Engine) hashStruct(s *schema.Struct) ([32]byte, error) {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()

	typeHash, err := e.resolveHash(&s.TypeHash)
	if err != nil {
		return out, fmt.Errorf("resolving type hash: %w", err)
	}
	h.Write(typeHash[:])

	for i, raw := range s.Values {
		value, err := schema.ParseValue(raw)
		if err != nil {
			return out, fmt.Errorf("%w: member %d: %v", ErrMalformedEncoding, i, err)
		}
		if err := e.encodeValue(h, value); err != nil {
			return out, err
		}
	}

	copy(out[:], h.Sum(nil))
	return out, nil
}

// encodeValue writes one value's encoding into the enclosing struct's
// running hash input.
func (e *Engine) encodeValue(h hash.Hash, v *schema.Value) error {
	switch v.Kind {
	case schema.ValueStruct:
		nested, err := e.hashStruct(v.Struct)
		if err != nil {
			return err
		}
		h.Write(nested[:])
	case schema.ValueArray:
		// Elements flatten into the parent's running input; see the
		// package comment for why this stays as-is.
		for i, raw := range v.Values {
			element, err := schema.ParseValue(raw)
			if err != nil {
				return fmt.Errorf("%w: array element %d: %v", ErrMalformedEncoding, i, err)
			}
			if err := e.encodeValue(h, element); err != nil {
				return err
			}
		}
	case schema.ValueBool:
		if v.Raw[0] != 0 && v.Raw[0] != 1 {
			return fmt.Errorf("%w: 0x%02x", ErrInvalidBool, v.Raw[0])
		}
		return encodeNumber(h, v.Raw, false)
	case schema.ValueBytes, schema.ValueString:
		sum := keccak256(v.Raw)
		h.Write(sum[:])
	case schema.ValueAddress:
		// Addresses are uint160.
		return encodeNumber(h, v.Raw, false)
	case schema.ValueFixedBytes:
		if len(v.Raw) > 32 {
			return fmt.Errorf("%w: %d bytes", ErrFixedBytesTooLarge, len(v.Raw))
		}
		var buf [32]byte
		copy(buf[:], v.Raw) // left-aligned, zero-padded tail
		h.Write(buf[:])
	case schema.ValueInt:
		return encodeNumber(h, v.Raw, true)
	case schema.ValueUint:
		return encodeNumber(h, v.Raw, false)
	default:
		return fmt.Errorf("%w: unknown value variant", ErrMalformedEncoding)
	}
	return nil
}

// encodeNumber writes n right-aligned into a 32-byte word. Signed
// numbers sign-extend from the payload's most significant bit; unsigned
// numbers zero-extend. Payloads of different widths and equal numeric
// value therefore encode identically.
func encodeNumber(h hash.Hash, n []byte, signed bool) error {
	if len(n) > 32 {
		return fmt.Errorf("%w: %d bytes", ErrNumberTooLarge, len(n))
	}
	fill := byte(0x00)
	if signed && len(n) > 0 && n[0]&0x80 != 0 {
		fill = 0xFF
	}
	var buf [32]byte
	for i := 0; i < 32-len(n); i++ {
		buf[i] = fill
	}
	copy(buf[32-len(n):], n)
	h.Write(buf[:])
	return nil
}

func keccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
