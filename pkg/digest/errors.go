// Package digest error kinds.
//
// Every rejection reason is a distinct sentinel so callers (and tests)
// can assert the exact cause with errors.Is. Encoding and protocol-shape
// errors are unrecoverable for the current transaction; the calling
// script must reject it. ErrNotTypedTransaction is informational: it
// signals the legacy fallback path, not a defect.
package digest

import "errors"

var (
	// ErrMalformedEncoding wraps a schema parse failure encountered
	// while hashing.
	ErrMalformedEncoding = errors.New("digest: malformed encoding")

	// ErrCellDataEof reports a 32-byte hash window whose source ended
	// before the window was satisfied.
	ErrCellDataEof = errors.New("digest: hash window past end of data")

	// ErrInvalidSource reports a hash reference with a region code
	// outside the six known sources.
	ErrInvalidSource = errors.New("digest: invalid source code")

	// ErrInvalidBool reports a Bool value whose byte is neither 0 nor 1.
	ErrInvalidBool = errors.New("digest: invalid bool byte")

	// ErrNumberTooLarge reports an Int/Uint/Address payload wider than
	// 32 bytes.
	ErrNumberTooLarge = errors.New("digest: number wider than 32 bytes")

	// ErrFixedBytesTooLarge reports a FixedBytes payload wider than 32
	// bytes.
	ErrFixedBytesTooLarge = errors.New("digest: fixed bytes wider than 32 bytes")

	// ErrNotTypedTransaction signals that no input witness carries an
	// action: the transaction does not use the extended scheme and the
	// caller should fall back to legacy handling.
	ErrNotTypedTransaction = errors.New("digest: not a typed transaction")

	// ErrDuplicateAction reports more than one SighashWithAction
	// witness in a single transaction.
	ErrDuplicateAction = errors.New("digest: duplicate action witness")

	// ErrNotSighashVariant reports a first group witness that is
	// neither Sighash nor SighashWithAction.
	ErrNotSighashVariant = errors.New("digest: witness is not a sighash variant")

	// ErrNonEmptyGroupWitness reports a group witness past index 0 that
	// carries bytes. A script group signs through exactly one slot.
	ErrNonEmptyGroupWitness = errors.New("digest: non-empty group witness")
)
