// Package api is the high-level public surface of the typedtx library.
//
// A verifying caller (typically a lock script, or an off-chain harness
// simulating one) uses four operations:
//
//  1. FindActionWitness - locates the transaction's action payload
//  2. IsTypedTransaction - reports whether the extended scheme is in use
//  3. SighashAllDigest - the transaction-wide authenticated digest
//  4. TypedMessageDigest - the EIP-712 digest of a structured message
//
// All operations read the transaction exclusively through the vm.Loader
// capability, so the same code runs against a real script runtime or a
// vm.MockTransaction.
package api

import (
	"fmt"

	"github.com/cellscript/typedtx/pkg/digest"
	"github.com/cellscript/typedtx/pkg/schema"
	"github.com/cellscript/typedtx/pkg/vm"
)

// FindActionWitness scans the transaction's input witnesses and returns
// an owned copy of its action message payload.
//
// Returns digest.ErrNotTypedTransaction when no witness carries an
// action (the caller should fall back to legacy handling) and
// digest.ErrDuplicateAction when more than one does.
func FindActionWitness(loader vm.Loader) ([]byte, error) {
	return digest.NewProtocol(loader).FindActionWitness()
}

// IsTypedTransaction reports whether the transaction uses the extended
// signing scheme. It runs the full witness scan; callers that also need
// the payload should call FindActionWitness once instead.
func IsTypedTransaction(loader vm.Loader) bool {
	return digest.NewProtocol(loader).IsTypedTransaction()
}

// SighashAllDigest computes the digest a signature over the whole typed
// transaction must cover. The caller is responsible for having
// established that the transaction is typed (FindActionWitness).
func SighashAllDigest(loader vm.Loader) ([32]byte, error) {
	return digest.NewProtocol(loader).SighashAllDigest()
}

// TypedMessageDigest parses a serialized TypedMessage and computes its
// EIP-712 digest, resolving deferred hash references through loader.
func TypedMessageDigest(loader vm.Loader, message []byte) ([32]byte, error) {
	parsed, err := schema.ParseTypedMessage(message)
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: %v", digest.ErrMalformedEncoding, err)
	}
	return digest.New(loader).TypedMessageDigest(parsed)
}
