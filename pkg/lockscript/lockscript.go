package lockscript

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	blake2b "github.com/minio/blake2b-simd"

	"github.com/cellscript/typedtx/pkg/digest"
)

// SignatureSize is the length of a compact recoverable signature:
// recovery header (1) || R (32) || S (32).
const SignatureSize = 65

// Blake160Size is the length of a committed public key hash.
const Blake160Size = 20

// ErrSignatureMismatch is returned when a signature recovers to a
// public key other than the committed one.
var ErrSignatureMismatch = errors.New("lockscript: signature does not match key hash")

// Blake160 returns the 20-byte key hash of a compressed public key: the
// leading bytes of its personalized BLAKE2b-256 digest, using the same
// personalization tag as the transaction digest scheme.
func Blake160(pubkey *PublicKey) ([Blake160Size]byte, error) {
	var out [Blake160Size]byte
	h, err := blake2b.New(&blake2b.Config{
		Size:   32,
		Person: []byte(digest.SighashAllPersonalization),
	})
	if err != nil {
		return out, err
	}
	h.Write(pubkey.Bytes())
	copy(out[:], h.Sum(nil)[:Blake160Size])
	return out, nil
}

// SignRecoverable signs a 32-byte digest and returns the compact
// recoverable signature the verifier can recover the public key from.
func (pk *PrivateKey) SignRecoverable(hash [32]byte) ([SignatureSize]byte, error) {
	var out [SignatureSize]byte
	sig := ecdsa.SignCompact(pk.key, hash[:], true)
	if len(sig) != SignatureSize {
		return out, fmt.Errorf("unexpected compact signature length %d", len(sig))
	}
	copy(out[:], sig)
	return out, nil
}

// RecoverPublicKey recovers the signing public key from a compact
// recoverable signature over hash.
func RecoverPublicKey(hash [32]byte, signature [SignatureSize]byte) (*PublicKey, error) {
	pubKey, _, err := ecdsa.RecoverCompact(signature[:], hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: %w", err)
	}
	return &PublicKey{key: pubKey}, nil
}

// VerifyRecoverable checks that signature was produced over hash by the
// key committed as keyHash. This is the verification a lock script runs
// after computing the sighash-all digest.
func VerifyRecoverable(hash [32]byte, signature [SignatureSize]byte, keyHash [Blake160Size]byte) error {
	pubKey, err := RecoverPublicKey(hash, signature)
	if err != nil {
		return err
	}
	recovered, err := Blake160(pubKey)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(recovered[:], keyHash[:]) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}
