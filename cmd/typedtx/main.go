// typedtx CLI - typed transaction digest tool
//
// This CLI exercises the typedtx library against simulated transactions
// described as JSON fixtures, for debugging lock scripts and generating
// reference digests off-chain.
//
// Example usage:
//   # Scan a transaction for its action witness
//   typedtx scan tx.json
//
//   # Compute the sighash-all digest
//   typedtx digest tx.json
//
//   # Sign the digest with a private key
//   typedtx sign tx.json <privkey-hex|wif>
//
//   # Verify a witness signature against a key hash
//   typedtx verify tx.json <sig-hex> <keyhash-hex>
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/cellscript/typedtx/pkg/api"
	"github.com/cellscript/typedtx/pkg/digest"
	"github.com/cellscript/typedtx/pkg/lockscript"
	"github.com/cellscript/typedtx/pkg/schema"
	"github.com/cellscript/typedtx/pkg/vm"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "scan":
		cmdScan()
	case "digest":
		cmdDigest()
	case "message-digest":
		cmdMessageDigest()
	case "inspect":
		cmdInspect()
	case "sign":
		cmdSign()
	case "verify":
		cmdVerify()
	case "version":
		cmdVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`typedtx - typed transaction digest tool

Usage:
  typedtx <command> [options]

Commands:
  scan <tx.json>                        Scan input witnesses for the action payload
  digest <tx.json>                      Compute the sighash-all digest
  message-digest <tx.json> <msg-hex>    Compute the EIP-712 digest of a typed message
  inspect <tx.json>                     Dump the parsed witness structures
  sign <tx.json> <key>                  Sign the sighash-all digest (raw hex or WIF key)
  verify <tx.json> <sig-hex> <keyhash>  Verify a recoverable signature
  version                               Show version information
  help                                  Show this help message

The fixture file describes a simulated transaction: tx hash, input since
fields, witnesses, the current script group, and per-region cell data,
all hex-encoded.`)
}

func cmdVersion() {
	fmt.Println("typedtx v0.1.0")
	fmt.Println("Digest construction library for typed transactions")
}

func mustLoadFixture(arg int, usage string) *vm.MockTransaction {
	if len(os.Args) <= arg {
		fmt.Fprintln(os.Stderr, "Error: fixture file argument required")
		fmt.Fprintf(os.Stderr, "Usage: typedtx %s\n", usage)
		os.Exit(1)
	}
	tx, err := loadFixture(os.Args[arg])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return tx
}

func cmdScan() {
	tx := mustLoadFixture(2, "scan <tx.json>")

	payload, err := api.FindActionWitness(tx)
	switch {
	case errors.Is(err, digest.ErrNotTypedTransaction):
		fmt.Println("Not a typed transaction (no action witness)")
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	default:
		fmt.Printf("Action payload (%d bytes): %x\n", len(payload), payload)
	}
}

func cmdDigest() {
	tx := mustLoadFixture(2, "digest <tx.json>")

	if !api.IsTypedTransaction(tx) {
		fmt.Fprintln(os.Stderr, "Error: not a typed transaction")
		os.Exit(1)
	}
	sighash, err := api.SighashAllDigest(tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sighash-all digest: %x\n", sighash)
}

func cmdMessageDigest() {
	tx := mustLoadFixture(2, "message-digest <tx.json> <msg-hex>")
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Error: message hex argument required")
		os.Exit(1)
	}
	message, err := hex.DecodeString(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid message hex: %v\n", err)
		os.Exit(1)
	}

	msgDigest, err := api.TypedMessageDigest(tx, message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Typed message digest: %x\n", msgDigest)
}

func cmdInspect() {
	tx := mustLoadFixture(2, "inspect <tx.json>")

	fmt.Printf("Transaction hash: %x\n", tx.Hash)
	fmt.Printf("Inputs: %d, witnesses: %d, group: %v\n\n", len(tx.Sinces), len(tx.Witnesses), tx.Group)
	for i, witness := range tx.Witnesses {
		parsed, err := schema.ParseExtendedWitness(witness)
		if err != nil {
			fmt.Printf("witness %d: not an extended witness (%v)\n", i, err)
			continue
		}
		fmt.Printf("witness %d:\n", i)
		spew.Dump(parsed)
	}
}

func cmdSign() {
	tx := mustLoadFixture(2, "sign <tx.json> <key>")
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Error: key argument required")
		os.Exit(1)
	}

	key, err := parseKey(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sighash, err := api.SighashAllDigest(tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	signature, err := key.SignRecoverable(sighash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	keyHash, err := lockscript.Blake160(key.PublicKey())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Digest:    %x\n", sighash)
	fmt.Printf("Signature: %x\n", signature)
	fmt.Printf("Key hash:  %x\n", keyHash)
}

func cmdVerify() {
	tx := mustLoadFixture(2, "verify <tx.json> <sig-hex> <keyhash-hex>")
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Error: signature and key hash arguments required")
		os.Exit(1)
	}

	sigBytes, err := hex.DecodeString(os.Args[3])
	if err != nil || len(sigBytes) != lockscript.SignatureSize {
		fmt.Fprintf(os.Stderr, "Error: signature must be %d hex-encoded bytes\n", lockscript.SignatureSize)
		os.Exit(1)
	}
	hashBytes, err := hex.DecodeString(os.Args[4])
	if err != nil || len(hashBytes) != lockscript.Blake160Size {
		fmt.Fprintf(os.Stderr, "Error: key hash must be %d hex-encoded bytes\n", lockscript.Blake160Size)
		os.Exit(1)
	}
	var signature [lockscript.SignatureSize]byte
	copy(signature[:], sigBytes)
	var keyHash [lockscript.Blake160Size]byte
	copy(keyHash[:], hashBytes)

	sighash, err := api.SighashAllDigest(tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := lockscript.VerifyRecoverable(sighash, signature, keyHash); err != nil {
		fmt.Fprintf(os.Stderr, "Verification FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Verification OK")
}

// parseKey accepts a raw 32-byte hex private key or a WIF string.
func parseKey(s string) (*lockscript.PrivateKey, error) {
	if raw, err := hex.DecodeString(s); err == nil && len(raw) == 32 {
		return lockscript.PrivateKeyFromBytes(raw)
	}
	return lockscript.ParsePrivateKeyWIF(s)
}
