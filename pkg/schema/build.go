package schema

import (
	"bytes"
	"encoding/binary"
)

// Builders produce the exact wire form the parse functions accept. They
// exist for off-chain callers assembling witnesses and messages, and for
// test fixtures; on-chain code only ever parses.

func putUint32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

// buildUnion encodes tag (u32le) || payload.
func buildUnion(tag uint32, payload []byte) []byte {
	buf := new(bytes.Buffer)
	putUint32(buf, tag)
	buf.Write(payload)
	return buf.Bytes()
}

// buildBytes encodes a byte vector: count (u32le) || bytes.
func buildBytes(b []byte) []byte {
	buf := new(bytes.Buffer)
	putUint32(buf, uint32(len(b)))
	buf.Write(b)
	return buf.Bytes()
}

// buildTable encodes a table: total_size || field offsets || fields.
func buildTable(fields ...[]byte) []byte {
	header := headerSize + headerSize*len(fields)
	total := header
	for _, f := range fields {
		total += len(f)
	}
	buf := new(bytes.Buffer)
	putUint32(buf, uint32(total))
	offset := header
	for _, f := range fields {
		putUint32(buf, uint32(offset))
		offset += len(f)
	}
	for _, f := range fields {
		buf.Write(f)
	}
	return buf.Bytes()
}

// buildBytesVec encodes a dynamic vector whose items are byte vectors.
func buildBytesVec(items [][]byte) []byte {
	encoded := make([][]byte, len(items))
	for i, item := range items {
		encoded[i] = buildBytes(item)
	}
	return buildTable(encoded...)
}

// InlineHash encodes a Hash carrying its 32-byte digest directly.
func InlineHash(digest [32]byte) []byte {
	return buildUnion(hashTagInline, digest[:])
}

// CellRefHash encodes a Hash deferred to a 32-byte window of cell data.
func CellRefHash(source uint64, index, offset uint32) []byte {
	payload := make([]byte, refCellSize)
	binary.LittleEndian.PutUint64(payload[0:8], source)
	binary.LittleEndian.PutUint32(payload[8:12], index)
	binary.LittleEndian.PutUint32(payload[12:16], offset)
	return buildUnion(hashTagCellRef, payload)
}

// TransactionRefHash encodes a Hash deferred to a 32-byte window of the
// serialized transaction.
func TransactionRefHash(offset uint32) []byte {
	payload := make([]byte, refTransactionSize)
	binary.LittleEndian.PutUint32(payload, offset)
	return buildUnion(hashTagTransactionRef, payload)
}

// StructBytes encodes a Struct table from a serialized type hash and
// serialized member Values in declaration order.
func StructBytes(typeHash []byte, values ...[]byte) []byte {
	return buildTable(typeHash, buildBytesVec(values))
}

// StructValue wraps a serialized Struct as a Value.
func StructValue(structBytes []byte) []byte {
	return buildUnion(valueTagStruct, structBytes)
}

// ArrayValue encodes an Array value from serialized element Values.
func ArrayValue(values ...[]byte) []byte {
	return buildUnion(valueTagArray, buildTable(buildBytesVec(values)))
}

// BoolValue encodes a Bool value. The byte is written as given; the
// digest layer enforces that it is 0 or 1.
func BoolValue(b byte) []byte {
	return buildUnion(valueTagBool, []byte{b})
}

// BytesValue encodes a Bytes value.
func BytesValue(b []byte) []byte {
	return buildUnion(valueTagBytes, buildBytes(b))
}

// StringValue encodes a String value. UTF-8 is conventional, not
// enforced.
func StringValue(s string) []byte {
	return buildUnion(valueTagString, buildBytes([]byte(s)))
}

// AddressValue encodes an Address value (semantically a uint160).
func AddressValue(b []byte) []byte {
	return buildUnion(valueTagAddress, buildBytes(b))
}

// FixedBytesValue encodes a FixedBytes value.
func FixedBytesValue(b []byte) []byte {
	return buildUnion(valueTagFixedBytes, buildBytes(b))
}

// IntValue encodes an Int value (two's-complement, big-endian payload).
func IntValue(b []byte) []byte {
	return buildUnion(valueTagInt, buildBytes(b))
}

// UintValue encodes a Uint value (unsigned, big-endian payload).
func UintValue(b []byte) []byte {
	return buildUnion(valueTagUint, buildBytes(b))
}

// EIP712Message encodes a TypedMessage from a serialized domain
// separator Hash and a serialized message Struct.
func EIP712Message(domainSeparator, message []byte) []byte {
	return buildUnion(messageTagEIP712, buildTable(domainSeparator, message))
}

// SighashWitness encodes an ExtendedWitness of the plain Sighash
// variant.
func SighashWitness(signature []byte) []byte {
	return buildUnion(witnessTagSighash, buildTable(buildBytes(signature)))
}

// SighashWithActionWitness encodes an ExtendedWitness carrying an action
// message alongside the signature.
func SighashWithActionWitness(signature, message []byte) []byte {
	return buildUnion(witnessTagSighashWithAction,
		buildTable(buildBytes(signature), buildBytes(message)))
}

// UnknownWitness encodes an ExtendedWitness with an arbitrary tag. Test
// fixtures use it to simulate witnesses from future scheme versions.
func UnknownWitness(tag uint32, payload []byte) []byte {
	return buildUnion(tag, payload)
}
