// Package schema implements the binary encoding of typed messages and
// extended witnesses.
//
// The wire format is molecule-flavored: unions are a 4-byte little-endian
// tag followed by the payload, byte vectors carry a 4-byte count header,
// and tables carry a total-size header plus one 4-byte offset per field.
// All integers are little-endian.
//
// Parse functions validate shape only (headers, sizes, offsets, known
// tags). Semantic rules — bool bytes, numeric widths, the
// one-action-per-transaction rule — belong to the digest layer.
package schema

// HashKind selects the active variant of a Hash.
type HashKind int

const (
	// HashInline carries the 32-byte digest directly.
	HashInline HashKind = iota
	// HashCellRef defers to a 32-byte window of cell data at
	// (source, index, offset).
	HashCellRef
	// HashTransactionRef defers to a 32-byte window of the serialized
	// transaction at offset.
	HashTransactionRef
)

// Hash is either an inline 32-byte digest or a coordinate that resolves
// to one through the transaction introspection port. It is a plain value
// type; references own nothing.
type Hash struct {
	Kind HashKind

	// Inline is set for HashInline.
	Inline [32]byte

	// Source and Index are set for HashCellRef. Source is the raw
	// numeric region code as it appears on the wire; translation to a
	// known region happens at resolve time.
	Source uint64
	Index  uint32

	// Offset is set for HashCellRef and HashTransactionRef.
	Offset uint32
}

// Struct is a typed structured value: a type hash plus its member values
// in declaration order. Order is semantically significant — it fixes the
// encoding order and therefore the digest.
//
// Values holds each member still in serialized Value form; members are
// decoded lazily during hashing so a malformed member surfaces exactly
// when it would influence a digest.
type Struct struct {
	TypeHash Hash
	Values   [][]byte
}

// ValueKind selects the active variant of a Value.
type ValueKind int

const (
	ValueStruct ValueKind = iota
	ValueArray
	ValueBool
	ValueBytes
	ValueString
	ValueAddress
	ValueFixedBytes
	ValueInt
	ValueUint
)

// String returns the schema name of the variant.
func (k ValueKind) String() string {
	switch k {
	case ValueStruct:
		return "Struct"
	case ValueArray:
		return "Array"
	case ValueBool:
		return "Bool"
	case ValueBytes:
		return "Bytes"
	case ValueString:
		return "String"
	case ValueAddress:
		return "Address"
	case ValueFixedBytes:
		return "FixedBytes"
	case ValueInt:
		return "Int"
	case ValueUint:
		return "Uint"
	default:
		return "Unknown"
	}
}

// Value is one member of a Struct. Exactly one of the variant fields is
// meaningful, selected by Kind:
//
//   - ValueStruct: Struct holds the nested struct.
//   - ValueArray: Values holds the serialized element Values in order.
//   - scalars: Raw holds the payload content (without the count header).
type Value struct {
	Kind   ValueKind
	Struct *Struct
	Values [][]byte
	Raw    []byte
}

// TypedMessageKind selects the active variant of a TypedMessage.
type TypedMessageKind int

const (
	// MessageEIP712 is the only variant defined so far.
	MessageEIP712 TypedMessageKind = iota
	// MessageUnknown marks a tag this version does not recognize. The
	// digest engine must reject it rather than mis-hash it.
	MessageUnknown
)

// TypedMessage is the structured message a signature may additionally
// cover, in the EIP-712 sense.
type TypedMessage struct {
	Kind TypedMessageKind
	Tag  uint32 // raw union tag, meaningful for MessageUnknown

	// DomainSeparator and Message are set for MessageEIP712.
	DomainSeparator Hash
	Message         Struct

	// Raw is the unparsed payload of an unknown variant.
	Raw []byte
}

// WitnessKind selects the active variant of an ExtendedWitness.
type WitnessKind int

const (
	// WitnessSighash carries a signature over the plain sighash-all
	// digest.
	WitnessSighash WitnessKind = iota
	// WitnessSighashWithAction additionally carries the serialized
	// action message covered by the digest.
	WitnessSighashWithAction
	// WitnessUnknown marks a tag reserved for future schemes. It must
	// be distinguishable from the known variants without failing the
	// parse.
	WitnessUnknown
)

// ExtendedWitness is the per-input-group witness of the extended
// signing scheme.
type ExtendedWitness struct {
	Kind WitnessKind
	Tag  uint32 // raw union tag, meaningful for WitnessUnknown

	// Signature is set for the two known variants.
	Signature []byte

	// Message is the raw action payload, set for
	// WitnessSighashWithAction. Its content is itself schema-encoded
	// (typically a TypedMessage), so its length is already bounded by
	// its own encoding.
	Message []byte

	// Raw is the unparsed payload of an unknown variant.
	Raw []byte
}
