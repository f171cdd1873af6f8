package schema

import "encoding/binary"

// Union tags as they appear on the wire.
const (
	hashTagInline         = 0
	hashTagCellRef        = 1
	hashTagTransactionRef = 2

	valueTagStruct     = 0
	valueTagArray      = 1
	valueTagBool       = 2
	valueTagBytes      = 3
	valueTagString     = 4
	valueTagAddress    = 5
	valueTagFixedBytes = 6
	valueTagInt        = 7
	valueTagUint       = 8

	messageTagEIP712 = 0

	witnessTagSighash           = 0
	witnessTagSighashWithAction = 1
)

// Fixed payload widths.
const (
	refCellSize        = 16 // source u64 || index u32 || offset u32
	refTransactionSize = 4  // offset u32
	headerSize         = 4
)

// readUnion splits a union encoding into its tag and payload.
func readUnion(typ string, data []byte) (uint32, []byte, error) {
	if len(data) < headerSize {
		return 0, nil, parseErr(typ, "union header truncated: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint32(data[:headerSize]), data[headerSize:], nil
}

// readBytes decodes a byte vector: count (u32le) followed by exactly
// count bytes.
func readBytes(typ string, data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, parseErr(typ, "byte vector header truncated: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint32(data[:headerSize])
	if uint32(len(data)-headerSize) != count {
		return nil, parseErr(typ, "byte vector count %d disagrees with %d payload bytes",
			count, len(data)-headerSize)
	}
	return data[headerSize:], nil
}

// readTable decodes a table with a fixed field count and returns one
// slice per field. Layout: total_size (u32le) || field offsets (u32le
// each) || field payloads.
func readTable(typ string, data []byte, fieldCount int) ([][]byte, error) {
	if len(data) < headerSize {
		return nil, parseErr(typ, "table header truncated: %d bytes", len(data))
	}
	total := binary.LittleEndian.Uint32(data[:headerSize])
	if uint32(len(data)) != total {
		return nil, parseErr(typ, "table size %d disagrees with %d buffer bytes", total, len(data))
	}
	header := headerSize + headerSize*fieldCount
	if len(data) < header {
		return nil, parseErr(typ, "table offsets truncated: %d bytes, need %d", len(data), header)
	}

	offsets := make([]uint32, fieldCount+1)
	for i := 0; i < fieldCount; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[headerSize+4*i : headerSize+4*i+4])
	}
	offsets[fieldCount] = total

	if offsets[0] != uint32(header) {
		return nil, parseErr(typ, "first field offset %d, expected %d", offsets[0], header)
	}
	fields := make([][]byte, fieldCount)
	for i := 0; i < fieldCount; i++ {
		if offsets[i] > offsets[i+1] || offsets[i+1] > total {
			return nil, parseErr(typ, "field %d offsets out of order: %d..%d of %d",
				i, offsets[i], offsets[i+1], total)
		}
		fields[i] = data[offsets[i]:offsets[i+1]]
	}
	return fields, nil
}

// readBytesVec decodes a dynamic vector of byte vectors. Layout:
// total_size (u32le) || item offsets (u32le each) || items. An empty
// vector is its 4-byte header alone.
func readBytesVec(typ string, data []byte) ([][]byte, error) {
	if len(data) < headerSize {
		return nil, parseErr(typ, "vector header truncated: %d bytes", len(data))
	}
	total := binary.LittleEndian.Uint32(data[:headerSize])
	if uint32(len(data)) != total {
		return nil, parseErr(typ, "vector size %d disagrees with %d buffer bytes", total, len(data))
	}
	if total == headerSize {
		return nil, nil
	}
	if total < headerSize+4 {
		return nil, parseErr(typ, "vector size %d too small for any item", total)
	}
	first := binary.LittleEndian.Uint32(data[headerSize : headerSize+4])
	if first < headerSize+4 || (first-headerSize)%4 != 0 {
		return nil, parseErr(typ, "invalid first item offset %d", first)
	}
	count := int((first - headerSize) / 4)
	if uint32(len(data)) < first {
		return nil, parseErr(typ, "item offsets truncated")
	}

	offsets := make([]uint32, count+1)
	for i := 0; i < count; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[headerSize+4*i : headerSize+4*i+4])
	}
	offsets[count] = total

	items := make([][]byte, count)
	for i := 0; i < count; i++ {
		if offsets[i] > offsets[i+1] || offsets[i+1] > total {
			return nil, parseErr(typ, "item %d offsets out of order: %d..%d of %d",
				i, offsets[i], offsets[i+1], total)
		}
		item, err := readBytes(typ, data[offsets[i]:offsets[i+1]])
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

// ParseHash decodes a Hash union. The union is closed: a tag outside the
// three defined variants is a parse error.
func ParseHash(data []byte) (*Hash, error) {
	tag, payload, err := readUnion("Hash", data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case hashTagInline:
		if len(payload) != 32 {
			return nil, parseErr("Hash", "inline digest is %d bytes, expected 32", len(payload))
		}
		h := &Hash{Kind: HashInline}
		copy(h.Inline[:], payload)
		return h, nil
	case hashTagCellRef:
		if len(payload) != refCellSize {
			return nil, parseErr("Hash", "cell reference is %d bytes, expected %d",
				len(payload), refCellSize)
		}
		return &Hash{
			Kind:   HashCellRef,
			Source: binary.LittleEndian.Uint64(payload[0:8]),
			Index:  binary.LittleEndian.Uint32(payload[8:12]),
			Offset: binary.LittleEndian.Uint32(payload[12:16]),
		}, nil
	case hashTagTransactionRef:
		if len(payload) != refTransactionSize {
			return nil, parseErr("Hash", "transaction reference is %d bytes, expected %d",
				len(payload), refTransactionSize)
		}
		return &Hash{
			Kind:   HashTransactionRef,
			Offset: binary.LittleEndian.Uint32(payload[0:4]),
		}, nil
	default:
		return nil, parseErr("Hash", "unknown variant tag %d", tag)
	}
}

// ParseStruct decodes a Struct table: {type_hash: Hash, values: BytesVec}.
// Member values stay serialized; use ParseValue on each.
func ParseStruct(data []byte) (*Struct, error) {
	fields, err := readTable("Struct", data, 2)
	if err != nil {
		return nil, err
	}
	typeHash, err := ParseHash(fields[0])
	if err != nil {
		return nil, &ParseError{Type: "Struct", Message: "invalid type_hash", Cause: err}
	}
	values, err := readBytesVec("Struct", fields[1])
	if err != nil {
		return nil, err
	}
	return &Struct{TypeHash: *typeHash, Values: values}, nil
}

// ParseValue decodes a Value union. The union is closed: a tag outside
// the nine defined variants is a parse error.
func ParseValue(data []byte) (*Value, error) {
	tag, payload, err := readUnion("Value", data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case valueTagStruct:
		s, err := ParseStruct(payload)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: ValueStruct, Struct: s}, nil
	case valueTagArray:
		fields, err := readTable("Array", payload, 1)
		if err != nil {
			return nil, err
		}
		values, err := readBytesVec("Array", fields[0])
		if err != nil {
			return nil, err
		}
		return &Value{Kind: ValueArray, Values: values}, nil
	case valueTagBool:
		if len(payload) != 1 {
			return nil, parseErr("Value", "bool is %d bytes, expected 1", len(payload))
		}
		return &Value{Kind: ValueBool, Raw: payload}, nil
	case valueTagBytes, valueTagString, valueTagAddress, valueTagFixedBytes,
		valueTagInt, valueTagUint:
		kind := scalarKind(tag)
		raw, err := readBytes(kind.String(), payload)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: kind, Raw: raw}, nil
	default:
		return nil, parseErr("Value", "unknown variant tag %d", tag)
	}
}

func scalarKind(tag uint32) ValueKind {
	switch tag {
	case valueTagBytes:
		return ValueBytes
	case valueTagString:
		return ValueString
	case valueTagAddress:
		return ValueAddress
	case valueTagFixedBytes:
		return ValueFixedBytes
	case valueTagInt:
		return ValueInt
	default:
		return ValueUint
	}
}

// ParseTypedMessage decodes a TypedMessage union. Tags this version does
// not define parse into an explicit MessageUnknown view so callers can
// reject them cleanly instead of mis-hashing.
func ParseTypedMessage(data []byte) (*TypedMessage, error) {
	tag, payload, err := readUnion("TypedMessage", data)
	if err != nil {
		return nil, err
	}
	if tag != messageTagEIP712 {
		return &TypedMessage{Kind: MessageUnknown, Tag: tag, Raw: payload}, nil
	}
	fields, err := readTable("EIP712", payload, 2)
	if err != nil {
		return nil, err
	}
	domain, err := ParseHash(fields[0])
	if err != nil {
		return nil, &ParseError{Type: "EIP712", Message: "invalid domain_separator", Cause: err}
	}
	message, err := ParseStruct(fields[1])
	if err != nil {
		return nil, &ParseError{Type: "EIP712", Message: "invalid message", Cause: err}
	}
	return &TypedMessage{
		Kind:            MessageEIP712,
		DomainSeparator: *domain,
		Message:         *message,
	}, nil
}

// ParseExtendedWitness decodes an ExtendedWitness union. Tags reserved
// for future schemes parse into a WitnessUnknown view; only a malformed
// encoding fails.
func ParseExtendedWitness(data []byte) (*ExtendedWitness, error) {
	tag, payload, err := readUnion("ExtendedWitness", data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case witnessTagSighash:
		fields, err := readTable("Sighash", payload, 1)
		if err != nil {
			return nil, err
		}
		sig, err := readBytes("Sighash", fields[0])
		if err != nil {
			return nil, err
		}
		return &ExtendedWitness{Kind: WitnessSighash, Signature: sig}, nil
	case witnessTagSighashWithAction:
		fields, err := readTable("SighashWithAction", payload, 2)
		if err != nil {
			return nil, err
		}
		sig, err := readBytes("SighashWithAction", fields[0])
		if err != nil {
			return nil, err
		}
		msg, err := readBytes("SighashWithAction", fields[1])
		if err != nil {
			return nil, err
		}
		return &ExtendedWitness{
			Kind:      WitnessSighashWithAction,
			Signature: sig,
			Message:   msg,
		}, nil
	default:
		return &ExtendedWitness{Kind: WitnessUnknown, Tag: tag, Raw: payload}, nil
	}
}
