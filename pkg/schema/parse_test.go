package schema

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDigest(fill byte) [32]byte {
	var d [32]byte
	for i := range d {
		d[i] = fill
	}
	return d
}

func TestParseHash(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		d := testDigest(0xAB)
		h, err := ParseHash(InlineHash(d))
		require.NoError(t, err)
		assert.Equal(t, HashInline, h.Kind)
		assert.Equal(t, d, h.Inline)
	})

	t.Run("cell_ref", func(t *testing.T) {
		h, err := ParseHash(CellRefHash(2, 7, 100))
		require.NoError(t, err)
		assert.Equal(t, HashCellRef, h.Kind)
		assert.Equal(t, uint64(2), h.Source)
		assert.Equal(t, uint32(7), h.Index)
		assert.Equal(t, uint32(100), h.Offset)
	})

	t.Run("transaction_ref", func(t *testing.T) {
		h, err := ParseHash(TransactionRefHash(64))
		require.NoError(t, err)
		assert.Equal(t, HashTransactionRef, h.Kind)
		assert.Equal(t, uint32(64), h.Offset)
	})

	t.Run("unknown_tag", func(t *testing.T) {
		_, err := ParseHash(buildUnion(9, make([]byte, 32)))
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("wrong_inline_width", func(t *testing.T) {
		_, err := ParseHash(buildUnion(hashTagInline, make([]byte, 31)))
		assert.Error(t, err)
	})

	t.Run("truncated_header", func(t *testing.T) {
		_, err := ParseHash([]byte{0, 0})
		assert.Error(t, err)
	})
}

func TestParseStruct(t *testing.T) {
	typeHash := InlineHash(testDigest(0x11))
	encoded := StructBytes(typeHash, UintValue([]byte{1}), StringValue("hi"))

	s, err := ParseStruct(encoded)
	require.NoError(t, err)
	assert.Equal(t, HashInline, s.TypeHash.Kind)
	require.Len(t, s.Values, 2)

	// Members stay serialized and keep declaration order.
	v0, err := ParseValue(s.Values[0])
	require.NoError(t, err)
	assert.Equal(t, ValueUint, v0.Kind)
	v1, err := ParseValue(s.Values[1])
	require.NoError(t, err)
	assert.Equal(t, ValueString, v1.Kind)
	assert.Equal(t, []byte("hi"), v1.Raw)

	t.Run("empty_values", func(t *testing.T) {
		s, err := ParseStruct(StructBytes(typeHash))
		require.NoError(t, err)
		assert.Empty(t, s.Values)
	})

	t.Run("size_mismatch", func(t *testing.T) {
		bad := append([]byte(nil), encoded...)
		binary.LittleEndian.PutUint32(bad[:4], uint32(len(bad)+1))
		_, err := ParseStruct(bad)
		assert.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ParseStruct(encoded[:6])
		assert.Error(t, err)
	})
}

func TestParseValueVariants(t *testing.T) {
	cases := []struct {
		name    string
		encoded []byte
		kind    ValueKind
		raw     []byte
	}{
		{"bool", BoolValue(1), ValueBool, []byte{1}},
		{"bytes", BytesValue([]byte{1, 2, 3}), ValueBytes, []byte{1, 2, 3}},
		{"string", StringValue("abc"), ValueString, []byte("abc")},
		{"address", AddressValue(make([]byte, 20)), ValueAddress, make([]byte, 20)},
		{"fixed_bytes", FixedBytesValue([]byte{9}), ValueFixedBytes, []byte{9}},
		{"int", IntValue([]byte{0xFF}), ValueInt, []byte{0xFF}},
		{"uint", UintValue([]byte{0x01, 0x02}), ValueUint, []byte{0x01, 0x02}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ParseValue(tc.encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind)
			assert.Equal(t, tc.raw, v.Raw)
		})
	}

	t.Run("struct", func(t *testing.T) {
		inner := StructBytes(InlineHash(testDigest(0x22)), BoolValue(0))
		v, err := ParseValue(StructValue(inner))
		require.NoError(t, err)
		assert.Equal(t, ValueStruct, v.Kind)
		require.NotNil(t, v.Struct)
		assert.Len(t, v.Struct.Values, 1)
	})

	t.Run("array", func(t *testing.T) {
		v, err := ParseValue(ArrayValue(UintValue([]byte{1}), UintValue([]byte{2})))
		require.NoError(t, err)
		assert.Equal(t, ValueArray, v.Kind)
		require.Len(t, v.Values, 2)
		elem, err := ParseValue(v.Values[1])
		require.NoError(t, err)
		assert.Equal(t, []byte{2}, elem.Raw)
	})

	t.Run("empty_scalars", func(t *testing.T) {
		v, err := ParseValue(BytesValue(nil))
		require.NoError(t, err)
		assert.Empty(t, v.Raw)
	})

	t.Run("unknown_tag", func(t *testing.T) {
		_, err := ParseValue(buildUnion(42, nil))
		assert.Error(t, err)
	})

	t.Run("bool_wrong_width", func(t *testing.T) {
		_, err := ParseValue(buildUnion(valueTagBool, []byte{0, 1}))
		assert.Error(t, err)
	})

	t.Run("bad_count", func(t *testing.T) {
		payload := buildBytes([]byte{1, 2, 3})
		binary.LittleEndian.PutUint32(payload[:4], 5)
		_, err := ParseValue(buildUnion(valueTagBytes, payload))
		assert.Error(t, err)
	})
}

func TestParseTypedMessage(t *testing.T) {
	domain := InlineHash(testDigest(0x33))
	message := StructBytes(InlineHash(testDigest(0x44)), UintValue([]byte{5}))

	t.Run("eip712", func(t *testing.T) {
		m, err := ParseTypedMessage(EIP712Message(domain, message))
		require.NoError(t, err)
		assert.Equal(t, MessageEIP712, m.Kind)
		assert.Equal(t, testDigest(0x33), m.DomainSeparator.Inline)
		assert.Len(t, m.Message.Values, 1)
	})

	t.Run("unknown_variant", func(t *testing.T) {
		m, err := ParseTypedMessage(buildUnion(7, []byte{1, 2, 3}))
		require.NoError(t, err)
		assert.Equal(t, MessageUnknown, m.Kind)
		assert.Equal(t, uint32(7), m.Tag)
		assert.Equal(t, []byte{1, 2, 3}, m.Raw)
	})

	t.Run("malformed_payload", func(t *testing.T) {
		_, err := ParseTypedMessage(buildUnion(messageTagEIP712, []byte{1, 2}))
		assert.Error(t, err)
	})
}

func TestParseExtendedWitness(t *testing.T) {
	t.Run("sighash", func(t *testing.T) {
		w, err := ParseExtendedWitness(SighashWitness([]byte{0xAA, 0xBB}))
		require.NoError(t, err)
		assert.Equal(t, WitnessSighash, w.Kind)
		assert.Equal(t, []byte{0xAA, 0xBB}, w.Signature)
		assert.Nil(t, w.Message)
	})

	t.Run("sighash_with_action", func(t *testing.T) {
		msg := []byte("action payload")
		w, err := ParseExtendedWitness(SighashWithActionWitness([]byte{0xCC}, msg))
		require.NoError(t, err)
		assert.Equal(t, WitnessSighashWithAction, w.Kind)
		assert.Equal(t, []byte{0xCC}, w.Signature)
		assert.Equal(t, msg, w.Message)
	})

	t.Run("future_variant_is_distinguishable", func(t *testing.T) {
		w, err := ParseExtendedWitness(UnknownWitness(5, []byte{1, 2, 3}))
		require.NoError(t, err)
		assert.Equal(t, WitnessUnknown, w.Kind)
		assert.Equal(t, uint32(5), w.Tag)
		assert.Equal(t, []byte{1, 2, 3}, w.Raw)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseExtendedWitness([]byte{1})
		assert.Error(t, err)

		_, err = ParseExtendedWitness(buildUnion(witnessTagSighash, []byte{9, 9}))
		assert.Error(t, err)
	})
}
