package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/cellscript/typedtx/pkg/schema"
	"github.com/cellscript/typedtx/pkg/vm"
)

// keccak computes the reference Keccak-256 of concatenated chunks,
// independently of the engine's incremental hashing.
func keccak(chunks ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// word right-aligns b into a 32-byte word padded with fill.
func word(fill byte, b ...byte) []byte {
	out := make([]byte, 32)
	for i := 0; i < 32-len(b); i++ {
		out[i] = fill
	}
	copy(out[32-len(b):], b)
	return out
}

func fillDigest(fill byte) [32]byte {
	var d [32]byte
	for i := range d {
		d[i] = fill
	}
	return d
}

// message assembles a parsed EIP712 message with an inline domain and
// inline type hash over the given serialized values.
func message(t *testing.T, domain, typeHash [32]byte, values ...[]byte) *schema.TypedMessage {
	t.Helper()
	encoded := schema.EIP712Message(
		schema.InlineHash(domain),
		schema.StructBytes(schema.InlineHash(typeHash), values...),
	)
	parsed, err := schema.ParseTypedMessage(encoded)
	require.NoError(t, err)
	return parsed
}

func emptyTx() *vm.MockTransaction {
	return &vm.MockTransaction{}
}

var (
	testDomain   = fillDigest(0xD0)
	testTypeHash = fillDigest(0x71)
)

// expectedDigest is the prefix law: Keccak256(0x19 || 0x01 || domain ||
// Keccak256(typeHash || encodings...)).
func expectedDigest(domain, typeHash [32]byte, encodings ...[]byte) [32]byte {
	structInput := [][]byte{typeHash[:]}
	structInput = append(structInput, encodings...)
	structHash := keccak(structInput...)
	return keccak([]byte{0x19, 0x01}, domain[:], structHash[:])
}

func TestTypedMessageDigestPrefixLaw(t *testing.T) {
	engine := New(emptyTx())

	msg := message(t, testDomain, testTypeHash, schema.UintValue([]byte{0x2A}))
	got, err := engine.TypedMessageDigest(msg)
	require.NoError(t, err)
	assert.Equal(t, expectedDigest(testDomain, testTypeHash, word(0x00, 0x2A)), got)

	t.Run("deterministic", func(t *testing.T) {
		again, err := engine.TypedMessageDigest(msg)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	})

	t.Run("domain_change_changes_digest", func(t *testing.T) {
		other := testDomain
		other[0] ^= 1
		changed, err := engine.TypedMessageDigest(message(t, other, testTypeHash, schema.UintValue([]byte{0x2A})))
		require.NoError(t, err)
		assert.NotEqual(t, got, changed)
	})

	t.Run("leaf_change_changes_digest", func(t *testing.T) {
		changed, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash, schema.UintValue([]byte{0x2B})))
		require.NoError(t, err)
		assert.NotEqual(t, got, changed)
	})
}

func TestNumberEncoding(t *testing.T) {
	engine := New(emptyTx())

	t.Run("uint_width_invariant", func(t *testing.T) {
		// 0x01 and 0x0001 are the same number; their 32-byte encodings
		// must be identical.
		narrow, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.UintValue([]byte{0x01})))
		require.NoError(t, err)
		wide, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.UintValue([]byte{0x00, 0x01})))
		require.NoError(t, err)
		assert.Equal(t, narrow, wide)
	})

	t.Run("int_minus_one_sign_extends", func(t *testing.T) {
		got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.IntValue([]byte{0xFF})))
		require.NoError(t, err)
		assert.Equal(t, expectedDigest(testDomain, testTypeHash, word(0xFF, 0xFF)), got)
	})

	t.Run("int_positive_zero_extends", func(t *testing.T) {
		got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.IntValue([]byte{0x7F})))
		require.NoError(t, err)
		assert.Equal(t, expectedDigest(testDomain, testTypeHash, word(0x00, 0x7F)), got)
	})

	t.Run("number_too_large", func(t *testing.T) {
		_, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.UintValue(make([]byte, 33))))
		assert.ErrorIs(t, err, ErrNumberTooLarge)
	})

	t.Run("address_is_uint160", func(t *testing.T) {
		addr := make([]byte, 20)
		addr[19] = 0x05
		got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.AddressValue(addr)))
		require.NoError(t, err)
		assert.Equal(t, expectedDigest(testDomain, testTypeHash, word(0x00, 0x05)), got)
	})
}

func TestBoolEncoding(t *testing.T) {
	engine := New(emptyTx())

	got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash, schema.BoolValue(1)))
	require.NoError(t, err)
	assert.Equal(t, expectedDigest(testDomain, testTypeHash, word(0x00, 0x01)), got)

	_, err = engine.TypedMessageDigest(message(t, testDomain, testTypeHash, schema.BoolValue(2)))
	assert.ErrorIs(t, err, ErrInvalidBool)
}

func TestFixedBytesEncoding(t *testing.T) {
	engine := New(emptyTx())

	t.Run("left_aligned_zero_padded", func(t *testing.T) {
		got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.FixedBytesValue([]byte{0xAA, 0xBB})))
		require.NoError(t, err)
		encoding := make([]byte, 32)
		encoding[0], encoding[1] = 0xAA, 0xBB
		assert.Equal(t, expectedDigest(testDomain, testTypeHash, encoding), got)
	})

	t.Run("exactly_32_pads_nothing", func(t *testing.T) {
		full := fillDigest(0x5A)
		got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.FixedBytesValue(full[:])))
		require.NoError(t, err)
		assert.Equal(t, expectedDigest(testDomain, testTypeHash, full[:]), got)
	})

	t.Run("length_33_rejected", func(t *testing.T) {
		_, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
			schema.FixedBytesValue(make([]byte, 33))))
		assert.ErrorIs(t, err, ErrFixedBytesTooLarge)
	})
}

func TestBytesAndStringPreHashed(t *testing.T) {
	engine := New(emptyTx())

	raw := []byte("dynamic payload")
	sum := keccak(raw)

	got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
		schema.BytesValue(raw)))
	require.NoError(t, err)
	assert.Equal(t, expectedDigest(testDomain, testTypeHash, sum[:]), got)

	gotString, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
		schema.StringValue(string(raw))))
	require.NoError(t, err)
	assert.Equal(t, got, gotString, "Bytes and String share the encoding")
}

func TestArrayFlattensIntoParent(t *testing.T) {
	engine := New(emptyTx())

	got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
		schema.ArrayValue(schema.UintValue([]byte{1}), schema.UintValue([]byte{2}))))
	require.NoError(t, err)

	// Elements contribute their encodings directly to the parent
	// struct's hash input; there is no per-array sub-hash.
	assert.Equal(t, expectedDigest(testDomain, testTypeHash,
		word(0x00, 0x01), word(0x00, 0x02)), got)
}

func TestNestedStruct(t *testing.T) {
	engine := New(emptyTx())

	innerType := fillDigest(0x99)
	inner := schema.StructBytes(schema.InlineHash(innerType), schema.UintValue([]byte{7}))

	got, err := engine.TypedMessageDigest(message(t, testDomain, testTypeHash,
		schema.StructValue(inner)))
	require.NoError(t, err)

	innerHash := keccak(innerType[:], word(0x00, 0x07))
	assert.Equal(t, expectedDigest(testDomain, testTypeHash, innerHash[:]), got)
}

func TestResolveDeferredHashes(t *testing.T) {
	cellData := make([]byte, 40)
	for i := range cellData {
		cellData[i] = byte(i)
	}
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(0x80 + i)
	}
	tx := &vm.MockTransaction{
		Raw: raw,
		CellData: map[vm.Source][][]byte{
			vm.SourceCellDep: {cellData},
		},
	}
	engine := New(tx)

	structFor := func(t *testing.T, domain []byte) *schema.TypedMessage {
		t.Helper()
		parsed, err := schema.ParseTypedMessage(schema.EIP712Message(
			domain,
			schema.StructBytes(schema.InlineHash(testTypeHash)),
		))
		require.NoError(t, err)
		return parsed
	}

	t.Run("cell_ref_window", func(t *testing.T) {
		got, err := engine.TypedMessageDigest(structFor(t,
			schema.CellRefHash(uint64(vm.SourceCellDep), 0, 0)))
		require.NoError(t, err)
		var window [32]byte
		copy(window[:], cellData[:32])
		assert.Equal(t, expectedDigest(window, testTypeHash), got)
	})

	t.Run("cell_ref_short_window_is_eof", func(t *testing.T) {
		// Offset 20 leaves only 20 bytes of a 40-byte cell.
		_, err := engine.TypedMessageDigest(structFor(t,
			schema.CellRefHash(uint64(vm.SourceCellDep), 0, 20)))
		assert.ErrorIs(t, err, ErrCellDataEof)
	})

	t.Run("cell_ref_bad_index", func(t *testing.T) {
		_, err := engine.TypedMessageDigest(structFor(t,
			schema.CellRefHash(uint64(vm.SourceCellDep), 3, 0)))
		assert.ErrorIs(t, err, vm.ErrIndexOutOfBound)
	})

	t.Run("invalid_source_code", func(t *testing.T) {
		_, err := engine.TypedMessageDigest(structFor(t, schema.CellRefHash(77, 0, 0)))
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("transaction_ref_window", func(t *testing.T) {
		got, err := engine.TypedMessageDigest(structFor(t, schema.TransactionRefHash(16)))
		require.NoError(t, err)
		var window [32]byte
		copy(window[:], raw[16:48])
		assert.Equal(t, expectedDigest(window, testTypeHash), got)
	})

	t.Run("transaction_ref_short_window_is_eof", func(t *testing.T) {
		_, err := engine.TypedMessageDigest(structFor(t, schema.TransactionRefHash(48)))
		assert.ErrorIs(t, err, ErrCellDataEof)
	})
}

func TestUnknownMessageVariantRejected(t *testing.T) {
	engine := New(emptyTx())

	parsed, err := schema.ParseTypedMessage(schema.UnknownWitness(3, []byte{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, schema.MessageUnknown, parsed.Kind)

	_, err = engine.TypedMessageDigest(parsed)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestMalformedMemberRejected(t *testing.T) {
	engine := New(emptyTx())

	encoded := schema.EIP712Message(
		schema.InlineHash(testDomain),
		schema.StructBytes(schema.InlineHash(testTypeHash), []byte{0xDE, 0xAD}),
	)
	parsed, err := schema.ParseTypedMessage(encoded)
	require.NoError(t, err)

	_, err = engine.TypedMessageDigest(parsed)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}
