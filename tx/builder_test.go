package tx

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/misfit-go/codec"
)

// --- Build tests ---

func TestBuild_RoundTripsThroughCodec(t *testing.T) {
	b := NewBuilder(seeded(1))
	for i := 0; i < 20; i++ {
		g, err := b.Build(TxParams{})
		require.NoError(t, err)
		require.Len(t, g.Tx.TxIn, 1)
		require.Len(t, g.Tx.TxOut, 1)

		encoded, err := codec.EncodeTx(g.Tx)
		require.NoError(t, err)
		decoded, err := codec.DecodeTx(encoded)
		require.NoError(t, err)

		reencoded, err := codec.EncodeTx(decoded)
		require.NoError(t, err)
		assert.Equal(t, encoded, reencoded)
		assert.Equal(t, g.TxID(), decoded.TxHash())
	}
}

func TestBuild_SynthesizesFunding(t *testing.T) {
	g, err := NewBuilder(seeded(2)).Build(TxParams{})
	require.NoError(t, err)
	require.NotNil(t, g.Funding)

	// The spend references the funding transaction.
	assert.Equal(t, g.Funding.TxHash(), g.Tx.TxIn[0].PreviousOutPoint.Hash)

	// The funding transaction itself spends a placeholder.
	assert.Equal(t, chainhash.Hash{}, g.Funding.TxIn[0].PreviousOutPoint.Hash)

	// The spent output is the funding transaction's output.
	assert.Equal(t, g.Funding.TxOut[0].PkScript, g.Spent.Script.Script)
	assert.Equal(t, uint64(g.Funding.TxOut[0].Value), g.Spent.Amount)
}

func TestBuild_StrictOutpoints(t *testing.T) {
	b := NewBuilder(seeded(3), WithStrictOutpoints())
	for i := 0; i < 10; i++ {
		g, err := b.Build(TxParams{})
		require.NoError(t, err)
		assert.Equal(t, uint32(0), g.Tx.TxIn[0].PreviousOutPoint.Index)
	}
}

func TestBuild_SuppliedOutpointSkipsFunding(t *testing.T) {
	op := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("coin")), Index: 3}
	g, err := NewBuilder(seeded(4)).Build(TxParams{Input: &InputParams{Outpoint: &op}})
	require.NoError(t, err)
	assert.Nil(t, g.Funding)
	assert.Equal(t, op, g.Tx.TxIn[0].PreviousOutPoint)
}

func TestBuild_Deterministic(t *testing.T) {
	build := func() string {
		g, err := NewBuilder(seeded(5)).Build(TxParams{})
		require.NoError(t, err)
		s, err := codec.EncodeTx(g.Tx)
		require.NoError(t, err)
		return s
	}
	assert.Equal(t, build(), build())
}

func TestBuild_DifferentSeedsDiffer(t *testing.T) {
	a, err := NewBuilder(seeded(6)).Build(TxParams{})
	require.NoError(t, err)
	b, err := NewBuilder(seeded(7)).Build(TxParams{})
	require.NoError(t, err)
	assert.NotEqual(t, a.TxID(), b.TxID())
}

func TestBuild_SignedSpendsVerify(t *testing.T) {
	b := NewBuilder(seeded(8))
	verified := 0
	for i := 0; i < 40; i++ {
		g, err := b.Build(TxParams{})
		require.NoError(t, err)
		if !g.Spent.Script.Kind.Signed() || g.Spent.Script.Kind == P2WSH {
			assert.Equal(t, g.Spent.Script.Kind.Signed(), g.Proof.Status == ProofSigned)
			continue
		}
		assert.NoError(t, verifyInput(t, g.Tx, 0, g.Spent), "kind %s", g.Spent.Script.Kind)
		verified++
	}
	assert.Positive(t, verified)
}

func TestBuild_Overrides(t *testing.T) {
	km := generateTestKey(t, 9)
	op := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("override")), Index: 1}
	prev := PrevOutput{Amount: 50000}
	var err error
	prev.Script, err = P2WPKH.LockingScript(km)
	require.NoError(t, err)

	g, err := NewBuilder(seeded(9)).Build(TxParams{
		Version:  ptr(int32(2)),
		LockTime: ptr(uint32(650000)),
		Input: &InputParams{
			Outpoint:   &op,
			Sequence:   ptr(uint32(0xfffffffd)),
			PrevOutput: &prev,
			Key:        km,
		},
		Output: &OutputParams{
			Amount: ptr(uint64(1234)),
			Kind:   ptr(P2TR),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(2), g.Tx.Version)
	assert.Equal(t, uint32(650000), g.Tx.LockTime)
	assert.Equal(t, uint32(0xfffffffd), g.Tx.TxIn[0].Sequence)
	assert.Equal(t, int64(1234), g.Tx.TxOut[0].Value)
	assert.Equal(t, P2TR, g.Output.Kind)
	assert.Equal(t, ProofSigned, g.Proof.Status)
	assert.NoError(t, verifyInput(t, g.Tx, 0, prev))
}

func TestBuild_OutputKeyOverride(t *testing.T) {
	km := generateTestKey(t, 10)
	want, err := P2PKH.LockingScript(km)
	require.NoError(t, err)

	g, err := NewBuilder(seeded(10)).Build(TxParams{
		Output: &OutputParams{Kind: ptr(P2PKH), Key: km},
	})
	require.NoError(t, err)
	assert.True(t, want.Equal(g.Output))
	assert.Equal(t, want.Script, g.Tx.TxOut[0].PkScript)
}

func TestBuild_UnknownOutputKind(t *testing.T) {
	_, err := NewBuilder(seeded(11)).Build(TxParams{Output: &OutputParams{Kind: ptr(ScriptKind(99))}})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuild_NilSource(t *testing.T) {
	_, err := NewBuilder(nil).Build(TxParams{})
	assert.ErrorIs(t, err, ErrNilParam)
}

// --- BuildN tests ---

func TestBuildN(t *testing.T) {
	gs, err := NewBuilder(seeded(12)).BuildN(5)
	require.NoError(t, err)
	require.Len(t, gs, 5)

	seen := make(map[chainhash.Hash]bool)
	for _, g := range gs {
		seen[g.TxID()] = true
	}
	assert.Len(t, seen, 5)

	empty, err := NewBuilder(seeded(12)).BuildN(0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = NewBuilder(seeded(12)).BuildN(-1)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
