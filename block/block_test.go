package block

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/misfit-go/codec"
	"github.com/bitfsorg/misfit-go/merkle"
	"github.com/bitfsorg/misfit-go/rng"
	"github.com/bitfsorg/misfit-go/tx"
)

func seeded(b byte) rng.Source {
	var seed [rng.SeedSize]byte
	seed[0] = b
	return rng.NewSeeded(seed)
}

func newTestAssembler(b byte) *Assembler {
	src := seeded(b)
	return NewAssembler(src, tx.NewBuilder(src))
}

// suppliedTxs builds n transactions from their own source.
func suppliedTxs(t *testing.T, n int) []*wire.MsgTx {
	t.Helper()
	gs, err := tx.NewBuilder(seeded(0xee)).BuildN(n)
	require.NoError(t, err)
	out := make([]*wire.MsgTx, n)
	for i, g := range gs {
		out[i] = g.Tx
	}
	return out
}

// --- Coinbase tests ---

func TestCoinbaseShape(t *testing.T) {
	src := seeded(1)
	cb, err := NewCoinbase(src, tx.NewSynthesizer(src), 840000)
	require.NoError(t, err)

	assert.True(t, IsCoinbase(cb))
	assert.Equal(t, int32(CoinbaseVersion), cb.Version)
	assert.Equal(t, uint32(0), cb.LockTime)
	require.Len(t, cb.TxIn, 1)
	assert.Equal(t, uint32(0xffffffff), cb.TxIn[0].PreviousOutPoint.Index)
	assert.Equal(t, chainhash.Hash{}, cb.TxIn[0].PreviousOutPoint.Hash)
	assert.Equal(t, uint32(0xffffffff), cb.TxIn[0].Sequence)

	require.Len(t, cb.TxOut, 1)
	assert.Equal(t, txscript.WitnessV0PubKeyHashTy, txscript.GetScriptClass(cb.TxOut[0].PkScript))
}

func TestCoinbaseScript_HeightPush(t *testing.T) {
	nonce := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	script, err := CoinbaseScript(840000, nonce)
	require.NoError(t, err)

	// 840000 = 0x0cd140 as a 3-byte little-endian script number.
	assert.Equal(t, []byte{0x03, 0x40, 0xd1, 0x0c}, script[:4])
	assert.Equal(t, byte(len(nonce)), script[4])
	assert.Equal(t, nonce, script[5:])
}

func TestIsCoinbase(t *testing.T) {
	assert.False(t, IsCoinbase(nil))
	assert.False(t, IsCoinbase(wire.NewMsgTx(1)))
	assert.False(t, IsCoinbase(suppliedTxs(t, 1)[0]))
}

// --- Assemble tests ---

func TestAssemble_SuppliedTransactions(t *testing.T) {
	supplied := suppliedTxs(t, 3)
	blk, err := newTestAssembler(2).Assemble(Params{Txs: supplied})
	require.NoError(t, err)

	require.Len(t, blk.Transactions, 4)
	cb := blk.Transactions[0]
	assert.True(t, IsCoinbase(cb))
	for i, s := range supplied {
		assert.NotEqual(t, s.TxHash(), cb.TxHash())
		assert.Equal(t, s.TxHash(), blk.Transactions[i+1].TxHash(), "position %d", i+1)
	}
}

func TestAssemble_SynthesizedTransactionCount(t *testing.T) {
	a := newTestAssembler(3)
	for i := 0; i < 20; i++ {
		blk, err := a.Assemble(Params{})
		require.NoError(t, err)
		n := len(blk.Transactions) - 1
		assert.GreaterOrEqual(t, n, MinTxs)
		assert.LessOrEqual(t, n, MaxTxs)
	}
}

func TestAssemble_MerkleRootCommitsToTransactions(t *testing.T) {
	blk, err := newTestAssembler(4).Assemble(Params{})
	require.NoError(t, err)
	assert.Equal(t, merkle.RootFromTxs(blk.Transactions), blk.Header.MerkleRoot)
}

func TestAssemble_SuppliedHeaderVerbatim(t *testing.T) {
	header := wire.BlockHeader{
		Version:    4,
		PrevBlock:  chainhash.DoubleHashH([]byte("prev")),
		MerkleRoot: chainhash.DoubleHashH([]byte("root")),
		Timestamp:  time.Unix(1700000000, 0),
		Bits:       0x1d00ffff,
		Nonce:      42,
	}
	blk, err := newTestAssembler(5).Assemble(Params{Header: &header, Txs: suppliedTxs(t, 2)})
	require.NoError(t, err)
	assert.Equal(t, header.BlockHash(), blk.Header.BlockHash())
}

func TestAssemble_PrevBlock(t *testing.T) {
	t.Run("supplied", func(t *testing.T) {
		prev := chainhash.DoubleHashH([]byte("parent"))
		blk, err := newTestAssembler(6).Assemble(Params{PrevBlock: &prev})
		require.NoError(t, err)
		assert.Equal(t, prev, blk.Header.PrevBlock)
	})

	t.Run("synthesized", func(t *testing.T) {
		blk, err := newTestAssembler(7).Assemble(Params{})
		require.NoError(t, err)
		assert.NotEqual(t, chainhash.Hash{}, blk.Header.PrevBlock)
	})
}

func TestAssemble_Height(t *testing.T) {
	h := uint32(17)
	blk, err := newTestAssembler(8).Assemble(Params{Height: &h})
	require.NoError(t, err)
	// Heights 1..16 use OP_1..OP_16; 17 is a one-byte push.
	assert.Equal(t, []byte{0x01, 0x11}, blk.Transactions[0].TxIn[0].SignatureScript[:2])
}

func TestAssemble_RoundTripsThroughCodec(t *testing.T) {
	blk, err := newTestAssembler(9).Assemble(Params{})
	require.NoError(t, err)

	encoded, err := codec.EncodeBlock(blk)
	require.NoError(t, err)
	decoded, err := codec.DecodeBlock(encoded)
	require.NoError(t, err)
	assert.Equal(t, blk.BlockHash(), decoded.BlockHash())
	assert.Len(t, decoded.Transactions, len(blk.Transactions))

	hdr, err := codec.EncodeHeader(&blk.Header)
	require.NoError(t, err)
	assert.Len(t, hdr, 160)
}

func TestAssemble_Deterministic(t *testing.T) {
	a, err := newTestAssembler(10).Assemble(Params{})
	require.NoError(t, err)
	b, err := newTestAssembler(10).Assemble(Params{})
	require.NoError(t, err)
	assert.Equal(t, a.BlockHash(), b.BlockHash())
}

func TestAssemble_NilCollaborators(t *testing.T) {
	_, err := NewAssembler(nil, nil).Assemble(Params{})
	assert.ErrorIs(t, err, ErrNilParam)
}
