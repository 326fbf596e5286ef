package codec

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	genesisHeaderHex = "0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c"
	genesisHash      = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"

	mainnetHeaderHex = "00e0de23a528751ac3a3e02d8368dce7d902c1cb6561184d735b0700000000000000000023f401455373d8e00c0fef0402b2a9bf45a69ba1a0da0a6175ba571d633fe74c27bdaf6390f50717614aaf14"
)

func sampleTx(withWitness bool) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	prev := chainhash.DoubleHashH([]byte("funding"))
	in := wire.NewTxIn(wire.NewOutPoint(&prev, 3), []byte{0x51}, nil)
	in.Sequence = 0xfffffffd
	if withWitness {
		in.Witness = wire.TxWitness{{0x30, 0x01}, {0x02, 0x03}}
	}
	tx.AddTxIn(in)
	tx.AddTxOut(wire.NewTxOut(50000, []byte{0x00, 0x14, 0x01}))
	tx.LockTime = 800000
	return tx
}

// --- Header tests ---

func TestDecodeHeader_Genesis(t *testing.T) {
	h, err := DecodeHeader(genesisHeaderHex)
	require.NoError(t, err)

	assert.Equal(t, int32(1), h.Version)
	assert.Equal(t, chainhash.Hash{}, h.PrevBlock)
	assert.Equal(t, uint32(0x1d00ffff), h.Bits)
	assert.Equal(t, uint32(2083236893), h.Nonce)
	assert.Equal(t, int64(1231006505), h.Timestamp.Unix())
	assert.Equal(t, genesisHash, h.BlockHash().String())
}

func TestHeaderRoundTrip(t *testing.T) {
	for _, in := range []string{genesisHeaderHex, mainnetHeaderHex} {
		h, err := DecodeHeader(in)
		require.NoError(t, err)
		out, err := EncodeHeader(h)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestDecodeHeader_UppercaseAndWhitespace(t *testing.T) {
	h, err := DecodeHeader("  " + strings.ToUpper(genesisHeaderHex) + "\n")
	require.NoError(t, err)
	assert.Equal(t, genesisHash, h.BlockHash().String())
}

func TestDecodeHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"short", genesisHeaderHex[:158], ErrInvalidLength},
		{"long", genesisHeaderHex + "00", ErrInvalidLength},
		{"empty", "", ErrInvalidLength},
		{"bad hex", "zz" + genesisHeaderHex[2:], ErrInvalidHex},
		{"odd length", genesisHeaderHex[:159], ErrInvalidHex},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeHeader(tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEncodeHeader_Nil(t *testing.T) {
	_, err := EncodeHeader(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

// --- Transaction tests ---

func TestTxRoundTrip(t *testing.T) {
	for _, witness := range []bool{false, true} {
		tx := sampleTx(witness)
		encoded, err := EncodeTx(tx)
		require.NoError(t, err)

		decoded, err := DecodeTx(encoded)
		require.NoError(t, err)
		assert.Equal(t, tx.TxHash(), decoded.TxHash())
		assert.Equal(t, tx.WitnessHash(), decoded.WitnessHash())

		again, err := EncodeTx(decoded)
		require.NoError(t, err)
		assert.Equal(t, encoded, again)
	}
}

func TestDecodeTx_Errors(t *testing.T) {
	encoded, err := EncodeTx(sampleTx(false))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"bad hex", "0g", ErrInvalidHex},
		{"truncated", encoded[:20], ErrMalformed},
		{"trailing bytes", encoded + "00", ErrMalformed},
		{"empty", "", ErrMalformed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTx(tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEncodeTx_Nil(t *testing.T) {
	_, err := EncodeTx(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

// --- Block tests ---

func TestBlockRoundTrip(t *testing.T) {
	h, err := DecodeHeader(genesisHeaderHex)
	require.NoError(t, err)

	blk := wire.NewMsgBlock(h)
	require.NoError(t, blk.AddTransaction(sampleTx(false)))
	require.NoError(t, blk.AddTransaction(sampleTx(true)))

	encoded, err := EncodeBlock(blk)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, genesisHeaderHex))

	decoded, err := DecodeBlock(encoded)
	require.NoError(t, err)
	require.Len(t, decoded.Transactions, 2)
	assert.Equal(t, blk.BlockHash(), decoded.BlockHash())

	again, err := EncodeBlock(decoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)

	_, err = DecodeBlock(encoded + "ff")
	assert.ErrorIs(t, err, ErrMalformed)
}
