package tx

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spendingTx returns an unsigned one-input, one-output transaction.
func spendingTx() *wire.MsgTx {
	msgTx := wire.NewMsgTx(2)
	prev := chainhash.DoubleHashH([]byte("prev"))
	msgTx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prev, 0), nil, nil))
	msgTx.AddTxOut(wire.NewTxOut(9000, []byte{0x51}))
	return msgTx
}

func prevOutputFor(t *testing.T, kind ScriptKind, km *KeyMaterial, amount uint64) PrevOutput {
	t.Helper()
	ls, err := kind.LockingScript(km)
	require.NoError(t, err)
	return PrevOutput{Amount: amount, Script: ls}
}

// --- Signed kinds ---

func TestSignInput_VerifiesUnderScriptEngine(t *testing.T) {
	for _, kind := range []ScriptKind{P2WPKH, P2TR, P2TRTweaked} {
		t.Run(kind.String(), func(t *testing.T) {
			km := generateTestKey(t, 10)
			prev := prevOutputFor(t, kind, km, 100000)
			msgTx := spendingTx()

			proof, err := SignInput(msgTx, 0, prev, km)
			require.NoError(t, err)
			assert.Equal(t, ProofSigned, proof.Status)
			assert.Empty(t, msgTx.TxIn[0].SignatureScript)
			assert.NoError(t, verifyInput(t, msgTx, 0, prev))
		})
	}
}

func TestSignInput_TaprootParity(t *testing.T) {
	// Keys with odd-y points must still spend both taproot routes.
	for _, kind := range []ScriptKind{P2TR, P2TRTweaked} {
		for b := byte(20); b < 28; b++ {
			km := generateTestKey(t, b)
			prev := prevOutputFor(t, kind, km, 7000)
			msgTx := spendingTx()

			_, err := SignInput(msgTx, 0, prev, km)
			require.NoError(t, err)
			assert.NoError(t, verifyInput(t, msgTx, 0, prev), "%s seed %d", kind, b)
		}
	}
}

func TestSignInput_FullRangeAmount(t *testing.T) {
	// Amounts above MaxInt64 keep their bit pattern through signing.
	km := generateTestKey(t, 11)
	prev := prevOutputFor(t, P2WPKH, km, ^uint64(0)-5)
	msgTx := spendingTx()

	_, err := SignInput(msgTx, 0, prev, km)
	require.NoError(t, err)
	assert.NoError(t, verifyInput(t, msgTx, 0, prev))
}

func TestSignInput_WrongKeyFails(t *testing.T) {
	prev := prevOutputFor(t, P2WPKH, generateTestKey(t, 12), 5000)
	msgTx := spendingTx()

	_, err := SignInput(msgTx, 0, prev, generateTestKey(t, 13))
	require.NoError(t, err)
	assert.Error(t, verifyInput(t, msgTx, 0, prev))
}

func TestSignInput_TamperedOutputFails(t *testing.T) {
	km := generateTestKey(t, 14)
	prev := prevOutputFor(t, P2TR, km, 5000)
	msgTx := spendingTx()

	_, err := SignInput(msgTx, 0, prev, km)
	require.NoError(t, err)
	msgTx.TxOut[0].Value++
	assert.Error(t, verifyInput(t, msgTx, 0, prev))
}

func TestSign_WitnessShapes(t *testing.T) {
	km := generateTestKey(t, 15)

	t.Run("p2wpkh", func(t *testing.T) {
		proof, err := Sign(&SignRequest{Tx: spendingTx(), PrevOutput: prevOutputFor(t, P2WPKH, km, 1), Key: km})
		require.NoError(t, err)
		require.Len(t, proof.Witness, 2)
		assert.Equal(t, byte(0x01), proof.Witness[0][len(proof.Witness[0])-1], "SIGHASH_ALL suffix")
		assert.Equal(t, km.CompressedPubKey(), []byte(proof.Witness[1]))
	})

	t.Run("p2wsh", func(t *testing.T) {
		prev := prevOutputFor(t, P2WSH, km, 1)
		proof, err := Sign(&SignRequest{Tx: spendingTx(), PrevOutput: prev, Key: km})
		require.NoError(t, err)
		assert.Equal(t, ProofSigned, proof.Status)
		require.Len(t, proof.Witness, 2)
		assert.Equal(t, prev.Script.Script, []byte(proof.Witness[1]))
	})

	t.Run("p2tr", func(t *testing.T) {
		proof, err := Sign(&SignRequest{Tx: spendingTx(), PrevOutput: prevOutputFor(t, P2TR, km, 1), Key: km})
		require.NoError(t, err)
		require.Len(t, proof.Witness, 1)
		assert.Len(t, proof.Witness[0], 64, "SIGHASH_DEFAULT omits the type byte")
	})
}

func TestSign_Deterministic(t *testing.T) {
	km := generateTestKey(t, 16)
	for _, kind := range []ScriptKind{P2WPKH, P2TR} {
		prev := prevOutputFor(t, kind, km, 777)
		a, err := Sign(&SignRequest{Tx: spendingTx(), PrevOutput: prev, Key: km})
		require.NoError(t, err)
		b, err := Sign(&SignRequest{Tx: spendingTx(), PrevOutput: prev, Key: km})
		require.NoError(t, err)
		assert.Equal(t, a.Witness, b.Witness, kind.String())
	}
}

// --- Unsigned legacy kinds ---

func TestSign_LegacyKindsUnsigned(t *testing.T) {
	km := generateTestKey(t, 17)
	for _, kind := range []ScriptKind{P2PK, P2PKH, P2SH} {
		t.Run(kind.String(), func(t *testing.T) {
			msgTx := spendingTx()
			proof, err := SignInput(msgTx, 0, prevOutputFor(t, kind, km, 1), km)
			require.NoError(t, err)
			assert.Equal(t, ProofUnsigned, proof.Status)
			assert.Equal(t, "unsigned", proof.Status.String())
			assert.Empty(t, proof.Witness)
			assert.Empty(t, msgTx.TxIn[0].Witness)
		})
	}
}

// --- Request validation ---

func TestSign_InvalidRequests(t *testing.T) {
	km := generateTestKey(t, 18)
	prev := prevOutputFor(t, P2WPKH, km, 1)

	tests := []struct {
		name string
		req  *SignRequest
		want error
	}{
		{"nil request", nil, ErrNilParam},
		{"nil tx", &SignRequest{PrevOutput: prev, Key: km}, ErrNilParam},
		{"nil key", &SignRequest{Tx: spendingTx(), PrevOutput: prev}, ErrNilParam},
		{"index too high", &SignRequest{Tx: spendingTx(), InputIndex: 1, PrevOutput: prev, Key: km}, ErrInvalidParams},
		{"negative index", &SignRequest{Tx: spendingTx(), InputIndex: -1, PrevOutput: prev, Key: km}, ErrInvalidParams},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Sign(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPrevOutput_TxOut(t *testing.T) {
	prev := PrevOutput{Amount: 42, Script: LockingScript{Kind: P2WSH, Script: []byte{0x00}}}
	out := prev.TxOut()
	assert.Equal(t, int64(42), out.Value)
	assert.Equal(t, []byte{0x00}, out.PkScript)
}
