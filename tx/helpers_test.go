package tx

import (
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/misfit-go/rng"
)

// seeded returns a deterministic source for the given seed byte.
func seeded(b byte) rng.Source {
	var seed [rng.SeedSize]byte
	seed[0] = b
	return rng.NewSeeded(seed)
}

// generateTestKey returns fresh key material from a seeded source.
func generateTestKey(t *testing.T, b byte) *KeyMaterial {
	t.Helper()
	km, err := NewKeyMaterial(seeded(b))
	require.NoError(t, err)
	return km
}

// verifyInput runs the script engine for input idx against prev.
func verifyInput(t *testing.T, msgTx *wire.MsgTx, idx int, prev PrevOutput) error {
	t.Helper()
	amount := int64(prev.Amount)
	fetcher := txscript.NewCannedPrevOutputFetcher(prev.Script.Script, amount)
	vm, err := txscript.NewEngine(prev.Script.Script, msgTx, idx,
		txscript.StandardVerifyFlags, nil, txscript.NewTxSigHashes(msgTx, fetcher), amount, fetcher)
	if err != nil {
		return err
	}
	return vm.Execute()
}

func ptr[T any](v T) *T {
	return &v
}
