package tx

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ScriptKind tests ---

func TestScriptKind_StringAndParse(t *testing.T) {
	names := map[ScriptKind]string{
		P2PK:        "p2pk",
		P2PKH:       "p2pkh",
		P2SH:        "p2sh",
		P2WPKH:      "p2wpkh",
		P2WSH:       "p2wsh",
		P2TR:        "p2tr",
		P2TRTweaked: "p2tr-tweaked",
	}
	require.Len(t, AllKinds, len(names))
	for kind, name := range names {
		assert.Equal(t, name, kind.String())
		parsed, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	parsed, err := ParseKind(" P2TR_TWEAKED ")
	require.NoError(t, err)
	assert.Equal(t, P2TRTweaked, parsed)

	_, err = ParseKind("p2ms")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestScriptKind_Unknown(t *testing.T) {
	k := ScriptKind(42)
	assert.False(t, k.Valid())
	assert.Equal(t, "ScriptKind(42)", k.String())

	_, err := k.LockingScript(generateTestKey(t, 1))
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = k.SpendingProof(&SignRequest{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestScriptKind_Signed(t *testing.T) {
	for _, k := range AllKinds {
		want := k == P2WPKH || k == P2WSH || k == P2TR || k == P2TRTweaked
		assert.Equal(t, want, k.Signed(), k.String())
	}
}

func TestLockingScript_NilKey(t *testing.T) {
	_, err := P2PKH.LockingScript(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

// --- Locking script shape tests ---

func TestLockingScript_Classes(t *testing.T) {
	km := generateTestKey(t, 2)

	tests := []struct {
		kind  ScriptKind
		class txscript.ScriptClass
		size  int
	}{
		{P2PK, txscript.PubKeyTy, 35},
		{P2PKH, txscript.PubKeyHashTy, 25},
		{P2SH, txscript.ScriptHashTy, 23},
		{P2WPKH, txscript.WitnessV0PubKeyHashTy, 22},
		{P2WSH, txscript.WitnessV0ScriptHashTy, 34},
		{P2TR, txscript.WitnessV1TaprootTy, 34},
		{P2TRTweaked, txscript.WitnessV1TaprootTy, 34},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			ls, err := tc.kind.LockingScript(km)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, ls.Kind)
			assert.Len(t, ls.Script, tc.size)
			assert.Equal(t, tc.class, txscript.GetScriptClass(ls.Script))
		})
	}
}

func TestLockingScript_KeyCommitments(t *testing.T) {
	km := generateTestKey(t, 3)

	p2pk, err := P2PK.LockingScript(km)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(p2pk.Script, km.CompressedPubKey()))

	p2pkh, err := P2PKH.LockingScript(km)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(p2pkh.Script, btcutil.Hash160(km.CompressedPubKey())))

	p2wpkh, err := P2WPKH.LockingScript(km)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Hash160(km.CompressedPubKey()), p2wpkh.Script[2:])

	p2tr, err := P2TR.LockingScript(km)
	require.NoError(t, err)
	assert.Equal(t, km.XOnlyOutputKey(), p2tr.Script[2:])

	tweaked, err := P2TRTweaked.LockingScript(km)
	require.NoError(t, err)
	assert.Equal(t, km.XOnlyPubKey(), tweaked.Script[2:])
	assert.NotEqual(t, p2tr.Script, tweaked.Script)
}

func TestLockingScript_TaprootRoutesDiffer(t *testing.T) {
	for b := byte(1); b <= 5; b++ {
		km := generateTestKey(t, b)
		p2tr, err := P2TR.LockingScript(km)
		require.NoError(t, err)
		tweaked, err := P2TRTweaked.LockingScript(km)
		require.NoError(t, err)
		assert.NotEqual(t, p2tr.Script, tweaked.Script, "seed %d", b)
	}

	seen := make(map[string]ScriptKind)
	km := generateTestKey(t, 6)
	for _, k := range AllKinds {
		if k == P2SH || k == P2WSH {
			continue // placeholders ignore the key
		}
		lock, err := k.LockingScript(km)
		require.NoError(t, err)
		prev, dup := seen[string(lock.Script)]
		assert.False(t, dup, "%s collides with %s", k, prev)
		seen[string(lock.Script)] = k
	}
}

func TestLockingScript_Placeholders(t *testing.T) {
	a, err := P2SH.LockingScript(generateTestKey(t, 4))
	require.NoError(t, err)
	b, err := P2SH.LockingScript(generateTestKey(t, 5))
	require.NoError(t, err)
	assert.True(t, a.Equal(b), "P2SH ignores key material")
	assert.Equal(t, make([]byte, 20), a.Script[2:22])

	w, err := P2WSH.LockingScript(generateTestKey(t, 4))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), w.Script[2:])
}

// --- Synthesizer tests ---

func TestSynthesizer_ExplicitKindAndKey(t *testing.T) {
	km := generateTestKey(t, 6)
	s := NewSynthesizer(seeded(6))

	ls, gotKey, err := s.Synthesize(ptr(P2WPKH), km)
	require.NoError(t, err)
	assert.Same(t, km, gotKey)
	assert.Equal(t, P2WPKH, ls.Kind)
}

func TestSynthesizer_RandomCoversAllKinds(t *testing.T) {
	s := NewSynthesizer(seeded(7))
	seen := map[ScriptKind]bool{}
	for i := 0; i < 200; i++ {
		ls, km, err := s.Synthesize(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, km)
		seen[ls.Kind] = true
	}
	assert.Len(t, seen, len(AllKinds))
}

// --- KeyMaterial tests ---

func TestKeyFromBytes(t *testing.T) {
	_, err := KeyFromBytes(make([]byte, 32))
	assert.ErrorIs(t, err, ErrKeyGeneration, "zero scalar")

	_, err = KeyFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrKeyGeneration, "short secret")

	secret := bytes.Repeat([]byte{0x11}, 32)
	km, err := KeyFromBytes(secret)
	require.NoError(t, err)
	assert.Len(t, km.CompressedPubKey(), 33)
	assert.Len(t, km.XOnlyOutputKey(), 32)
}

func TestNewKeyMaterial_NilSource(t *testing.T) {
	_, err := NewKeyMaterial(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}
