package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"

	"github.com/bitfsorg/misfit-go/rng"
)

// KeyMaterial is an ephemeral secp256k1 key pair. It is created for a single
// locking script or signature and never persisted.
type KeyMaterial struct {
	priv *btcec.PrivateKey
}

// NewKeyMaterial derives a fresh key pair from src.
func NewKeyMaterial(src rng.Source) (*KeyMaterial, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: randomness source", ErrNilParam)
	}
	return KeyFromBytes(rng.Bytes(src, btcec.PrivKeyBytesLen))
}

// KeyFromBytes wraps a 32-byte secret. A secret that reduces to zero is
// rejected.
func KeyFromBytes(secret []byte) (*KeyMaterial, error) {
	if len(secret) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: secret must be %d bytes, got %d", ErrKeyGeneration, btcec.PrivKeyBytesLen, len(secret))
	}
	priv, _ := btcec.PrivKeyFromBytes(secret)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrKeyGeneration)
	}
	return &KeyMaterial{priv: priv}, nil
}

// PrivKey returns the private key.
func (k *KeyMaterial) PrivKey() *btcec.PrivateKey {
	return k.priv
}

// PubKey returns the public key.
func (k *KeyMaterial) PubKey() *btcec.PublicKey {
	return k.priv.PubKey()
}

// CompressedPubKey returns the 33-byte SEC1 compressed public key.
func (k *KeyMaterial) CompressedPubKey() []byte {
	return k.PubKey().SerializeCompressed()
}

// TaprootOutputKey returns the BIP86 output key (internal key tweaked with
// no script root).
func (k *KeyMaterial) TaprootOutputKey() *btcec.PublicKey {
	return txscript.ComputeTaprootKeyNoScript(k.PubKey())
}

// TweakedPrivKey returns the private key tweaked for a key-path spend with
// no script root.
func (k *KeyMaterial) TweakedPrivKey() *btcec.PrivateKey {
	return txscript.TweakTaprootPrivKey(*k.priv, nil)
}

// XOnlyPubKey returns the 32-byte x-only serialization of the untweaked
// public key.
func (k *KeyMaterial) XOnlyPubKey() []byte {
	return schnorr.SerializePubKey(k.PubKey())
}

// XOnlyOutputKey returns the 32-byte x-only serialization of the taproot
// output key.
func (k *KeyMaterial) XOnlyOutputKey() []byte {
	return schnorr.SerializePubKey(k.TaprootOutputKey())
}
