package tx

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/bitfsorg/misfit-go/rng"
)

const (
	scriptHashSize        = 20
	witnessScriptHashSize = 32
)

// addrParams only selects address encodings; the resulting scripts are
// network independent.
var addrParams = &chaincfg.MainNetParams

// LockingScript is a script together with the kind that produced it.
type LockingScript struct {
	Kind   ScriptKind
	Script []byte
}

// Equal reports whether both kind and bytes match.
func (l LockingScript) Equal(o LockingScript) bool {
	return l.Kind == o.Kind && bytes.Equal(l.Script, o.Script)
}

// sdkPubKey converts the btcec key into a go-sdk key for the legacy
// templates.
func sdkPubKey(km *KeyMaterial) (*ec.PublicKey, error) {
	pub, err := ec.PublicKeyFromBytes(km.CompressedPubKey())
	if err != nil {
		return nil, fmt.Errorf("%w: convert public key: %w", ErrScriptBuild, err)
	}
	return pub, nil
}

// lockP2PK builds <pubkey> OP_CHECKSIG.
func lockP2PK(km *KeyMaterial) ([]byte, error) {
	pub, err := sdkPubKey(km)
	if err != nil {
		return nil, err
	}
	s := &script.Script{}
	if err := s.AppendPushData(pub.Compressed()); err != nil {
		return nil, fmt.Errorf("%w: P2PK push: %w", ErrScriptBuild, err)
	}
	*s = append(*s, script.OpCHECKSIG)
	return []byte(*s), nil
}

// lockP2PKH builds the standard pay-to-pubkey-hash template.
func lockP2PKH(km *KeyMaterial) ([]byte, error) {
	pub, err := sdkPubKey(km)
	if err != nil {
		return nil, err
	}
	addr, err := script.NewAddressFromPublicKey(pub, true)
	if err != nil {
		return nil, fmt.Errorf("%w: address from pubkey: %w", ErrScriptBuild, err)
	}
	lockScript, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock script: %w", ErrScriptBuild, err)
	}
	return []byte(*lockScript), nil
}

// lockP2SH commits to a zeroed script hash. No redeem script is tracked.
func lockP2SH(_ *KeyMaterial) ([]byte, error) {
	addr, err := btcutil.NewAddressScriptHashFromHash(make([]byte, scriptHashSize), addrParams)
	if err != nil {
		return nil, fmt.Errorf("%w: P2SH address: %w", ErrScriptBuild, err)
	}
	return payToAddr(addr)
}

// lockP2WPKH builds OP_0 <hash160(pubkey)>.
func lockP2WPKH(km *KeyMaterial) ([]byte, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(km.CompressedPubKey()), addrParams)
	if err != nil {
		return nil, fmt.Errorf("%w: P2WPKH address: %w", ErrScriptBuild, err)
	}
	return payToAddr(addr)
}

// lockP2WSH commits to a zeroed witness script hash. No witness script is
// tracked.
func lockP2WSH(_ *KeyMaterial) ([]byte, error) {
	addr, err := btcutil.NewAddressWitnessScriptHash(make([]byte, witnessScriptHashSize), addrParams)
	if err != nil {
		return nil, fmt.Errorf("%w: P2WSH address: %w", ErrScriptBuild, err)
	}
	return payToAddr(addr)
}

// lockP2TR commits to the BIP86 output key of km (key path only).
func lockP2TR(km *KeyMaterial) ([]byte, error) {
	addr, err := btcutil.NewAddressTaproot(km.XOnlyOutputKey(), addrParams)
	if err != nil {
		return nil, fmt.Errorf("%w: P2TR address: %w", ErrScriptBuild, err)
	}
	return payToAddr(addr)
}

// lockP2TRTweaked commits to km's x-only key as if it were already tweaked.
// No BIP86 tweak is applied, so the key path is spent with the raw key.
func lockP2TRTweaked(km *KeyMaterial) ([]byte, error) {
	addr, err := btcutil.NewAddressTaproot(km.XOnlyPubKey(), addrParams)
	if err != nil {
		return nil, fmt.Errorf("%w: P2TR tweaked address: %w", ErrScriptBuild, err)
	}
	return payToAddr(addr)
}

func payToAddr(addr btcutil.Address) ([]byte, error) {
	s, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: pay to address: %w", ErrScriptBuild, err)
	}
	return s, nil
}

// Synthesizer builds locking scripts for chosen or random kinds.
type Synthesizer struct {
	src rng.Source
}

// NewSynthesizer returns a Synthesizer drawing kinds and keys from src.
func NewSynthesizer(src rng.Source) *Synthesizer {
	return &Synthesizer{src: src}
}

// Synthesize returns a locking script and the key it was derived from.
// A nil kind is drawn uniformly from AllKinds; a nil key is generated fresh.
func (s *Synthesizer) Synthesize(kind *ScriptKind, km *KeyMaterial) (LockingScript, *KeyMaterial, error) {
	var k ScriptKind
	if kind != nil {
		k = *kind
	} else {
		k = RandomKind(s.src)
	}
	if km == nil {
		var err error
		km, err = NewKeyMaterial(s.src)
		if err != nil {
			return LockingScript{}, nil, err
		}
	}
	ls, err := k.LockingScript(km)
	if err != nil {
		return LockingScript{}, nil, err
	}
	return ls, km, nil
}
