package tx

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/misfit-go/rng"
)

// ScriptKind is the closed set of locking-script kinds the synthesizer can
// produce. Each kind knows how to derive its locking script and how to
// produce a spending proof for an input that spends it.
type ScriptKind uint8

const (
	P2PK ScriptKind = iota
	P2PKH
	P2SH
	P2WPKH
	P2WSH
	P2TR
	P2TRTweaked

	numKinds
)

// AllKinds lists every ScriptKind in declaration order.
var AllKinds = []ScriptKind{P2PK, P2PKH, P2SH, P2WPKH, P2WSH, P2TR, P2TRTweaked}

// kindImpl is the per-variant behavior behind a ScriptKind.
type kindImpl interface {
	name() string
	lock(km *KeyMaterial) ([]byte, error)
	prove(req *SignRequest) (*SpendingProof, error)
}

var kindImpls = [numKinds]kindImpl{
	P2PK:        legacyKind{label: "p2pk", lockFn: lockP2PK},
	P2PKH:       legacyKind{label: "p2pkh", lockFn: lockP2PKH},
	P2SH:        legacyKind{label: "p2sh", lockFn: lockP2SH},
	P2WPKH:      witnessKeyHashKind{},
	P2WSH:       witnessScriptHashKind{},
	P2TR:        taprootKind{label: "p2tr", lockFn: lockP2TR, signKey: (*KeyMaterial).TweakedPrivKey},
	P2TRTweaked: taprootKind{label: "p2tr-tweaked", lockFn: lockP2TRTweaked, signKey: (*KeyMaterial).PrivKey},
}

func (k ScriptKind) impl() (kindImpl, error) {
	if k >= numKinds {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return kindImpls[k], nil
}

func (k ScriptKind) String() string {
	impl, err := k.impl()
	if err != nil {
		return fmt.Sprintf("ScriptKind(%d)", uint8(k))
	}
	return impl.name()
}

// Valid reports whether k is one of AllKinds.
func (k ScriptKind) Valid() bool {
	return k < numKinds
}

// Signed reports whether spending proofs for k carry a real signature.
// Legacy kinds (P2PK, P2PKH, P2SH) are left unsigned.
func (k ScriptKind) Signed() bool {
	switch k {
	case P2WPKH, P2WSH, P2TR, P2TRTweaked:
		return true
	default:
		return false
	}
}

// LockingScript derives the locking script for k from km.
func (k ScriptKind) LockingScript(km *KeyMaterial) (LockingScript, error) {
	impl, err := k.impl()
	if err != nil {
		return LockingScript{}, err
	}
	if km == nil {
		return LockingScript{}, fmt.Errorf("%w: key material", ErrNilParam)
	}
	script, err := impl.lock(km)
	if err != nil {
		return LockingScript{}, err
	}
	return LockingScript{Kind: k, Script: script}, nil
}

// SpendingProof produces the scriptSig/witness that spends an output of
// kind k.
func (k ScriptKind) SpendingProof(req *SignRequest) (*SpendingProof, error) {
	impl, err := k.impl()
	if err != nil {
		return nil, err
	}
	return impl.prove(req)
}

// ParseKind maps a kind name (case-insensitive, "_" or "-" separators) to
// its ScriptKind.
func ParseKind(s string) (ScriptKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, k := range AllKinds {
		if k.String() == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// RandomKind draws a kind uniformly from AllKinds.
func RandomKind(src rng.Source) ScriptKind {
	return AllKinds[src.Intn(len(AllKinds))]
}
