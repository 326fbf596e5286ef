package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// ProofStatus distinguishes real signatures from the unsigned placeholder
// used for legacy kinds.
type ProofStatus uint8

const (
	// ProofSigned means the witness carries a signature over the input.
	ProofSigned ProofStatus = iota
	// ProofUnsigned means no signature was produced (P2PK, P2PKH, P2SH).
	ProofUnsigned
)

func (s ProofStatus) String() string {
	if s == ProofUnsigned {
		return "unsigned"
	}
	return "signed"
}

// PrevOutput is the output an input spends.
type PrevOutput struct {
	Amount uint64
	Script LockingScript
}

// TxOut returns the wire form of the previous output.
func (p PrevOutput) TxOut() *wire.TxOut {
	return wire.NewTxOut(int64(p.Amount), p.Script.Script)
}

// SpendingProof is the data that unlocks a previous output.
type SpendingProof struct {
	Status          ProofStatus
	SignatureScript []byte
	Witness         wire.TxWitness
}

// Apply installs the proof on in.
func (p *SpendingProof) Apply(in *wire.TxIn) {
	in.SignatureScript = p.SignatureScript
	in.Witness = p.Witness
}

// SignRequest carries everything needed to sign one input.
type SignRequest struct {
	Tx         *wire.MsgTx
	InputIndex int
	PrevOutput PrevOutput
	Key        *KeyMaterial
}

func (r *SignRequest) validate() error {
	if r == nil {
		return fmt.Errorf("%w: sign request", ErrNilParam)
	}
	if r.Tx == nil {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if r.Key == nil {
		return fmt.Errorf("%w: key material", ErrNilParam)
	}
	if r.InputIndex < 0 || r.InputIndex >= len(r.Tx.TxIn) {
		return fmt.Errorf("%w: input index %d out of range [0, %d)", ErrInvalidParams, r.InputIndex, len(r.Tx.TxIn))
	}
	return nil
}

// sigContext builds the sighash midstate for a single-previous-output
// context.
func (r *SignRequest) sigContext() (*txscript.TxSigHashes, txscript.PrevOutputFetcher) {
	fetcher := txscript.NewCannedPrevOutputFetcher(r.PrevOutput.Script.Script, int64(r.PrevOutput.Amount))
	return txscript.NewTxSigHashes(r.Tx, fetcher), fetcher
}

// Sign produces the spending proof for req's input, dispatching on the
// previous output's kind.
func Sign(req *SignRequest) (*SpendingProof, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	return req.PrevOutput.Script.Kind.SpendingProof(req)
}

// SignInput signs input idx of msgTx against prev and installs the proof.
func SignInput(msgTx *wire.MsgTx, idx int, prev PrevOutput, km *KeyMaterial) (*SpendingProof, error) {
	proof, err := Sign(&SignRequest{Tx: msgTx, InputIndex: idx, PrevOutput: prev, Key: km})
	if err != nil {
		return nil, err
	}
	proof.Apply(msgTx.TxIn[idx])
	return proof, nil
}

// segwitSignature computes the BIP143 SIGHASH_ALL digest over the script
// code and returns the DER signature with the hash type appended.
func segwitSignature(req *SignRequest) ([]byte, error) {
	sigHashes, _ := req.sigContext()
	hash, err := txscript.CalcWitnessSigHash(req.PrevOutput.Script.Script, sigHashes,
		txscript.SigHashAll, req.Tx, req.InputIndex, int64(req.PrevOutput.Amount))
	if err != nil {
		return nil, fmt.Errorf("%w: witness sighash: %w", ErrSigningFailed, err)
	}
	sig := ecdsa.Sign(req.Key.PrivKey(), hash)
	return append(sig.Serialize(), byte(txscript.SigHashAll)), nil
}

// --- per-kind proofs ---

// legacyKind covers kinds whose inputs are left unsigned.
type legacyKind struct {
	label  string
	lockFn func(*KeyMaterial) ([]byte, error)
}

func (k legacyKind) name() string                         { return k.label }
func (k legacyKind) lock(km *KeyMaterial) ([]byte, error) { return k.lockFn(km) }

func (legacyKind) prove(req *SignRequest) (*SpendingProof, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	return &SpendingProof{Status: ProofUnsigned}, nil
}

type witnessKeyHashKind struct{}

func (witnessKeyHashKind) name() string                         { return "p2wpkh" }
func (witnessKeyHashKind) lock(km *KeyMaterial) ([]byte, error) { return lockP2WPKH(km) }

// prove builds the [sig, pubkey] witness.
func (witnessKeyHashKind) prove(req *SignRequest) (*SpendingProof, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	sig, err := segwitSignature(req)
	if err != nil {
		return nil, err
	}
	return &SpendingProof{
		Status:  ProofSigned,
		Witness: wire.TxWitness{sig, req.Key.CompressedPubKey()},
	}, nil
}

type witnessScriptHashKind struct{}

func (witnessScriptHashKind) name() string                         { return "p2wsh" }
func (witnessScriptHashKind) lock(km *KeyMaterial) ([]byte, error) { return lockP2WSH(km) }

// prove builds the [sig, witness script] witness. With no tracked witness
// script, the locking script stands in for it.
func (witnessScriptHashKind) prove(req *SignRequest) (*SpendingProof, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	sig, err := segwitSignature(req)
	if err != nil {
		return nil, err
	}
	witnessScript := append([]byte(nil), req.PrevOutput.Script.Script...)
	return &SpendingProof{
		Status:  ProofSigned,
		Witness: wire.TxWitness{sig, witnessScript},
	}, nil
}

type taprootKind struct {
	label  string
	lockFn func(*KeyMaterial) ([]byte, error)
	// signKey is the private key matching the committed output key.
	signKey func(*KeyMaterial) *btcec.PrivateKey
}

func (k taprootKind) name() string                         { return k.label }
func (k taprootKind) lock(km *KeyMaterial) ([]byte, error) { return k.lockFn(km) }

// prove signs the BIP341 key-path digest with the key behind the output key
// and emits a single 64-byte Schnorr signature (SIGHASH_DEFAULT). BIP340
// signing negates the key when its point has odd y.
func (k taprootKind) prove(req *SignRequest) (*SpendingProof, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	sigHashes, fetcher := req.sigContext()
	hash, err := txscript.CalcTaprootSignatureHash(sigHashes, txscript.SigHashDefault,
		req.Tx, req.InputIndex, fetcher)
	if err != nil {
		return nil, fmt.Errorf("%w: taproot sighash: %w", ErrSigningFailed, err)
	}
	sig, err := schnorr.Sign(k.signKey(req.Key), hash)
	if err != nil {
		return nil, fmt.Errorf("%w: schnorr: %w", ErrSigningFailed, err)
	}
	return &SpendingProof{
		Status:  ProofSigned,
		Witness: wire.TxWitness{sig.Serialize()},
	}, nil
}
