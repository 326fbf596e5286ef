package breaker

import (
	"bytes"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/misfit-go/tx"
)

const (
	// VersionBump is added to the version (wrapping).
	VersionBump int32 = 15

	// SequenceMask is XORed into every input sequence.
	SequenceMask uint32 = 0xffffffff
)

// InvalidateTx returns a copy of msgTx with the fields selected by flags
// corrupted. The input is not modified. Mutations are deterministic and
// applied in a fixed order: input txid, version, lock time, per-input
// fields, then per-output fields.
func InvalidateTx(msgTx *wire.MsgTx, flags TxFlags) (*wire.MsgTx, error) {
	if msgTx == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if flags.Empty() {
		return nil, ErrNoFlags
	}

	out := msgTx.Copy()

	if flags.Has(FlagInputTxid) {
		switch {
		case len(out.TxIn) > 1:
			out.TxIn = out.TxIn[:len(out.TxIn)-1]
		case len(out.TxIn) == 1:
			out.TxIn[0].PreviousOutPoint.Index++
		}
	}

	if flags.Has(FlagVersion) {
		out.Version += VersionBump
	}

	if flags.Has(FlagLocktime) {
		out.LockTime = FlipLockTime(out.LockTime)
	}

	for _, in := range out.TxIn {
		if flags.Has(FlagInputVout) {
			in.PreviousOutPoint.Index ^= 1
		}
		if flags.Has(FlagInputScriptSig) {
			in.SignatureScript = CorruptScript(in.SignatureScript)
		}
		if flags.Has(FlagInputSequence) {
			in.Sequence ^= SequenceMask
		}
		if flags.Has(FlagWitnessData) {
			in.Witness = corruptWitness(in.Witness)
		}
	}

	for _, o := range out.TxOut {
		if flags.Has(FlagOutputAmount) {
			o.Value = int64(math.MaxUint64 - uint64(o.Value))
		}
		if flags.Has(FlagOutputScriptPubKey) {
			o.PkScript = CorruptScript(o.PkScript)
		}
	}

	return out, nil
}

// FlipLockTime maps v to MaxUint32-v when the result keeps v's height or
// timestamp interpretation, and returns v unchanged otherwise. Every height
// locktime is therefore left as is.
func FlipLockTime(v uint32) uint32 {
	flipped := math.MaxUint32 - v
	if tx.IsHeightLockTime(v) != tx.IsHeightLockTime(flipped) {
		return v
	}
	return flipped
}

// CorruptScript increments the first byte of a copy of s (wrapping), or
// returns [OP_TRUE] when s is empty.
func CorruptScript(s []byte) []byte {
	if len(s) == 0 {
		return []byte{0x51}
	}
	out := bytes.Clone(s)
	out[0]++
	return out
}

// corruptWitness increments the first byte of the first witness item. An
// empty first item becomes [0x01]; an empty witness gains a [0x01] item.
func corruptWitness(w wire.TxWitness) wire.TxWitness {
	if len(w) == 0 {
		return wire.TxWitness{{0x01}}
	}
	out := make(wire.TxWitness, len(w))
	copy(out, w)
	if len(out[0]) == 0 {
		out[0] = []byte{0x01}
		return out
	}
	out[0] = bytes.Clone(out[0])
	out[0][0]++
	return out
}

// Touched reports which fields differ between before and after. Input
// fields are compared over the inputs both transactions share; a change in
// input count counts as an input txid change.
func Touched(before, after *wire.MsgTx) TxFlags {
	var f TxFlags
	if before == nil || after == nil {
		return f
	}
	if before.Version != after.Version {
		f |= FlagVersion
	}
	if before.LockTime != after.LockTime {
		f |= FlagLocktime
	}
	if len(before.TxIn) != len(after.TxIn) {
		f |= FlagInputTxid
	}
	for i := 0; i < min(len(before.TxIn), len(after.TxIn)); i++ {
		b, a := before.TxIn[i], after.TxIn[i]
		if b.PreviousOutPoint.Hash != a.PreviousOutPoint.Hash {
			f |= FlagInputTxid
		}
		if b.PreviousOutPoint.Index != a.PreviousOutPoint.Index {
			f |= FlagInputVout
		}
		if !bytes.Equal(b.SignatureScript, a.SignatureScript) {
			f |= FlagInputScriptSig
		}
		if b.Sequence != a.Sequence {
			f |= FlagInputSequence
		}
		if !witnessEqual(b.Witness, a.Witness) {
			f |= FlagWitnessData
		}
	}
	for i := 0; i < min(len(before.TxOut), len(after.TxOut)); i++ {
		b, a := before.TxOut[i], after.TxOut[i]
		if b.Value != a.Value {
			f |= FlagOutputAmount
		}
		if !bytes.Equal(b.PkScript, a.PkScript) {
			f |= FlagOutputScriptPubKey
		}
	}
	return f
}

func witnessEqual(a, b wire.TxWitness) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
