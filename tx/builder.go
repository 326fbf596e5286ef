package tx

import (
	"fmt"
	"log/slog"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/misfit-go/rng"
)

// maxFundingDepth bounds funding-transaction recursion. A builder call at
// this depth always uses a placeholder outpoint instead of synthesizing a
// funding transaction.
const maxFundingDepth = 1

// InputParams overrides parts of the single synthesized input.
type InputParams struct {
	Outpoint   *wire.OutPoint // Spent outpoint; a funding tx is synthesized when nil
	Sequence   *uint32
	PrevOutput *PrevOutput  // Output being spent; a phantom one is synthesized when nil
	Key        *KeyMaterial // Key that locks PrevOutput
}

// OutputParams overrides parts of the single synthesized output.
type OutputParams struct {
	Amount *uint64
	Kind   *ScriptKind
	Key    *KeyMaterial
}

// TxParams is the builder's parameter bundle. Every field is optional.
type TxParams struct {
	Version  *int32
	LockTime *uint32
	Input    *InputParams
	Output   *OutputParams
}

// Generated is a synthesized transaction plus what went into it.
type Generated struct {
	Tx      *wire.MsgTx
	Funding *wire.MsgTx // nil when the caller supplied the outpoint
	Spent   PrevOutput  // Output spent by Tx's input
	Proof   *SpendingProof
	Output  LockingScript // Locking script of Tx's output

	outputKey *KeyMaterial
}

// TxID returns the transaction id, recomputed from the current contents.
func (g *Generated) TxID() chainhash.Hash {
	return g.Tx.TxHash()
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStrictOutpoints makes funding references point at an output index that
// exists on the funding transaction. By default the index is a random
// 32-bit value, which is looser than consensus but enough for fixtures.
func WithStrictOutpoints() BuilderOption {
	return func(b *Builder) { b.strictOutpoints = true }
}

// Builder synthesizes signed single-input, single-output transactions.
type Builder struct {
	src             rng.Source
	synth           *Synthesizer
	strictOutpoints bool
}

// NewBuilder returns a Builder drawing all randomness from src.
func NewBuilder(src rng.Source, opts ...BuilderOption) *Builder {
	b := &Builder{
		src:   src,
		synth: NewSynthesizer(src),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build synthesizes a transaction, filling every unset parameter at random.
// The result round-trips through the consensus codec but is not expected to
// be minable: no balance between input and output is modeled.
func (b *Builder) Build(params TxParams) (*Generated, error) {
	if b.src == nil {
		return nil, fmt.Errorf("%w: randomness source", ErrNilParam)
	}
	return b.build(params, 0)
}

// BuildN synthesizes n independent transactions with default parameters.
func (b *Builder) BuildN(n int) ([]*Generated, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidParams, n)
	}
	out := make([]*Generated, 0, n)
	for i := 0; i < n; i++ {
		g, err := b.Build(TxParams{})
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (b *Builder) build(params TxParams, depth int) (*Generated, error) {
	in := InputParams{}
	if params.Input != nil {
		in = *params.Input
	}
	out := OutputParams{}
	if params.Output != nil {
		out = *params.Output
	}

	result := &Generated{}

	// 1. Resolve the spent outpoint, recursing at most once for funding.
	outpoint, prev, prevKey, funding, err := b.resolveInput(in, depth)
	if err != nil {
		return nil, err
	}
	result.Funding = funding
	result.Spent = prev

	// 2. Header fields.
	version := RandomVersion(b.src)
	if params.Version != nil {
		version = *params.Version
	}
	msgTx := wire.NewMsgTx(version)

	sequence := rng.Uint32(b.src)
	if in.Sequence != nil {
		sequence = *in.Sequence
	}
	txIn := wire.NewTxIn(&outpoint, nil, nil)
	txIn.Sequence = sequence
	msgTx.AddTxIn(txIn)

	// 3. Output.
	lock, outKey, err := b.synth.Synthesize(out.Kind, out.Key)
	if err != nil {
		return nil, err
	}
	amount := rng.Uint64(b.src)
	if out.Amount != nil {
		amount = *out.Amount
	}
	msgTx.AddTxOut(wire.NewTxOut(int64(amount), lock.Script))
	result.Output = lock
	result.outputKey = outKey

	msgTx.LockTime = RandomLockTime(b.src)
	if params.LockTime != nil {
		msgTx.LockTime = *params.LockTime
	}

	// 4. Sign last, once every committed field is final.
	proof, err := SignInput(msgTx, 0, prev, prevKey)
	if err != nil {
		return nil, err
	}
	result.Proof = proof
	result.Tx = msgTx

	return result, nil
}

// resolveInput returns the outpoint to spend, the output it refers to, and
// the key that unlocks that output.
func (b *Builder) resolveInput(in InputParams, depth int) (wire.OutPoint, PrevOutput, *KeyMaterial, *wire.MsgTx, error) {
	if in.Outpoint == nil && depth < maxFundingDepth {
		slog.Debug("synthesizing funding transaction", "depth", depth+1)

		placeholder := wire.OutPoint{Hash: chainhash.Hash{}, Index: rng.Uint32(b.src)}
		funding, err := b.build(TxParams{Input: &InputParams{Outpoint: &placeholder}}, depth+1)
		if err != nil {
			return wire.OutPoint{}, PrevOutput{}, nil, nil, fmt.Errorf("funding transaction: %w", err)
		}

		index := rng.Uint32(b.src)
		if b.strictOutpoints {
			index = uint32(b.src.Intn(len(funding.Tx.TxOut)))
		}
		outpoint := wire.OutPoint{Hash: funding.TxID(), Index: index}
		prev := PrevOutput{
			Amount: uint64(funding.Tx.TxOut[0].Value),
			Script: funding.Output,
		}
		return outpoint, prev, funding.outputKey, funding.Tx, nil
	}

	var outpoint wire.OutPoint
	if in.Outpoint != nil {
		outpoint = *in.Outpoint
	} else {
		outpoint = wire.OutPoint{Hash: chainhash.Hash{}, Index: rng.Uint32(b.src)}
	}

	key := in.Key
	if in.PrevOutput != nil {
		if key == nil {
			var err error
			key, err = NewKeyMaterial(b.src)
			if err != nil {
				return wire.OutPoint{}, PrevOutput{}, nil, nil, err
			}
		}
		return outpoint, *in.PrevOutput, key, nil, nil
	}

	// No known previous output: synthesize a phantom one to sign against.
	lock, key, err := b.synth.Synthesize(nil, key)
	if err != nil {
		return wire.OutPoint{}, PrevOutput{}, nil, nil, err
	}
	prev := PrevOutput{Amount: rng.Uint64(b.src), Script: lock}
	return outpoint, prev, key, nil, nil
}
