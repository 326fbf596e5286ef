package block

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/misfit-go/merkle"
	"github.com/bitfsorg/misfit-go/pow"
	"github.com/bitfsorg/misfit-go/rng"
	"github.com/bitfsorg/misfit-go/tx"
)

const (
	// maxPrevDepth bounds previous-block recursion. A block assembled at this
	// depth gets a zero previous hash.
	maxPrevDepth = 1

	// MinTxs and MaxTxs bound the number of synthesized non-coinbase
	// transactions.
	MinTxs = 1
	MaxTxs = 9
)

// Params overrides parts of an assembled block. Every field is optional.
type Params struct {
	Txs       []*wire.MsgTx     // non-coinbase transactions; 1-9 are synthesized when nil
	Header    *wire.BlockHeader // used verbatim when set
	PrevBlock *chainhash.Hash   // previous block hash for a synthesized header
	Height    *uint32           // coinbase height; random when nil
}

// Assembler synthesizes blocks from a randomness source and a transaction
// builder.
type Assembler struct {
	src     rng.Source
	builder *tx.Builder
	synth   *tx.Synthesizer
}

// NewAssembler returns an Assembler. builder may share src.
func NewAssembler(src rng.Source, builder *tx.Builder) *Assembler {
	return &Assembler{
		src:     src,
		builder: builder,
		synth:   tx.NewSynthesizer(src),
	}
}

// Assemble builds a block. A coinbase is always prepended to the
// transaction list. When no header is supplied one is synthesized whose
// merkle root commits to the final transaction list.
func (a *Assembler) Assemble(params Params) (*wire.MsgBlock, error) {
	if a.src == nil || a.builder == nil {
		return nil, fmt.Errorf("%w: assembler source or builder", ErrNilParam)
	}
	return a.assemble(params, 0)
}

func (a *Assembler) assemble(params Params, depth int) (*wire.MsgBlock, error) {
	txs := params.Txs
	if txs == nil {
		n := int(rng.Range(a.src, MinTxs, MaxTxs))
		txs = make([]*wire.MsgTx, 0, n)
		for i := 0; i < n; i++ {
			g, err := a.builder.Build(tx.TxParams{})
			if err != nil {
				return nil, fmt.Errorf("%w: transaction %d: %w", ErrTxSynthesis, i, err)
			}
			txs = append(txs, g.Tx)
		}
	}

	height := uint32(rng.Range(a.src, 0, maxCoinbaseHeight))
	if params.Height != nil {
		height = *params.Height
	}
	coinbase, err := NewCoinbase(a.src, a.synth, height)
	if err != nil {
		return nil, err
	}

	all := make([]*wire.MsgTx, 0, len(txs)+1)
	all = append(all, coinbase)
	all = append(all, txs...)

	var header wire.BlockHeader
	if params.Header != nil {
		header = *params.Header
	} else {
		prev, err := a.prevBlockHash(params.PrevBlock, depth)
		if err != nil {
			return nil, err
		}
		header = wire.BlockHeader{
			Version:    tx.RandomVersion(a.src),
			PrevBlock:  prev,
			MerkleRoot: merkle.RootFromTxs(all),
			Timestamp:  time.Unix(int64(rng.Uint32(a.src)), 0),
			Bits:       pow.RandomBits(a.src),
			Nonce:      rng.Uint32(a.src),
		}
	}

	blk := wire.NewMsgBlock(&header)
	for _, t := range all {
		if err := blk.AddTransaction(t); err != nil {
			return nil, fmt.Errorf("%w: add transaction: %w", ErrTxSynthesis, err)
		}
	}
	return blk, nil
}

// prevBlockHash returns the supplied hash, or the hash of one recursively
// assembled block whose own previous hash is zero.
func (a *Assembler) prevBlockHash(supplied *chainhash.Hash, depth int) (chainhash.Hash, error) {
	if supplied != nil {
		return *supplied, nil
	}
	if depth >= maxPrevDepth {
		return chainhash.Hash{}, nil
	}

	slog.Debug("assembling previous block", "depth", depth+1)
	zero := chainhash.Hash{}
	prev, err := a.assemble(Params{PrevBlock: &zero}, depth+1)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("previous block: %w", err)
	}
	return prev.BlockHash(), nil
}
