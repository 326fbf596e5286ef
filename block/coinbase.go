package block

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/misfit-go/rng"
	"github.com/bitfsorg/misfit-go/tx"
)

const (
	// CoinbaseVersion is the version of every synthesized coinbase.
	CoinbaseVersion = 1

	// ExtraNonceSize is the length of the random extra nonce pushed after the
	// height in the coinbase scriptSig.
	ExtraNonceSize = 8

	// maxCoinbaseHeight keeps the BIP34 height push within four bytes.
	maxCoinbaseHeight = 0x7fffffff
)

// CoinbaseOutPoint returns the null previous outpoint a coinbase spends.
func CoinbaseOutPoint() wire.OutPoint {
	return wire.OutPoint{Hash: chainhash.Hash{}, Index: wire.MaxPrevOutIndex}
}

// IsCoinbase reports whether msgTx has the coinbase input shape.
func IsCoinbase(msgTx *wire.MsgTx) bool {
	if msgTx == nil || len(msgTx.TxIn) != 1 {
		return false
	}
	return msgTx.TxIn[0].PreviousOutPoint == CoinbaseOutPoint()
}

// CoinbaseScript builds the BIP34-style scriptSig: a minimal push of height
// followed by a push of the extra nonce.
func CoinbaseScript(height uint32, extraNonce []byte) ([]byte, error) {
	script, err := txscript.NewScriptBuilder().
		AddInt64(int64(height)).
		AddData(extraNonce).
		Script()
	if err != nil {
		return nil, fmt.Errorf("%w: scriptSig: %w", ErrCoinbase, err)
	}
	return script, nil
}

// NewCoinbase builds a coinbase-shaped transaction paying a random amount to
// a fresh P2WPKH output.
func NewCoinbase(src rng.Source, synth *tx.Synthesizer, height uint32) (*wire.MsgTx, error) {
	if src == nil || synth == nil {
		return nil, fmt.Errorf("%w: coinbase source", ErrNilParam)
	}

	scriptSig, err := CoinbaseScript(height, rng.Bytes(src, ExtraNonceSize))
	if err != nil {
		return nil, err
	}

	kind := tx.P2WPKH
	lock, _, err := synth.Synthesize(&kind, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: output: %w", ErrCoinbase, err)
	}

	msgTx := wire.NewMsgTx(CoinbaseVersion)
	prev := CoinbaseOutPoint()
	txIn := wire.NewTxIn(&prev, scriptSig, nil)
	txIn.Sequence = wire.MaxTxInSequenceNum
	msgTx.AddTxIn(txIn)
	msgTx.AddTxOut(wire.NewTxOut(int64(rng.Uint64(src)), lock.Script))
	msgTx.LockTime = 0
	return msgTx, nil
}
