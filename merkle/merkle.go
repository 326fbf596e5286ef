// Package merkle computes Bitcoin merkle roots and inclusion branches.
//
// Hashes are handled in internal (wire) byte order throughout, i.e. the
// order chainhash.Hash stores them in, not the reversed display order.
package merkle

import (
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// HashPair computes SHA256d(left || right).
func HashPair(left, right chainhash.Hash) chainhash.Hash {
	combined := make([]byte, 2*chainhash.HashSize)
	copy(combined[:chainhash.HashSize], left[:])
	copy(combined[chainhash.HashSize:], right[:])

	var out chainhash.Hash
	copy(out[:], bsvhash.Sha256d(combined))
	return out
}

// Tree builds every level of the merkle tree, leaves first and root last.
// A level with an odd element count greater than one is padded by
// duplicating its last hash before pairing. Returns nil for no leaves.
func Tree(ids []chainhash.Hash) [][]chainhash.Hash {
	if len(ids) == 0 {
		return nil
	}

	level := make([]chainhash.Hash, len(ids))
	copy(level, ids)
	levels := [][]chainhash.Hash{level}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = HashPair(level[i], level[i+1])
		}
		level = next
		levels = append(levels, level)
	}

	return levels
}

// Root returns the merkle root of ids. A single id is its own root and an
// empty list has the all-zero root.
func Root(ids []chainhash.Hash) chainhash.Hash {
	tree := Tree(ids)
	if tree == nil {
		return chainhash.Hash{}
	}
	return tree[len(tree)-1][0]
}

// TxIDs returns the non-witness hash of every transaction.
func TxIDs(txs []*wire.MsgTx) []chainhash.Hash {
	ids := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		ids[i] = tx.TxHash()
	}
	return ids
}

// RootFromTxs computes the merkle root over the transactions' ids.
func RootFromTxs(txs []*wire.MsgTx) chainhash.Hash {
	return Root(TxIDs(txs))
}
