package merkle

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Branch returns the sibling hashes (bottom-up) proving ids[index] is
// included under Root(ids).
func Branch(ids []chainhash.Hash, index int) ([]chainhash.Hash, error) {
	if index < 0 || index >= len(ids) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, len(ids))
	}

	tree := Tree(ids)
	branch := make([]chainhash.Hash, 0, len(tree)-1)
	pos := index
	for _, level := range tree[:len(tree)-1] {
		sibling := pos ^ 1
		if sibling >= len(level) {
			// Odd level: the last hash is paired with itself.
			sibling = pos
		}
		branch = append(branch, level[sibling])
		pos /= 2
	}
	return branch, nil
}

// BranchRoot folds a branch back up to a root. Bit i of index selects
// whether the running hash is the left (0) or right (1) operand at level i.
func BranchRoot(leaf chainhash.Hash, index uint32, branch []chainhash.Hash) chainhash.Hash {
	h := leaf
	for i, node := range branch {
		if (index>>uint(i))&1 == 0 {
			h = HashPair(h, node)
		} else {
			h = HashPair(node, h)
		}
	}
	return h
}

// VerifyBranch checks that leaf at index is included under root.
func VerifyBranch(leaf chainhash.Hash, index uint32, branch []chainhash.Hash, root chainhash.Hash) error {
	if BranchRoot(leaf, index, branch) != root {
		return ErrBranchInvalid
	}
	return nil
}
