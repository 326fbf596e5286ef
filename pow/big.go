package pow

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
)

// Network identifies which minimum difficulty applies.
type Network int

const (
	Mainnet Network = iota
	Testnet
	Regtest
)

// MinBitsForNetwork returns the easiest allowed compact value for net.
func MinBitsForNetwork(net Network) uint32 {
	if net == Regtest {
		return MinDifficultyBits
	}
	return NearMaxDifficultyBits
}

// BigTarget decodes compact bits into the full-width consensus target.
func BigTarget(b uint32) *big.Int {
	return blockchain.CompactToBig(b)
}

// BitsFromBigTarget encodes a full-width target into compact bits.
func BitsFromBigTarget(target *big.Int) uint32 {
	return blockchain.BigToCompact(target)
}

// Work returns the expected number of hashes for a block at bits:
// 2^256 / (target + 1). Zero and negative targets yield zero work.
func Work(b uint32) *big.Int {
	return blockchain.CalcWork(b)
}

// ValidateMinDifficulty checks that b does not describe an easier target
// than the network minimum.
func ValidateMinDifficulty(b uint32, net Network) error {
	minBits := MinBitsForNetwork(net)
	if BigTarget(b).Cmp(BigTarget(minBits)) > 0 {
		return fmt.Errorf("%w: bits 0x%08x exceeds minimum 0x%08x for network",
			ErrDifficultyTooLow, b, minBits)
	}
	return nil
}
