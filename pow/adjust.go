package pow

import "github.com/bitfsorg/misfit-go/rng"

// IncreaseDifficulty divides the 32-bit target by factor and re-encodes it.
// The target never drops below 1.
func IncreaseDifficulty(b uint32, factor float64) uint32 {
	target := uint32(float64(TargetFromBits(b)) / factor)
	return BitsFromTarget(max(target, 1))
}

// DecreaseDifficulty multiplies the 32-bit target by factor and re-encodes
// it.
func DecreaseDifficulty(b uint32, factor float64) uint32 {
	return BitsFromTarget(uint32(float64(TargetFromBits(b)) * factor))
}

// FlipBits XORs b with pattern.
func FlipBits(b, pattern uint32) uint32 {
	return b ^ pattern
}

// RandomBits draws bits with an exponent in [0x1d, 0x20] and a mantissa in
// [0x008000, 0xffffff].
func RandomBits(src rng.Source) uint32 {
	exp := uint32(rng.Range(src, 0x1d, 0x20))
	mantissa := uint32(rng.Range(src, 0x008000, 0xffffff))
	return exp<<24 | mantissa
}
