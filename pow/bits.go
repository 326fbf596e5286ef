// Package pow converts between compact difficulty bits and target values.
//
// The primary codec models the target as a 32-bit magnitude, which is what
// the fixture generators and header breakers operate on. It is deliberately
// not consensus-exact for targets wider than 32 bits; BigTarget and
// BitsFromBigTarget in big.go give the full-width consensus conversion.
package pow

import "math/bits"

const (
	// MinDifficultyBits is the easiest target, the regtest default.
	MinDifficultyBits uint32 = 0x207fffff

	// NearMaxDifficultyBits is the mainnet genesis difficulty.
	NearMaxDifficultyBits uint32 = 0x1d00ffff

	// signBit is the compact-format sign flag inside the mantissa.
	signBit uint32 = 0x00800000

	mantissaMask uint32 = 0x00ffffff
)

// Exponent returns the size byte of a compact value.
func Exponent(b uint32) uint32 {
	return b >> 24
}

// Mantissa returns the low 24 bits of a compact value.
func Mantissa(b uint32) uint32 {
	return b & mantissaMask
}

// TargetFromBits decodes compact bits into a 32-bit target magnitude.
//
//	exponent <= 3: mantissa >> 8*(3-exponent)
//	exponent  > 3: mantissa << 8*(exponent-3)
//
// Shifts past 32 bits yield zero.
func TargetFromBits(b uint32) uint32 {
	exp := Exponent(b)
	m := Mantissa(b)
	if exp <= 3 {
		return m >> (8 * (3 - exp))
	}
	return m << (8 * (exp - 3))
}

// BitsFromTarget encodes a 32-bit target magnitude as compact bits. The
// mantissa is shifted right one byte (and the size bumped) whenever its top
// bit would otherwise be read as a sign. Zero encodes to zero.
func BitsFromTarget(target uint32) uint32 {
	if target == 0 {
		return 0
	}

	size := uint32(bits.Len32(target)+7) / 8
	var compact uint32
	if size <= 3 {
		compact = target << (8 * (3 - size))
	} else {
		compact = target >> (8 * (size - 3))
	}

	if compact&signBit != 0 {
		compact >>= 8
		size++
	}

	return size<<24 | compact
}

// IsValidBits reports whether the exponent is in [3, 0x20] and the mantissa
// is non-zero.
func IsValidBits(b uint32) bool {
	exp := Exponent(b)
	return exp >= 0x03 && exp <= 0x20 && Mantissa(b) != 0
}

// IsMinDifficulty reports whether b is at or beyond the minimum difficulty
// constant.
func IsMinDifficulty(b uint32) bool {
	return b >= MinDifficultyBits
}
