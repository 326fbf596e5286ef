package tx

import (
	"fmt"
	"strconv"

	"github.com/bitfsorg/misfit-go/rng"
)

// LockTimeThreshold separates block-height lock times (below) from
// timestamp lock times (at or above).
const LockTimeThreshold uint32 = 500_000_000

// IsHeightLockTime reports whether v is interpreted as a block height.
func IsHeightLockTime(v uint32) bool {
	return v < LockTimeThreshold
}

// LockTimeForm selects how a random lock time is shaped.
type LockTimeForm int

const (
	LockTimeRaw LockTimeForm = iota
	LockTimeHeight
	LockTimeHex
	LockTimeTimestamp
	LockTimeZero

	numLockTimeForms
)

// LockTimeFromForm shapes v according to form. Forms that cannot represent
// v fall back to zero.
func LockTimeFromForm(form LockTimeForm, v uint32) uint32 {
	switch form {
	case LockTimeRaw:
		return v
	case LockTimeHeight:
		if IsHeightLockTime(v) {
			return v
		}
		return 0
	case LockTimeHex:
		parsed, err := strconv.ParseUint(fmt.Sprintf("%X", v), 16, 32)
		if err != nil {
			return 0
		}
		return uint32(parsed)
	case LockTimeTimestamp:
		if !IsHeightLockTime(v) {
			return v
		}
		return 0
	default:
		return 0
	}
}

// RandomLockTime picks one of the five forms uniformly and shapes a random
// value with it.
func RandomLockTime(src rng.Source) uint32 {
	form := LockTimeForm(src.Intn(int(numLockTimeForms)))
	return LockTimeFromForm(form, rng.Uint32(src))
}

// RandomVersion returns a standard version (1 or 2, evenly) half of the
// time and a uniformly random int32 otherwise.
func RandomVersion(src rng.Source) int32 {
	if rng.Bool(src) {
		if rng.Bool(src) {
			return 1
		}
		return 2
	}
	return rng.Int32(src)
}
