package rng

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// fill reads len(b) bytes from src. A failed or short read breaks the
// Source contract and panics.
func fill(src Source, b []byte) {
	n, err := src.Read(b)
	if err != nil || n != len(b) {
		panic(fmt.Sprintf("rng: source read %d of %d bytes: %v", n, len(b), err))
	}
}

// Bytes returns n random bytes.
func Bytes(src Source, n int) []byte {
	b := make([]byte, n)
	fill(src, b)
	return b
}

// Uint32 returns a uniformly random value over the full uint32 range.
func Uint32(src Source) uint32 {
	return binary.LittleEndian.Uint32(Bytes(src, 4))
}

// Uint64 returns a uniformly random value over the full uint64 range.
// Uint64n cannot produce math.MaxUint64, so this reads raw bytes instead.
func Uint64(src Source) uint64 {
	return binary.LittleEndian.Uint64(Bytes(src, 8))
}

// Int32 returns a uniformly random value over the full int32 range.
func Int32(src Source) int32 {
	return int32(Uint32(src))
}

// Bool returns true with probability 1/2.
func Bool(src Source) bool {
	return src.Intn(2) == 1
}

// Range returns a uniformly random value in [lo, hi]. It panics if hi < lo.
func Range(src Source, lo, hi uint64) uint64 {
	if hi < lo {
		panic("rng: invalid range")
	}
	span := hi - lo
	if span == ^uint64(0) {
		return Uint64(src)
	}
	return lo + src.Uint64n(span+1)
}

// Hash returns 32 random bytes as a chainhash.Hash.
func Hash(src Source) chainhash.Hash {
	var h chainhash.Hash
	fill(src, h[:])
	return h
}
