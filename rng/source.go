// Package rng provides the randomness source threaded through every
// synthesis call. Builders never reach for a process-wide generator; they
// draw from the Source they were constructed with, so a seeded Source makes
// a whole run reproducible.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"lukechampine.com/frand"
)

// SeedSize is the length of a deterministic seed in bytes.
const SeedSize = 32

// DeriveInfo is the HKDF info prefix for sub-stream seeds.
const DeriveInfo = "misfit-substream-v1"

// Source is the minimal randomness interface used by the synthesis engine.
// *frand.RNG satisfies it. A Source is not safe for concurrent use.
//
// Read must fill the whole buffer and never fail. The draw helpers panic
// when it does not.
type Source interface {
	Read(b []byte) (int, error)
	Intn(n int) int
	Uint64n(n uint64) uint64
}

var _ Source = (*frand.RNG)(nil)

// New returns a Source seeded from system entropy.
func New() Source {
	return frand.New()
}

// NewSeeded returns a deterministic Source. Two sources built from the same
// seed produce identical streams.
func NewSeeded(seed [SeedSize]byte) Source {
	return frand.NewCustom(seed[:], 1024, 12)
}

// NewSeed returns a seed drawn from system entropy.
func NewSeed() [SeedSize]byte {
	return frand.Entropy256()
}

// Derive returns the seed of sub-stream index. Distinct indexes yield
// unrelated streams, so work split across goroutines stays reproducible.
func Derive(seed [SeedSize]byte, index uint64) [SeedSize]byte {
	info := binary.LittleEndian.AppendUint64([]byte(DeriveInfo), index)
	r := hkdf.New(sha256.New, seed[:], nil, info)

	var out [SeedSize]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		// HKDF-SHA256 yields up to 8160 bytes; 32 cannot fail.
		panic(fmt.Sprintf("rng: derive: %v", err))
	}
	return out
}

// ParseSeed decodes a 64-character hex seed.
func ParseSeed(s string) ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if len(b) != SeedSize {
		return seed, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSeed, SeedSize, len(b))
	}
	copy(seed[:], b)
	return seed, nil
}

// ResolveSeed parses s, or draws a fresh seed when s is empty.
func ResolveSeed(s string) ([SeedSize]byte, error) {
	if s == "" {
		return NewSeed(), nil
	}
	return ParseSeed(s)
}

// FromSeedString returns a seeded Source when s is non-empty and an
// entropy-backed Source otherwise.
func FromSeedString(s string) (Source, error) {
	if s == "" {
		return New(), nil
	}
	seed, err := ParseSeed(s)
	if err != nil {
		return nil, err
	}
	return NewSeeded(seed), nil
}
