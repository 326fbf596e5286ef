package rng

import "errors"

// ErrInvalidSeed indicates a seed string is not 32 hex-encoded bytes.
var ErrInvalidSeed = errors.New("rng: invalid seed")
