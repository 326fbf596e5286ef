package codec

import "errors"

var (
	// ErrInvalidHex indicates the input is not valid hexadecimal.
	ErrInvalidHex = errors.New("codec: invalid hex")

	// ErrInvalidLength indicates a fixed-size object has the wrong length.
	ErrInvalidLength = errors.New("codec: invalid length")

	// ErrMalformed indicates the bytes do not form a valid consensus structure.
	ErrMalformed = errors.New("codec: malformed structure")

	// ErrEncode indicates serialization failed.
	ErrEncode = errors.New("codec: encode failed")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("codec: required parameter is nil")
)
