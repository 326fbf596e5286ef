package merkle

import "errors"

var (
	// ErrIndexOutOfRange indicates a leaf index outside the id list.
	ErrIndexOutOfRange = errors.New("merkle: index out of range")

	// ErrBranchInvalid indicates a branch does not fold up to the expected root.
	ErrBranchInvalid = errors.New("merkle: branch invalid")
)
