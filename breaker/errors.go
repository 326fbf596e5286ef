package breaker

import "errors"

var (
	// ErrNoFlags indicates the resolved flag set is empty.
	ErrNoFlags = errors.New("no flags specified")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("breaker: nil parameter")
)
