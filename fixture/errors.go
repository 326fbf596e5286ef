package fixture

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("fixture: not found")

	// ErrDuplicate indicates a record with the same kind and ID already exists.
	ErrDuplicate = errors.New("fixture: duplicate record")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("fixture: nil parameter")

	// ErrInvalidRecord indicates a record is missing required fields.
	ErrInvalidRecord = errors.New("fixture: invalid record")
)
