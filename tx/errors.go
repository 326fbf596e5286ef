package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrKeyGeneration indicates fresh key material could not be derived.
	ErrKeyGeneration = errors.New("tx: key generation failed")

	// ErrSigningFailed indicates sighash computation or signing failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrScriptBuild indicates locking script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")

	// ErrUnknownKind indicates a script kind name or value is not recognized.
	ErrUnknownKind = errors.New("tx: unknown script kind")

	// ErrInvalidParams indicates invalid builder parameters were provided.
	ErrInvalidParams = errors.New("tx: invalid parameters")
)
