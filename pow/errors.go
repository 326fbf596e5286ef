package pow

import "errors"

var (
	// ErrUnknownLevel indicates a difficulty level name is not recognized.
	ErrUnknownLevel = errors.New("pow: unknown difficulty level")

	// ErrDifficultyTooLow indicates bits describe a target easier than the network allows.
	ErrDifficultyTooLow = errors.New("pow: difficulty below network minimum")
)
