package block

import "errors"

var (
	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("block: nil parameter")

	// ErrCoinbase indicates the coinbase transaction could not be built.
	ErrCoinbase = errors.New("block: coinbase construction failed")

	// ErrTxSynthesis indicates a block transaction could not be synthesized.
	ErrTxSynthesis = errors.New("block: transaction synthesis failed")
)
