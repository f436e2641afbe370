package blockchain

import "errors"

var (
	errEmptyInputs       = errors.New("transaction has no inputs")
	errEmptyOutputs      = errors.New("transaction has no outputs")
	errNonPositiveOutput = errors.New("transaction output value is not positive")
	errEmptyTxList       = errors.New("block has no transactions")
	errTargetNotMet      = errors.New("block hash does not meet target")
	errBadCoinbaseHeight = errors.New("coinbase height flag does not match header height")
)
