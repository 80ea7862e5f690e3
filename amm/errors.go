package amm

import "errors"

var (
	errNotInitialized        = errors.New("amm: not initialized")
	errAlreadyInitialized    = errors.New("amm: already initialized")
	errNotAuthorized         = errors.New("amm: not authorized")
	errInvalidAmount         = errors.New("amm: amount must be positive")
	errInsufficientLiquidity = errors.New("amm: insufficient liquidity")
	errSlippageExceeded      = errors.New("amm: slippage exceeded")
	errInvariantViolated     = errors.New("amm: invariant violated")
	errBelowMinLiquidity     = errors.New("amm: below minimum liquidity")
)
