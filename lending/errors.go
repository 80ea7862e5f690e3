package lending

import "errors"

var (
	errNotInitialized         = errors.New("lending: not initialized")
	errAlreadyInitialized     = errors.New("lending: already initialized")
	errNotAuthorized          = errors.New("lending: not authorized")
	errPositionEmpty          = errors.New("lending: position empty")
	errUnhealthyAfter         = errors.New("lending: operation would leave position unhealthy")
	errInsufficientLiquidity  = errors.New("lending: insufficient pool liquidity")
	errHealthyBorrower        = errors.New("lending: borrower is not liquidatable")
	errNothingToRepay         = errors.New("lending: nothing to repay")
	errInvalidAmount          = errors.New("lending: amount must be positive")
	errInsufficientCollateral = errors.New("lending: insufficient collateral")
)
