package token

import "errors"

var (
	errNotInitialized      = errors.New("token: not initialized")
	errAlreadyInitialized  = errors.New("token: already initialized")
	errNotAuthorized       = errors.New("token: not authorized")
	errInsufficientBalance = errors.New("token: insufficient balance")
	errInsufficientAllowance = errors.New("token: insufficient allowance")
	errAllowanceExpired    = errors.New("token: allowance expired")
	errArithmeticOverflow  = errors.New("token: arithmetic overflow")
	errInvalidAmount       = errors.New("token: amount must be non-negative")
)
