package staking

import "errors"

var (
	errNotInitialized     = errors.New("staking: not initialized")
	errAlreadyInitialized = errors.New("staking: already initialized")
	errNotAuthorized      = errors.New("staking: not authorized")
	errPaused             = errors.New("staking: module paused")
	errInvalidAmount      = errors.New("staking: amount must be positive")
	errBelowMinStake      = errors.New("staking: amount below minimum stake")
	errInsufficientSxlm   = errors.New("staking: insufficient sXLM balance")
	errWithdrawalLocked   = errors.New("staking: withdrawal still in cooldown")
	errNotOwner           = errors.New("staking: caller does not own this withdrawal")
	errAlreadyClaimed     = errors.New("staking: withdrawal already claimed")
	errNotFound           = errors.New("staking: withdrawal not found")
	errTooManyValidators  = errors.New("staking: validator set at capacity")
	errValidatorScoreLow  = errors.New("staking: validator score below minimum")
)
