package governance

import "errors"

var (
	errNotInitialized     = errors.New("governance: not initialized")
	errAlreadyInitialized = errors.New("governance: already initialized")
	errInsufficientStake  = errors.New("governance: insufficient stake to propose")
	errAlreadyVoted       = errors.New("governance: already voted")
	errVotingClosed       = errors.New("governance: voting closed")
	errVotingOpen         = errors.New("governance: voting still open")
	errQuorumNotMet       = errors.New("governance: quorum not met")
	errAlreadyExecuted    = errors.New("governance: already executed")
	errProposalNotFound   = errors.New("governance: proposal not found")
	errProposalRejected   = errors.New("governance: proposal rejected")
	errUnknownParam       = errors.New("governance: unknown parameter key")
)
