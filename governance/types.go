package governance

import "math/big"

// MinProposalStake is the sXLM balance a proposer must hold to create a
// proposal.
var MinProposalStake = big.NewInt(100_0000000)

type singleton struct {
	Admin               string `json:"admin"`
	SxlmToken           string `json:"sxlm_token"`
	VotingPeriodLedgers uint64 `json:"voting_period_ledgers"`
	QuorumBps           uint32 `json:"quorum_bps"`
	ProposalCount       uint64 `json:"proposal_count"`
	Initialized         bool   `json:"initialized"`
}

// Proposal is spec.md §3's governance proposal record. ParamKey names one of
// the canonical parameter setters registered via RegisterSetter; NewValue is
// carried as an opaque string and decoded by that setter.
type Proposal struct {
	ID           uint64   `json:"id"`
	Proposer     string   `json:"proposer"`
	ParamKey     string   `json:"param_key"`
	NewValue     string   `json:"new_value"`
	StartLedger  uint64   `json:"start_ledger"`
	EndLedger    uint64   `json:"end_ledger"`
	VotesFor     *big.Int `json:"votes_for"`
	VotesAgainst *big.Int `json:"votes_against"`
	Executed     bool     `json:"executed"`
}
