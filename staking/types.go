package staking

import "math/big"

// MinStake is the smallest deposit accepted by Deposit: 1 XLM, scale 10^7.
const MinStake = 10_000_000

const (
	MaxValidators     = 20
	MinValidatorScore = 70
)

type singleton struct {
	Admin            string   `json:"admin"`
	NativeVault      string   `json:"native_vault"` // this contract's own XLM-holding address
	CooldownPeriod   uint64   `json:"cooldown_period"`
	ProtocolFeeBps   uint32   `json:"protocol_fee_bps"`
	TotalXLMStaked   *big.Int `json:"total_xlm_staked"`
	LiquidityBuffer  *big.Int `json:"liquidity_buffer"`
	TreasuryBalance  *big.Int `json:"treasury_balance"`
	IsPaused         bool     `json:"is_paused"`
	NextWithdrawalID uint64   `json:"next_withdrawal_id"`
	Initialized      bool     `json:"initialized"`
}

// Withdrawal is a pending delayed-path claim on earmarked XLM.
type Withdrawal struct {
	ID           uint64   `json:"id"`
	Owner        string   `json:"owner"`
	XLMAmount    *big.Int `json:"xlm_amount"`
	UnlockLedger uint64   `json:"unlock_ledger"`
	Claimed      bool     `json:"claimed"`
}

// Validator is advisory bookkeeping only (spec.md Non-goal: no on-chain
// per-validator accounting); folded in from the validator-manager contract
// in the original Soroban sources.
type Validator struct {
	Address       string `json:"address"`
	Score         uint32 `json:"score"`
	CommissionBps uint32 `json:"commission_bps"`
	Active        bool   `json:"active"`
}
