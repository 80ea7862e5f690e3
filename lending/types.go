package lending

import "math/big"

// LedgersPerYear annualises the borrow rate, one ledger close per second,
// mirroring the teacher's blocksPerYear constant rescaled to Stellar's
// ~5s-or-less ledger cadence (kept at 1/s for round numbers in tests).
const LedgersPerYear = 31_536_000

// DefaultCloseFactorBps caps how much of a borrower's debt a single
// liquidation call may repay.
const DefaultCloseFactorBps = 5000

type singleton struct {
	Admin                   string   `json:"admin"`
	SxlmVault               string   `json:"sxlm_vault"`
	NativeVault             string   `json:"native_vault"`
	TotalCollateral         *big.Int `json:"total_collateral"`
	TotalBorrowed           *big.Int `json:"total_borrowed"`
	PoolBalance             *big.Int `json:"pool_balance"`
	ExchangeRate            *big.Int `json:"exchange_rate"`
	CollateralFactorBps     uint32   `json:"collateral_factor_bps"`
	LiquidationThresholdBps uint32   `json:"liquidation_threshold_bps"`
	LiquidationBonusBps     uint32   `json:"liquidation_bonus_bps"`
	BorrowRateBps           uint32   `json:"borrow_rate_bps"`
	Accumulator             *big.Int `json:"accumulator"`
	TotalAccruedInterest    *big.Int `json:"total_accrued_interest"`
	LastUpdateLedger        uint64   `json:"last_update_ledger"`
	Initialized             bool     `json:"initialized"`
}

// Position is a borrower's collateral/debt record. XlmBorrowedPrincipal is
// stored as principal scaled to the accumulator value at last update
// (BorrowIndex); fresh debt is principal * accumulator / BorrowIndex.
type Position struct {
	SxlmCollateral       *big.Int `json:"sxlm_collateral"`
	XlmBorrowedPrincipal *big.Int `json:"xlm_borrowed_principal"`
	BorrowIndex          *big.Int `json:"borrow_index"`
	LastUpdateLedger     uint64   `json:"last_update_ledger"`
}
