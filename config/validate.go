package config

import "fmt"

// ValidateConfig enforces the same-shaped sanity checks the teacher's
// config/validate.go ran over its governance/slashing sections, rescoped to
// the bps-denominated policy knobs the five engines actually take.
func ValidateConfig(g Global) error {
	if g.Governance.QuorumBps == 0 || g.Governance.QuorumBps > 10_000 {
		return fmt.Errorf("governance: quorum_bps out of range 1-10000")
	}
	if g.Governance.VotingPeriodLedgers == 0 {
		return fmt.Errorf("governance: voting_period_ledgers must be positive")
	}
	if g.Staking.CooldownPeriodLedgers == 0 {
		return fmt.Errorf("staking: cooldown_period_ledgers must be positive")
	}
	if g.Staking.ProtocolFeeBps > 10_000 {
		return fmt.Errorf("staking: protocol_fee_bps out of range")
	}
	if g.Lending.LiquidationThresholdBps <= g.Lending.CollateralFactorBps {
		return fmt.Errorf("lending: liquidation_threshold_bps must exceed collateral_factor_bps")
	}
	if g.Lending.CollateralFactorBps == 0 || g.Lending.CollateralFactorBps > 10_000 {
		return fmt.Errorf("lending: collateral_factor_bps out of range")
	}
	if g.AMM.FeeBps == 0 || g.AMM.FeeBps > 1_000 {
		return fmt.Errorf("amm: fee_bps out of range 1-1000")
	}
	return nil
}
