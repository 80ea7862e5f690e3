package config

// defaultGlobal returns the policy defaults createDefault seeds a fresh
// config file with: a 1-day cooldown, a 30bps AMM fee, and a 10% quorum.
func defaultGlobal() Global {
	return Global{
		Staking: StakingConfig{
			CooldownPeriodLedgers: 17280, // ~1 day at 5s ledgers
			ProtocolFeeBps:        1000,
		},
		Lending: LendingConfig{
			CollateralFactorBps:     7500,
			LiquidationThresholdBps: 8500,
			LiquidationBonusBps:     500,
			BorrowRateBps:           500,
		},
		AMM: AMMConfig{
			FeeBps: 30,
		},
		Governance: GovernanceConfig{
			VotingPeriodLedgers: 17280,
			QuorumBps:           1000,
		},
	}
}
