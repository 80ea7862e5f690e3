package config

// StakingConfig bundles the parameters staking.Engine.Initialize needs.
type StakingConfig struct {
	CooldownPeriodLedgers uint64
	ProtocolFeeBps        uint32
}

// LendingConfig bundles the parameters lending.Engine.Initialize needs.
type LendingConfig struct {
	CollateralFactorBps     uint32
	LiquidationThresholdBps uint32
	LiquidationBonusBps     uint32
	BorrowRateBps           uint32
}

// AMMConfig bundles the parameters amm.Engine.Initialize needs.
type AMMConfig struct {
	FeeBps uint32
}

// GovernanceConfig bundles the parameters governance.Engine.Initialize needs.
type GovernanceConfig struct {
	VotingPeriodLedgers uint64
	QuorumBps           uint32
}

// Global groups the cross-module policy knobs ValidateConfig enforces
// before a config file is accepted, mirroring the teacher's global.go
// sanity-check layer.
type Global struct {
	Staking    StakingConfig
	Lending    LendingConfig
	AMM        AMMConfig
	Governance GovernanceConfig
}
