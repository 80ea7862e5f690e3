package node

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/config"
	"xlmstake/crypto"
	"xlmstake/storage"
)

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return signer.Address()
}

func newTestNode(t *testing.T) (*Node, Vaults) {
	t.Helper()
	v := Vaults{
		Admin:              randAddr(t),
		StakingVault:       randAddr(t),
		LendingSxlmVault:   randAddr(t),
		LendingNativeVault: randAddr(t),
		AmmSxlmVault:       randAddr(t),
		AmmNativeVault:     randAddr(t),
	}
	cfg := &config.Config{
		ChainID: 7,
		Staking: config.StakingConfig{CooldownPeriodLedgers: 100, ProtocolFeeBps: 1000},
		Lending: config.LendingConfig{CollateralFactorBps: 7500, LiquidationThresholdBps: 8500, BorrowRateBps: 500},
		AMM:     config.AMMConfig{FeeBps: 30},
		Governance: config.GovernanceConfig{
			VotingPeriodLedgers: 100,
			QuorumBps:           1000,
		},
	}
	n, err := New(storage.NewMemDB(), cfg.ChainID, cfg, v)
	require.NoError(t, err)
	return n, v
}

func TestNewWiresAllFiveEngines(t *testing.T) {
	n, v := newTestNode(t)
	require.Equal(t, uint64(7), n.ChainID())
	require.True(t, v.Admin.Equal(n.Admin()))

	rate, err := n.Staking.GetExchangeRate()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10_000_000), rate)

	bps, err := n.Lending.GetCollateralFactor()
	require.NoError(t, err)
	require.EqualValues(t, 7500, bps)

	feeBps, err := n.AMM.GetFeeBps()
	require.NoError(t, err)
	require.EqualValues(t, 30, feeBps)

	count, err := n.Governance.ProposalCount()
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestAdvanceLedgerMonotonic(t *testing.T) {
	n, _ := newTestNode(t)
	require.Equal(t, uint64(0), n.LedgerSeq())
	require.Equal(t, uint64(1), n.AdvanceLedger())
	require.Equal(t, uint64(2), n.AdvanceLedger())
	require.Equal(t, uint64(2), n.LedgerSeq())
}

func TestGovernanceSetterForwardsToStakingFee(t *testing.T) {
	n, v := newTestNode(t)
	voter := randAddr(t)
	require.NoError(t, n.Token.Mint(v.StakingVault, voter, big.NewInt(200_0000000)))

	id, err := n.Governance.CreateProposal(voter, "staking.protocol_fee_bps", "250")
	require.NoError(t, err)
	_, err = n.Governance.Vote(voter, id, true)
	require.NoError(t, err)

	for i := 0; i < 101; i++ {
		n.AdvanceLedger()
	}
	require.NoError(t, n.Governance.ExecuteProposal(id))

	feeBps, err := n.Staking.ProtocolFeeBps()
	require.NoError(t, err)
	require.EqualValues(t, 250, feeBps)
}
