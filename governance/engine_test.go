package governance

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/storage"
	"xlmstake/token"
)

func newHarness(t *testing.T) (*Engine, *token.Engine, crypto.Address, crypto.Address, *uint64) {
	t.Helper()
	var seq uint64
	nowFn := func() uint64 { return seq }

	admin := randAddr(t)
	sxlmVault := randAddr(t)

	sxlm := token.New(ledger.New(storage.NewMemDB(), nowFn), events.NewRecorder(), nowFn)
	require.NoError(t, sxlm.Initialize(admin, sxlmVault, 7, "Staked XLM", "sXLM"))

	g := New(ledger.New(storage.NewMemDB(), nowFn), sxlm, events.NewRecorder(), nowFn)
	require.NoError(t, g.Initialize(admin, sxlmVault, 100, 1000))

	return g, sxlm, admin, sxlmVault, &seq
}

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return signer.Address()
}

func TestGovernanceHappyPath(t *testing.T) {
	g, sxlm, _, sxlmVault, seq := newHarness(t)

	voterA := randAddr(t)
	voterB := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, voterA, big.NewInt(60_0000000)))
	require.NoError(t, sxlm.Mint(sxlmVault, voterB, big.NewInt(50_0000000)))

	proposer := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, proposer, big.NewInt(100_0000000)))
	id, err := g.CreateProposal(proposer, "staking.protocol_fee_bps", "500")
	require.NoError(t, err)

	_, err = g.Vote(voterA, id, true)
	require.NoError(t, err)
	_, err = g.Vote(voterB, id, false)
	require.NoError(t, err)

	forVotes, against, err := g.GetVoteCount(id)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(60_0000000), forVotes)
	require.Equal(t, big.NewInt(50_0000000), against)

	*seq += 101
	require.NoError(t, g.ExecuteProposal(id))

	val, err := g.GetParam("staking.protocol_fee_bps")
	require.NoError(t, err)
	require.Equal(t, "500", val)

	err = g.ExecuteProposal(id)
	require.ErrorIs(t, err, errAlreadyExecuted)
}

func TestVoteTwiceRejected(t *testing.T) {
	g, sxlm, _, sxlmVault, _ := newHarness(t)
	voter := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, voter, big.NewInt(200_0000000)))

	id, err := g.CreateProposal(voter, "amm.fee_bps", "50")
	require.NoError(t, err)

	_, err = g.Vote(voter, id, true)
	require.NoError(t, err)
	_, err = g.Vote(voter, id, true)
	require.ErrorIs(t, err, errAlreadyVoted)
}

func TestExecuteBeforeVotingClosesFails(t *testing.T) {
	g, sxlm, _, sxlmVault, _ := newHarness(t)
	voter := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, voter, big.NewInt(200_0000000)))

	id, err := g.CreateProposal(voter, "amm.fee_bps", "50")
	require.NoError(t, err)
	_, err = g.Vote(voter, id, true)
	require.NoError(t, err)

	err = g.ExecuteProposal(id)
	require.ErrorIs(t, err, errVotingOpen)
}

func TestQuorumNotMetRejectsExecution(t *testing.T) {
	g, sxlm, _, sxlmVault, seq := newHarness(t)
	proposer := randAddr(t)
	smallVoter := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, proposer, big.NewInt(200_0000000)))
	require.NoError(t, sxlm.Mint(sxlmVault, smallVoter, big.NewInt(1_0000000)))

	id, err := g.CreateProposal(proposer, "amm.fee_bps", "50")
	require.NoError(t, err)
	_, err = g.Vote(smallVoter, id, true)
	require.NoError(t, err)

	*seq += 101
	err = g.ExecuteProposal(id)
	require.ErrorIs(t, err, errQuorumNotMet)
}

func TestCreateProposalBelowMinStakeRejected(t *testing.T) {
	g, sxlm, _, sxlmVault, _ := newHarness(t)
	poor := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, poor, big.NewInt(1_0000000)))

	_, err := g.CreateProposal(poor, "amm.fee_bps", "50")
	require.ErrorIs(t, err, errInsufficientStake)
}

func TestRegisteredSetterIsForwardedOnExecution(t *testing.T) {
	g, sxlm, _, sxlmVault, seq := newHarness(t)
	voter := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, voter, big.NewInt(200_0000000)))

	var forwarded string
	g.RegisterSetter("amm.fee_bps", func(newValue string) error {
		forwarded = newValue
		return nil
	})

	id, err := g.CreateProposal(voter, "amm.fee_bps", "25")
	require.NoError(t, err)
	_, err = g.Vote(voter, id, true)
	require.NoError(t, err)

	*seq += 101
	require.NoError(t, g.ExecuteProposal(id))
	require.Equal(t, "25", forwarded)
}
