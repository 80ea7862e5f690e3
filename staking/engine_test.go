package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/common"
	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/nativecoin"
	"xlmstake/storage"
	"xlmstake/token"
)

type harness struct {
	staking *Engine
	sxlm    *token.Engine
	coin    *nativecoin.Ledger
	admin   crypto.Address
	vault   crypto.Address
	seq     *uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := storage.NewMemDB()
	var seq uint64
	nowFn := func() uint64 { return seq }
	store := ledger.New(db, nowFn)

	admin := randAddr(t)
	vault := randAddr(t)

	sxlm := token.New(ledger.New(storage.NewMemDB(), nowFn), events.NewRecorder(), nowFn)
	require.NoError(t, sxlm.Initialize(admin, vault, 7, "Staked XLM", "sXLM"))

	coin := nativecoin.New()

	s := New(store, sxlm, coin, events.NewRecorder(), nowFn)
	require.NoError(t, s.Initialize(admin, vault, 100))

	return &harness{staking: s, sxlm: sxlm, coin: coin, admin: admin, vault: vault, seq: &seq}
}

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return signer.Address()
}

func fund(t *testing.T, h *harness, addr crypto.Address, amount *big.Int) {
	t.Helper()
	require.NoError(t, h.coin.Credit(addr, amount))
}

func TestFirstDepositorBootstraps1to1(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(100_0000000))

	minted, err := h.staking.Deposit(alice, big.NewInt(100_0000000))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100_0000000), minted)

	staked, err := h.staking.TotalXLMStaked()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100_0000000), staked)

	rate, err := h.staking.GetExchangeRate()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(common.RatePrecision), rate)
}

func TestRewardsLiftExchangeRate(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(100_0000000))
	_, err := h.staking.Deposit(alice, big.NewInt(100_0000000))
	require.NoError(t, err)

	fund(t, h, h.admin, big.NewInt(10_0000000))
	require.NoError(t, h.staking.AddRewards(h.admin, big.NewInt(10_0000000)))

	treasury, err := h.staking.TreasuryBalance()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1_0000000), treasury)

	staked, err := h.staking.TotalXLMStaked()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(109_0000000), staked)

	rate, err := h.staking.GetExchangeRate()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10_900_000), rate)
}

func TestSecondDepositorAfterRewards(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(100_0000000))
	_, err := h.staking.Deposit(alice, big.NewInt(100_0000000))
	require.NoError(t, err)
	fund(t, h, h.admin, big.NewInt(10_0000000))
	require.NoError(t, h.staking.AddRewards(h.admin, big.NewInt(10_0000000)))

	bob := randAddr(t)
	fund(t, h, bob, big.NewInt(109_0000000))
	minted, err := h.staking.Deposit(bob, big.NewInt(109_0000000))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100_0000000), minted)

	supply, err := h.sxlm.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(200_0000000), supply)
}

func TestInstantWithdrawalPaidFromBuffer(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(100_0000000))
	_, err := h.staking.Deposit(alice, big.NewInt(100_0000000))
	require.NoError(t, err)

	// The deposit left the whole 100 XLM in the liquidity buffer, so an
	// instant request for 50 is paid at once and queues nothing.
	id, instant, xlmOut, err := h.staking.RequestWithdrawal(alice, big.NewInt(50_0000000), true)
	require.NoError(t, err)
	require.True(t, instant)
	require.Equal(t, uint64(0), id)
	require.Equal(t, big.NewInt(50_0000000), xlmOut)
}

func TestDelayedWithdrawalRequiresCooldown(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(100_0000000))
	_, err := h.staking.Deposit(alice, big.NewInt(100_0000000))
	require.NoError(t, err)

	id, instant, _, err := h.staking.RequestWithdrawal(alice, big.NewInt(50_0000000), false)
	require.NoError(t, err)
	require.False(t, instant)

	_, err = h.staking.ClaimWithdrawal(alice, id)
	require.ErrorIs(t, err, errWithdrawalLocked)

	*h.seq += 100
	_, err = h.staking.ClaimWithdrawal(alice, id)
	require.NoError(t, err)

	_, err = h.staking.ClaimWithdrawal(alice, id)
	require.ErrorIs(t, err, errAlreadyClaimed)
}

func TestSlashingReconcilesPendingWithdrawals(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(100_0000000))
	_, err := h.staking.Deposit(alice, big.NewInt(100_0000000))
	require.NoError(t, err)

	id, _, xlmOut, err := h.staking.RequestWithdrawal(alice, big.NewInt(50_0000000), false)
	require.NoError(t, err)

	fund(t, h, h.admin, big.NewInt(0))
	require.NoError(t, h.staking.ApplySlashing(h.admin, big.NewInt(25_0000000)))

	w, err := h.staking.getWithdrawal(id)
	require.NoError(t, err)
	require.True(t, w.XLMAmount.Cmp(xlmOut) < 0, "slashing must shrink the pending claim")
}

func TestBelowMinStakeRejected(t *testing.T) {
	h := newHarness(t)
	alice := randAddr(t)
	fund(t, h, alice, big.NewInt(10))
	_, err := h.staking.Deposit(alice, big.NewInt(MinStake-1))
	require.ErrorIs(t, err, errBelowMinStake)
}
