package lending

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

func newHarness(t *testing.T) (*Engine, *token.Engine, *nativecoin.Ledger, crypto.Address, crypto.Address, crypto.Address) {
	t.Helper()
	nowFn := func() uint64 { return 0 }

	admin := randAddr(t)
	sxlmVault := randAddr(t)
	nativeVault := randAddr(t)

	sxlm := token.New(ledger.New(storage.NewMemDB(), nowFn), events.NewRecorder(), nowFn)
	require.NoError(t, sxlm.Initialize(admin, sxlmVault, 7, "Staked XLM", "sXLM"))

	coin := nativecoin.New()

	e := New(ledger.New(storage.NewMemDB(), nowFn), sxlm, coin, events.NewRecorder(), nowFn)
	require.NoError(t, e.Initialize(admin, sxlmVault, nativeVault, 7000, 8000, 500))

	return e, sxlm, coin, admin, sxlmVault, nativeVault
}

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return signer.Address()
}

func TestBorrowThenLiquidate(t *testing.T) {
	e, sxlm, coin, admin, sxlmVault, _ := newHarness(t)

	borrower := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, borrower, big.NewInt(100_0000000)))
	require.NoError(t, coin.Credit(admin, big.NewInt(1000_0000000)))
	require.NoError(t, e.SupplyLiquidity(admin, big.NewInt(1000_0000000)))

	require.NoError(t, e.DepositCollateral(borrower, big.NewInt(100_0000000)))

	require.NoError(t, e.Borrow(borrower, big.NewInt(70_0000000)))

	hf, err := e.HealthFactor(borrower)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(11_428_571), hf)

	require.NoError(t, e.UpdateExchangeRate(admin, big.NewInt(7_000_000)))

	hf, err = e.HealthFactor(borrower)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(8_000_000), hf)
	require.True(t, hf.Cmp(big.NewInt(common.RatePrecision)) < 0)

	liquidator := randAddr(t)
	require.NoError(t, coin.Credit(liquidator, big.NewInt(100_0000000)))

	repaid, seized, err := e.Liquidate(liquidator, borrower)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(35_0000000), repaid)
	require.Equal(t, big.NewInt(525_000_000), seized)
}

func TestHealthyBorrowerCannotBeLiquidated(t *testing.T) {
	e, sxlm, coin, admin, sxlmVault, _ := newHarness(t)
	borrower := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, borrower, big.NewInt(100_0000000)))
	require.NoError(t, coin.Credit(admin, big.NewInt(1000_0000000)))
	require.NoError(t, e.SupplyLiquidity(admin, big.NewInt(1000_0000000)))
	require.NoError(t, e.DepositCollateral(borrower, big.NewInt(100_0000000)))
	require.NoError(t, e.Borrow(borrower, big.NewInt(10_0000000)))

	liquidator := randAddr(t)
	_, _, err := e.Liquidate(liquidator, borrower)
	require.ErrorIs(t, err, errHealthyBorrower)
}

func TestBorrowInsufficientLiquidity(t *testing.T) {
	e, sxlm, coin, admin, sxlmVault, _ := newHarness(t)
	borrower := randAddr(t)
	require.NoError(t, sxlm.Mint(sxlmVault, borrower, big.NewInt(100_0000000)))
	require.NoError(t, coin.Credit(admin, big.NewInt(1_0000000)))
	require.NoError(t, e.SupplyLiquidity(admin, big.NewInt(1_0000000)))
	require.NoError(t, e.DepositCollateral(borrower, big.NewInt(100_0000000)))

	err := e.Borrow(borrower, big.NewInt(10_0000000))
	require.ErrorIs(t, err, errInsufficientLiquidity)
}
