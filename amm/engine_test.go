package amm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/nativecoin"
	"xlmstake/storage"
	"xlmstake/token"
)

func newHarness(t *testing.T) (*Engine, *token.Engine, *nativecoin.Ledger, crypto.Address) {
	t.Helper()
	nowFn := func() uint64 { return 0 }

	admin := randAddr(t)
	sxlmVault := randAddr(t)
	nativeVault := randAddr(t)

	sxlm := token.New(ledger.New(storage.NewMemDB(), nowFn), events.NewRecorder(), nowFn)
	require.NoError(t, sxlm.Initialize(admin, sxlmVault, 7, "Staked XLM", "sXLM"))

	coin := nativecoin.New()

	e := New(ledger.New(storage.NewMemDB(), nowFn), sxlm, coin, events.NewRecorder(), nowFn)
	require.NoError(t, e.Initialize(admin, sxlmVault, nativeVault, 30))

	return e, sxlm, coin, sxlmVault
}

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return signer.Address()
}

func seedPool(t *testing.T, e *Engine, sxlm *token.Engine, coin *nativecoin.Ledger, sxlmVault, provider crypto.Address, xlmAmount, sxlmAmount *big.Int) {
	t.Helper()
	require.NoError(t, coin.Credit(provider, xlmAmount))
	require.NoError(t, sxlm.Mint(sxlmVault, provider, sxlmAmount))
	_, err := e.AddLiquidity(provider, xlmAmount, sxlmAmount)
	require.NoError(t, err)
}

func TestBootstrapLocksMinLiquidity(t *testing.T) {
	e, sxlm, coin, sxlmVault := newHarness(t)
	provider := randAddr(t)
	seedPool(t, e, sxlm, coin, sxlmVault, provider, big.NewInt(100_0000000), big.NewInt(100_0000000))

	total, err := e.TotalLPSupply()
	require.NoError(t, err)

	locked, err := e.GetLPBalance(crypto.Address{})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(MinLiquidity), locked)

	providerBal, err := e.GetLPBalance(provider)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Sub(total, locked), providerBal)
}

func TestSwapPreservesInvariant(t *testing.T) {
	e, sxlm, coin, sxlmVault := newHarness(t)
	provider := randAddr(t)
	seedPool(t, e, sxlm, coin, sxlmVault, provider, big.NewInt(100_0000000), big.NewInt(100_0000000))

	xlmBefore, sxlmBefore, err := e.GetReserves()
	require.NoError(t, err)
	kBefore := new(big.Int).Mul(xlmBefore, sxlmBefore)

	trader := randAddr(t)
	require.NoError(t, coin.Credit(trader, big.NewInt(10_0000000)))

	out, err := e.SwapXLMToSXLM(trader, big.NewInt(10_0000000), big.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(90_661_090), out)

	xlmAfter, sxlmAfter, err := e.GetReserves()
	require.NoError(t, err)
	kAfter := new(big.Int).Mul(xlmAfter, sxlmAfter)
	require.True(t, kAfter.Cmp(kBefore) >= 0)
}

func TestSwapSlippageRejected(t *testing.T) {
	e, sxlm, coin, sxlmVault := newHarness(t)
	provider := randAddr(t)
	seedPool(t, e, sxlm, coin, sxlmVault, provider, big.NewInt(100_0000000), big.NewInt(100_0000000))

	trader := randAddr(t)
	require.NoError(t, coin.Credit(trader, big.NewInt(10_0000000)))

	_, err := e.SwapXLMToSXLM(trader, big.NewInt(10_0000000), big.NewInt(100_0000000))
	require.ErrorIs(t, err, errSlippageExceeded)
}

func TestRemoveLiquidityProRata(t *testing.T) {
	e, sxlm, coin, sxlmVault := newHarness(t)
	provider := randAddr(t)
	seedPool(t, e, sxlm, coin, sxlmVault, provider, big.NewInt(100_0000000), big.NewInt(100_0000000))

	bal, err := e.GetLPBalance(provider)
	require.NoError(t, err)

	xlmOut, sxlmOut, err := e.RemoveLiquidity(provider, bal)
	require.NoError(t, err)
	require.True(t, xlmOut.Sign() > 0)
	require.True(t, sxlmOut.Sign() > 0)

	remaining, err := e.GetLPBalance(provider)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), remaining)
}

func TestAddLiquidityExcessStaysInPool(t *testing.T) {
	e, sxlm, coin, sxlmVault := newHarness(t)
	provider := randAddr(t)
	seedPool(t, e, sxlm, coin, sxlmVault, provider, big.NewInt(100_0000000), big.NewInt(100_0000000))

	second := randAddr(t)
	require.NoError(t, coin.Credit(second, big.NewInt(50_0000000)))
	require.NoError(t, sxlm.Mint(sxlmVault, second, big.NewInt(100_0000000)))

	minted, err := e.AddLiquidity(second, big.NewInt(50_0000000), big.NewInt(100_0000000))
	require.NoError(t, err)

	xlmRes, sxlmRes, err := e.GetReserves()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(150_0000000), xlmRes)
	require.Equal(t, big.NewInt(200_0000000), sxlmRes)
	require.True(t, minted.Sign() > 0)
}
