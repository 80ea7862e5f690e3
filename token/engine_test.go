package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/crypto"
	"xlmstake/events"
	"xlmstake/ledger"
	"xlmstake/storage"
)

func newTestEngine(t *testing.T) (*Engine, crypto.Address, crypto.Address) {
	t.Helper()
	db := storage.NewMemDB()
	var seq uint64
	store := ledger.New(db, func() uint64 { return seq })
	e := New(store, events.NewRecorder(), func() uint64 { return seq })

	admin := randAddr(t)
	minter := randAddr(t)
	require.NoError(t, e.Initialize(admin, minter, 7, "Staked XLM", "sXLM"))
	return e, admin, minter
}

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	s, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return s.Address()
}

func TestTokenMintBurnInvariant(t *testing.T) {
	e, _, minter := newTestEngine(t)
	alice := randAddr(t)

	require.NoError(t, e.Mint(minter, alice, big.NewInt(1000)))
	supply, err := e.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1000), supply)
	require.Equal(t, big.NewInt(1000), e.Balance(alice))

	require.NoError(t, e.Burn(minter, alice, big.NewInt(400)))
	supply, _ = e.TotalSupply()
	require.Equal(t, big.NewInt(600), supply)
	require.Equal(t, big.NewInt(600), e.Balance(alice))
}

func TestTokenMintRequiresMinter(t *testing.T) {
	e, admin, _ := newTestEngine(t)
	alice := randAddr(t)
	err := e.Mint(admin, alice, big.NewInt(10))
	require.ErrorIs(t, err, errNotAuthorized)
}

func TestTokenTransferAndAllowance(t *testing.T) {
	e, _, minter := newTestEngine(t)
	alice := randAddr(t)
	bob := randAddr(t)
	carol := randAddr(t)

	require.NoError(t, e.Mint(minter, alice, big.NewInt(1000)))
	require.NoError(t, e.Transfer(alice, bob, big.NewInt(300)))
	require.Equal(t, big.NewInt(700), e.Balance(alice))
	require.Equal(t, big.NewInt(300), e.Balance(bob))

	require.NoError(t, e.Approve(alice, carol, big.NewInt(200), 1000))
	require.Equal(t, big.NewInt(200), e.Allowance(alice, carol))

	require.NoError(t, e.TransferFrom(carol, alice, bob, big.NewInt(150)))
	require.Equal(t, big.NewInt(50), e.Allowance(alice, carol))
	require.Equal(t, big.NewInt(450), e.Balance(bob))

	err := e.TransferFrom(carol, alice, bob, big.NewInt(100))
	require.ErrorIs(t, err, errInsufficientAllowance)
}

func TestTokenInsufficientBalance(t *testing.T) {
	e, _, minter := newTestEngine(t)
	alice := randAddr(t)
	bob := randAddr(t)
	require.NoError(t, e.Mint(minter, alice, big.NewInt(10)))
	err := e.Transfer(alice, bob, big.NewInt(11))
	require.ErrorIs(t, err, errInsufficientBalance)
}
