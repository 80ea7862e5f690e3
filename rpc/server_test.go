package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"xlmstake/config"
	"xlmstake/crypto"
	"xlmstake/node"
	"xlmstake/storage"
)

func randAddr(t *testing.T) crypto.Address {
	t.Helper()
	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)
	return signer.Address()
}

func newTestServer(t *testing.T) (*httptest.Server, *node.Node) {
	t.Helper()
	v := node.Vaults{
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
	n, err := node.New(storage.NewMemDB(), cfg.ChainID, cfg, v)
	require.NoError(t, err)

	srv := NewServer(n, nil)
	return httptest.NewServer(srv), n
}

type callResult struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func doCall(t *testing.T, ts *httptest.Server, method string, params interface{}) callResult {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out callResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServeHTTPRejectsNonPost(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	out := doCall(t, ts, "staking_doesNotExist", nil)
	require.NotNil(t, out.Error)
	require.Equal(t, codeMethodNotFound, out.Error.Code)
}

func TestCoinCreditRequiresAdmin(t *testing.T) {
	ts, n := newTestServer(t)
	defer ts.Close()

	stranger := randAddr(t)
	out := doCall(t, ts, "coin_credit", map[string]string{
		"caller": stranger.String(),
		"to":     stranger.String(),
		"amount": "1000",
	})
	require.NotNil(t, out.Error)
	require.Equal(t, codeEngineError, out.Error.Code)

	out = doCall(t, ts, "coin_credit", map[string]string{
		"caller": n.Admin().String(),
		"to":     stranger.String(),
		"amount": "1000",
	})
	require.Nil(t, out.Error)

	bal := n.Coin.BalanceOf(stranger)
	require.Equal(t, big.NewInt(1000), bal)
}

func TestStakingDepositRoundTripThroughRPC(t *testing.T) {
	ts, n := newTestServer(t)
	defer ts.Close()

	alice := randAddr(t)
	require.NoError(t, n.Coin.Credit(alice, big.NewInt(100_0000000)))

	out := doCall(t, ts, "staking_deposit", map[string]string{
		"caller":    alice.String(),
		"xlmAmount": "100000000",
	})
	require.Nil(t, out.Error)

	var result struct {
		SxlmMinted string `json:"sxlmMinted"`
	}
	require.NoError(t, json.Unmarshal(out.Result, &result))
	require.Equal(t, "100000000", result.SxlmMinted)

	balOut := doCall(t, ts, "token_balance", map[string]string{"owner": alice.String()})
	require.Nil(t, balOut.Error)
	var balResult struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(balOut.Result, &balResult))
	require.Equal(t, "100000000", balResult.Balance)
}

func TestIdempotentRequestIDReturnsCachedResult(t *testing.T) {
	ts, n := newTestServer(t)
	defer ts.Close()

	alice := randAddr(t)
	require.NoError(t, n.Coin.Credit(alice, big.NewInt(500_0000000)))

	params := map[string]string{
		"caller":    alice.String(),
		"xlmAmount": "50000000",
		"requestId": "fixed-request-id",
	}
	first := doCall(t, ts, "staking_deposit", params)
	require.Nil(t, first.Error)

	second := doCall(t, ts, "staking_deposit", params)
	require.Nil(t, second.Error)
	require.JSONEq(t, string(first.Result), string(second.Result))

	staked, err := n.Staking.TotalXLMStaked()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(50000000), staked)
}

func TestCallerMetadataRejectsStaleExpiry(t *testing.T) {
	ts, n := newTestServer(t)
	defer ts.Close()

	alice := randAddr(t)
	require.NoError(t, n.Coin.Credit(alice, big.NewInt(1_0000000)))

	out := doCall(t, ts, "staking_deposit", map[string]interface{}{
		"caller":    alice.String(),
		"xlmAmount": "1000000",
		"meta": map[string]interface{}{
			"nonce":     1,
			"expiresAt": 1,
		},
	})
	require.NotNil(t, out.Error)
	require.Equal(t, codeInvalidParams, out.Error.Code)
}

func TestInvalidCallerAddressRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	out := doCall(t, ts, "staking_pause", map[string]string{"caller": "not-a-valid-strkey"})
	require.NotNil(t, out.Error)
	require.Equal(t, codeInvalidParams, out.Error.Code)
}

func TestAmmReservesViewNeedsNoCaller(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	out := doCall(t, ts, "amm_getReserves", nil)
	require.Nil(t, out.Error)
	var result struct {
		ReserveXlm  string `json:"reserveXlm"`
		ReserveSxlm string `json:"reserveSxlm"`
	}
	require.NoError(t, json.Unmarshal(out.Result, &result))
	require.Equal(t, "0", result.ReserveXlm)
	require.Equal(t, "0", result.ReserveSxlm)
}

func TestSplitMethod(t *testing.T) {
	module, action := splitMethod("staking_deposit")
	require.Equal(t, "staking", module)
	require.Equal(t, "deposit", action)

	module, action = splitMethod("noModule")
	require.Equal(t, "noModule", module)
	require.Equal(t, "", action)
}
