package rpc

import (
	"encoding/json"

	"xlmstake/crypto"
)

// registerCoinHandlers exposes the native XLM balance sheet directly: a
// read-only balance view and an admin-gated credit faucet standing in for
// the Stellar-side deposit bridge spec.md §2 describes as out of scope for
// this core (the RPC layer is the boundary where an external bridge would
// call in; nothing downstream needs to know the difference).
func registerCoinHandlers(m map[string]handlerFunc) {
	m["coin_balance"] = coinBalance
	m["coin_credit"] = coinCredit
}

type coinBalanceParams struct {
	baseParams
	Address string `json:"address"`
}

func coinBalance(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p coinBalanceParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	addr, err := parseAddress(p.Address)
	if err != nil {
		return nil, err
	}
	return map[string]string{"balance": bigIntResult(s.node.Coin.BalanceOf(addr))}, nil
}

type coinCreditParams struct {
	baseParams
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func coinCredit(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p coinCreditParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if !actor.Equal(s.node.Admin()) {
		return nil, errNotAdmin
	}
	to, err := parseAddress(p.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Coin.Credit(to, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}
