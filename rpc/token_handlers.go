package rpc

import (
	"encoding/json"

	"xlmstake/crypto"
)

func registerTokenHandlers(m map[string]handlerFunc) {
	m["token_totalSupply"] = tokenTotalSupply
	m["token_balance"] = tokenBalance
	m["token_transfer"] = tokenTransfer
	m["token_approve"] = tokenApprove
	m["token_allowance"] = tokenAllowance
	m["token_transferFrom"] = tokenTransferFrom
	m["token_setMinter"] = tokenSetMinter
}

func tokenTotalSupply(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	supply, err := s.node.Token.TotalSupply()
	if err != nil {
		return nil, err
	}
	return map[string]string{"totalSupply": bigIntResult(supply)}, nil
}

type tokenBalanceParams struct {
	baseParams
	Owner string `json:"owner"`
}

func tokenBalance(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p tokenBalanceParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	owner, err := parseAddress(p.Owner)
	if err != nil {
		return nil, err
	}
	return map[string]string{"balance": bigIntResult(s.node.Token.Balance(owner))}, nil
}

type tokenTransferParams struct {
	baseParams
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func tokenTransfer(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p tokenTransferParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	to, err := parseAddress(p.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Token.Transfer(actor, to, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type tokenApproveParams struct {
	baseParams
	Spender          string `json:"spender"`
	Amount           string `json:"amount"`
	ExpirationLedger uint64 `json:"expirationLedger"`
}

func tokenApprove(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p tokenApproveParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	spender, err := parseAddress(p.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Token.Approve(actor, spender, amount, p.ExpirationLedger); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type tokenAllowanceParams struct {
	baseParams
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

func tokenAllowance(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p tokenAllowanceParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	owner, err := parseAddress(p.Owner)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddress(p.Spender)
	if err != nil {
		return nil, err
	}
	return map[string]string{"allowance": bigIntResult(s.node.Token.Allowance(owner, spender))}, nil
}

type tokenTransferFromParams struct {
	baseParams
	Owner  string `json:"owner"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func tokenTransferFrom(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p tokenTransferFromParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	owner, err := parseAddress(p.Owner)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress(p.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Token.TransferFrom(actor, owner, to, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type tokenSetMinterParams struct {
	baseParams
	NewMinter string `json:"newMinter"`
}

func tokenSetMinter(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p tokenSetMinterParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	newMinter, err := parseAddress(p.NewMinter)
	if err != nil {
		return nil, err
	}
	if err := s.node.Token.SetMinter(actor, newMinter); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}
