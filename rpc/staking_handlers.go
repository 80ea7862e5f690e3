package rpc

import (
	"encoding/json"

	"xlmstake/crypto"
	"xlmstake/staking"
)

func registerStakingHandlers(m map[string]handlerFunc) {
	m["staking_exchangeRate"] = stakingExchangeRate
	m["staking_deposit"] = stakingDeposit
	m["staking_requestWithdrawal"] = stakingRequestWithdrawal
	m["staking_claimWithdrawal"] = stakingClaimWithdrawal
	m["staking_addRewards"] = stakingAddRewards
	m["staking_applySlashing"] = stakingApplySlashing
	m["staking_recalibrateRate"] = stakingRecalibrateRate
	m["staking_setProtocolFeeBps"] = stakingSetProtocolFeeBps
	m["staking_pause"] = stakingPause
	m["staking_unpause"] = stakingUnpause
	m["staking_totalStaked"] = stakingTotalStaked
	m["staking_liquidityBuffer"] = stakingLiquidityBuffer
	m["staking_treasuryBalance"] = stakingTreasuryBalance
	m["staking_isPaused"] = stakingIsPaused
	m["staking_protocolFeeBps"] = stakingProtocolFeeBps
	m["staking_addValidator"] = stakingAddValidator
	m["staking_listValidators"] = stakingListValidators
}

func stakingExchangeRate(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	rate, err := s.node.Staking.GetExchangeRate()
	if err != nil {
		return nil, err
	}
	return map[string]string{"rate": bigIntResult(rate)}, nil
}

type stakingDepositParams struct {
	baseParams
	XLMAmount string `json:"xlmAmount"`
}

func stakingDeposit(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingDepositParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.XLMAmount)
	if err != nil {
		return nil, err
	}
	minted, err := s.node.Staking.Deposit(actor, amount)
	if err != nil {
		return nil, err
	}
	return map[string]string{"sxlmMinted": bigIntResult(minted)}, nil
}

type stakingRequestWithdrawalParams struct {
	baseParams
	SXLMAmount  string `json:"sxlmAmount"`
	WantInstant bool   `json:"wantInstant"`
}

func stakingRequestWithdrawal(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingRequestWithdrawalParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.SXLMAmount)
	if err != nil {
		return nil, err
	}
	id, instant, xlmOut, err := s.node.Staking.RequestWithdrawal(actor, amount, p.WantInstant)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"withdrawalId": id,
		"isInstant":    instant,
		"xlmOut":       bigIntResult(xlmOut),
	}, nil
}

type stakingClaimWithdrawalParams struct {
	baseParams
	WithdrawalID uint64 `json:"withdrawalId"`
}

func stakingClaimWithdrawal(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingClaimWithdrawalParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	xlmOut, err := s.node.Staking.ClaimWithdrawal(actor, p.WithdrawalID)
	if err != nil {
		return nil, err
	}
	return map[string]string{"xlmOut": bigIntResult(xlmOut)}, nil
}

type stakingAmountParams struct {
	baseParams
	Amount string `json:"amount"`
}

func stakingAddRewards(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Staking.AddRewards(actor, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func stakingApplySlashing(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Staking.ApplySlashing(actor, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func stakingRecalibrateRate(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	rate, err := s.node.Staking.RecalibrateRate()
	if err != nil {
		return nil, err
	}
	return map[string]string{"rate": bigIntResult(rate)}, nil
}

type stakingBpsParams struct {
	baseParams
	Bps uint32 `json:"bps"`
}

func stakingSetProtocolFeeBps(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingBpsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := s.node.Staking.SetProtocolFeeBps(actor, p.Bps); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func stakingPause(s *Server, actor crypto.Address, _ json.RawMessage) (interface{}, error) {
	if err := s.node.Staking.Pause(actor); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func stakingUnpause(s *Server, actor crypto.Address, _ json.RawMessage) (interface{}, error) {
	if err := s.node.Staking.Unpause(actor); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func stakingTotalStaked(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Staking.TotalXLMStaked()
	if err != nil {
		return nil, err
	}
	return map[string]string{"totalXlmStaked": bigIntResult(v)}, nil
}

func stakingLiquidityBuffer(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Staking.LiquidityBuffer()
	if err != nil {
		return nil, err
	}
	return map[string]string{"liquidityBuffer": bigIntResult(v)}, nil
}

func stakingTreasuryBalance(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Staking.TreasuryBalance()
	if err != nil {
		return nil, err
	}
	return map[string]string{"treasuryBalance": bigIntResult(v)}, nil
}

func stakingIsPaused(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Staking.IsPaused()
	if err != nil {
		return nil, err
	}
	return map[string]bool{"isPaused": v}, nil
}

func stakingProtocolFeeBps(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Staking.ProtocolFeeBps()
	if err != nil {
		return nil, err
	}
	return map[string]uint32{"protocolFeeBps": v}, nil
}

type stakingAddValidatorParams struct {
	baseParams
	Address       string `json:"address"`
	Score         uint32 `json:"score"`
	CommissionBps uint32 `json:"commissionBps"`
	Active        bool   `json:"active"`
}

func stakingAddValidator(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p stakingAddValidatorParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	v := staking.Validator{
		Address:       p.Address,
		Score:         p.Score,
		CommissionBps: p.CommissionBps,
		Active:        p.Active,
	}
	if err := s.node.Staking.AddValidator(actor, v); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func stakingListValidators(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	vs, err := s.node.Staking.ListValidators()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"validators": vs}, nil
}
