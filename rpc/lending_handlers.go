package rpc

import (
	"encoding/json"

	"xlmstake/crypto"
)

func registerLendingHandlers(m map[string]handlerFunc) {
	m["lending_depositCollateral"] = lendingDepositCollateral
	m["lending_withdrawCollateral"] = lendingWithdrawCollateral
	m["lending_borrow"] = lendingBorrow
	m["lending_repay"] = lendingRepay
	m["lending_liquidate"] = lendingLiquidate
	m["lending_updateExchangeRate"] = lendingUpdateExchangeRate
	m["lending_setCollateralFactorBps"] = lendingSetCollateralFactorBps
	m["lending_harvestInterest"] = lendingHarvestInterest
	m["lending_supplyLiquidity"] = lendingSupplyLiquidity
	m["lending_getPosition"] = lendingGetPosition
	m["lending_healthFactor"] = lendingHealthFactor
	m["lending_maxBorrow"] = lendingMaxBorrow
	m["lending_poolBalance"] = lendingPoolBalance
	m["lending_totalCollateral"] = lendingTotalCollateral
	m["lending_totalBorrowed"] = lendingTotalBorrowed
	m["lending_totalAccruedInterest"] = lendingTotalAccruedInterest
	m["lending_exchangeRate"] = lendingExchangeRate
	m["lending_collateralFactor"] = lendingCollateralFactor
	m["lending_liquidationThreshold"] = lendingLiquidationThreshold
	m["lending_borrowRate"] = lendingBorrowRate
}

type lendingAmountParams struct {
	baseParams
	SXLMAmount string `json:"sxlmAmount"`
	XLMAmount  string `json:"xlmAmount"`
}

func lendingDepositCollateral(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.SXLMAmount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Lending.DepositCollateral(actor, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func lendingWithdrawCollateral(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.SXLMAmount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Lending.WithdrawCollateral(actor, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func lendingBorrow(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.XLMAmount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Lending.Borrow(actor, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func lendingRepay(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.XLMAmount)
	if err != nil {
		return nil, err
	}
	repaid, err := s.node.Lending.Repay(actor, amount)
	if err != nil {
		return nil, err
	}
	return map[string]string{"repaid": bigIntResult(repaid)}, nil
}

type lendingLiquidateParams struct {
	baseParams
	Borrower string `json:"borrower"`
}

func lendingLiquidate(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingLiquidateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	borrower, err := parseAddress(p.Borrower)
	if err != nil {
		return nil, err
	}
	repaid, seized, err := s.node.Lending.Liquidate(actor, borrower)
	if err != nil {
		return nil, err
	}
	return map[string]string{"repaid": bigIntResult(repaid), "seized": bigIntResult(seized)}, nil
}

type lendingRateParams struct {
	baseParams
	NewRate string `json:"newRate"`
}

func lendingUpdateExchangeRate(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingRateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	rate, err := parseAmount(p.NewRate)
	if err != nil {
		return nil, err
	}
	if err := s.node.Lending.UpdateExchangeRate(actor, rate); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type lendingBpsParams struct {
	baseParams
	Bps uint32 `json:"bps"`
}

func lendingSetCollateralFactorBps(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingBpsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := s.node.Lending.SetCollateralFactorBps(actor, p.Bps); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func lendingHarvestInterest(s *Server, actor crypto.Address, _ json.RawMessage) (interface{}, error) {
	amount, err := s.node.Lending.HarvestInterest(actor)
	if err != nil {
		return nil, err
	}
	return map[string]string{"harvested": bigIntResult(amount)}, nil
}

func lendingSupplyLiquidity(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingAmountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	amount, err := parseAmount(p.XLMAmount)
	if err != nil {
		return nil, err
	}
	if err := s.node.Lending.SupplyLiquidity(actor, amount); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type lendingUserParams struct {
	baseParams
	User string `json:"user"`
}

func lendingGetPosition(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingUserParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	user, err := parseAddress(p.User)
	if err != nil {
		return nil, err
	}
	pos, err := s.node.Lending.GetPosition(user)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"sxlmCollateral":       bigIntResult(pos.SxlmCollateral),
		"xlmBorrowedPrincipal": bigIntResult(pos.XlmBorrowedPrincipal),
		"borrowIndex":          bigIntResult(pos.BorrowIndex),
		"lastUpdateLedger":     pos.LastUpdateLedger,
	}, nil
}

func lendingHealthFactor(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingUserParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	user, err := parseAddress(p.User)
	if err != nil {
		return nil, err
	}
	hf, err := s.node.Lending.HealthFactor(user)
	if err != nil {
		return nil, err
	}
	return map[string]string{"healthFactor": bigIntResult(hf)}, nil
}

func lendingMaxBorrow(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p lendingUserParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	user, err := parseAddress(p.User)
	if err != nil {
		return nil, err
	}
	max, err := s.node.Lending.MaxBorrow(user)
	if err != nil {
		return nil, err
	}
	return map[string]string{"maxBorrow": bigIntResult(max)}, nil
}

func lendingPoolBalance(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.GetPoolBalance()
	if err != nil {
		return nil, err
	}
	return map[string]string{"poolBalance": bigIntResult(v)}, nil
}

func lendingTotalCollateral(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.TotalCollateral()
	if err != nil {
		return nil, err
	}
	return map[string]string{"totalCollateral": bigIntResult(v)}, nil
}

func lendingTotalBorrowed(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.TotalBorrowed()
	if err != nil {
		return nil, err
	}
	return map[string]string{"totalBorrowed": bigIntResult(v)}, nil
}

func lendingTotalAccruedInterest(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.TotalAccruedInterest()
	if err != nil {
		return nil, err
	}
	return map[string]string{"totalAccruedInterest": bigIntResult(v)}, nil
}

func lendingExchangeRate(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.GetExchangeRate()
	if err != nil {
		return nil, err
	}
	return map[string]string{"exchangeRate": bigIntResult(v)}, nil
}

func lendingCollateralFactor(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.GetCollateralFactor()
	if err != nil {
		return nil, err
	}
	return map[string]uint32{"collateralFactorBps": v}, nil
}

func lendingLiquidationThreshold(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.GetLiquidationThreshold()
	if err != nil {
		return nil, err
	}
	return map[string]uint32{"liquidationThresholdBps": v}, nil
}

func lendingBorrowRate(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.Lending.GetBorrowRate()
	if err != nil {
		return nil, err
	}
	return map[string]uint32{"borrowRateBps": v}, nil
}
