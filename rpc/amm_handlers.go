package rpc

import (
	"encoding/json"

	"xlmstake/crypto"
)

func registerAMMHandlers(m map[string]handlerFunc) {
	m["amm_addLiquidity"] = ammAddLiquidity
	m["amm_removeLiquidity"] = ammRemoveLiquidity
	m["amm_swapXlmToSxlm"] = ammSwapXlmToSxlm
	m["amm_swapSxlmToXlm"] = ammSwapSxlmToXlm
	m["amm_setFeeBps"] = ammSetFeeBps
	m["amm_getReserves"] = ammGetReserves
	m["amm_getLpBalance"] = ammGetLPBalance
	m["amm_totalLpSupply"] = ammTotalLPSupply
	m["amm_getPrice"] = ammGetPrice
	m["amm_getFeeBps"] = ammGetFeeBps
}

type ammAddLiquidityParams struct {
	baseParams
	XLMAmount  string `json:"xlmAmount"`
	SXLMAmount string `json:"sxlmAmount"`
}

func ammAddLiquidity(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p ammAddLiquidityParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	xlmAmount, err := parseAmount(p.XLMAmount)
	if err != nil {
		return nil, err
	}
	sxlmAmount, err := parseAmount(p.SXLMAmount)
	if err != nil {
		return nil, err
	}
	minted, err := s.node.AMM.AddLiquidity(actor, xlmAmount, sxlmAmount)
	if err != nil {
		return nil, err
	}
	return map[string]string{"lpMinted": bigIntResult(minted)}, nil
}

type ammRemoveLiquidityParams struct {
	baseParams
	LPAmount string `json:"lpAmount"`
}

func ammRemoveLiquidity(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p ammRemoveLiquidityParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	lpAmount, err := parseAmount(p.LPAmount)
	if err != nil {
		return nil, err
	}
	xlmOut, sxlmOut, err := s.node.AMM.RemoveLiquidity(actor, lpAmount)
	if err != nil {
		return nil, err
	}
	return map[string]string{"xlmOut": bigIntResult(xlmOut), "sxlmOut": bigIntResult(sxlmOut)}, nil
}

type ammSwapParams struct {
	baseParams
	AmountIn string `json:"amountIn"`
	MinOut   string `json:"minOut"`
}

func ammSwapXlmToSxlm(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p ammSwapParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	in, err := parseAmount(p.AmountIn)
	if err != nil {
		return nil, err
	}
	minOut, err := parseAmount(p.MinOut)
	if err != nil {
		return nil, err
	}
	out, err := s.node.AMM.SwapXLMToSXLM(actor, in, minOut)
	if err != nil {
		return nil, err
	}
	return map[string]string{"sxlmOut": bigIntResult(out)}, nil
}

func ammSwapSxlmToXlm(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p ammSwapParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	in, err := parseAmount(p.AmountIn)
	if err != nil {
		return nil, err
	}
	minOut, err := parseAmount(p.MinOut)
	if err != nil {
		return nil, err
	}
	out, err := s.node.AMM.SwapSXLMToXLM(actor, in, minOut)
	if err != nil {
		return nil, err
	}
	return map[string]string{"xlmOut": bigIntResult(out)}, nil
}

type ammBpsParams struct {
	baseParams
	Bps uint32 `json:"bps"`
}

func ammSetFeeBps(s *Server, actor crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p ammBpsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := s.node.AMM.SetFeeBps(actor, p.Bps); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func ammGetReserves(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	xlm, sxlm, err := s.node.AMM.GetReserves()
	if err != nil {
		return nil, err
	}
	return map[string]string{"reserveXlm": bigIntResult(xlm), "reserveSxlm": bigIntResult(sxlm)}, nil
}

type ammUserParams struct {
	baseParams
	User string `json:"user"`
}

func ammGetLPBalance(s *Server, _ crypto.Address, raw json.RawMessage) (interface{}, error) {
	var p ammUserParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	user, err := parseAddress(p.User)
	if err != nil {
		return nil, err
	}
	bal, err := s.node.AMM.GetLPBalance(user)
	if err != nil {
		return nil, err
	}
	return map[string]string{"lpBalance": bigIntResult(bal)}, nil
}

func ammTotalLPSupply(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.AMM.TotalLPSupply()
	if err != nil {
		return nil, err
	}
	return map[string]string{"totalLpSupply": bigIntResult(v)}, nil
}

func ammGetPrice(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.AMM.GetPrice()
	if err != nil {
		return nil, err
	}
	return map[string]string{"price": bigIntResult(v)}, nil
}

func ammGetFeeBps(s *Server, _ crypto.Address, _ json.RawMessage) (interface{}, error) {
	v, err := s.node.AMM.GetFeeBps()
	if err != nil {
		return nil, err
	}
	return map[string]uint32{"feeBps": v}, nil
}
