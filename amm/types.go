package amm

import "math/big"

// MinLiquidity is permanently locked out of the LP supply on bootstrap to
// make the share price expensive to manipulate via a dust first deposit.
const MinLiquidity = 1000

type singleton struct {
	Admin         string   `json:"admin"`
	SxlmVault     string   `json:"sxlm_vault"`
	NativeVault   string   `json:"native_vault"`
	FeeBps        uint32   `json:"fee_bps"`
	ReserveXLM    *big.Int `json:"reserve_xlm"`
	ReserveSXLM   *big.Int `json:"reserve_sxlm"`
	TotalLPSupply *big.Int `json:"total_lp_supply"`
	Initialized   bool     `json:"initialized"`
}
