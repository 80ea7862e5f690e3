package token

import "math/big"

// meta is the singleton receipt-token configuration, grounded on the
// teacher's lending RiskParameters singleton shape (one JSON blob per
// contract instance rather than per-field storage slots).
type meta struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Decimals    uint8    `json:"decimals"`
	Admin       string   `json:"admin"`
	Minter      string   `json:"minter"`
	TotalSupply *big.Int `json:"total_supply"`
	Initialized bool     `json:"initialized"`
}

type allowance struct {
	Amount           *big.Int `json:"amount"`
	ExpirationLedger uint64   `json:"expiration_ledger"`
}
