package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"

	"xlmstake/crypto"
)

// decodeParams unmarshals raw into dst, tolerating an empty payload (the
// zero value of dst is used) since some methods (views) take no arguments
// beyond the shared caller envelope.
func decodeParams(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// parseAmount parses a base-unit integer encoded as a JSON string, the
// convention every method in this package uses for *big.Int fields so large
// values never lose precision the way a JSON number would.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func parseAddress(s string) (crypto.Address, error) {
	if s == "" {
		return crypto.Address{}, fmt.Errorf("address is required")
	}
	return crypto.DecodeAddress(s)
}

// bigIntResult renders a *big.Int as its decimal string so JSON encoding
// never silently truncates a value exceeding float64 precision.
func bigIntResult(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
