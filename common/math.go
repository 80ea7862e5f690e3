package common

import "math/big"

// RatePrecision is the fixed-point scale for exchange rates and interest
// indices across xlmstake, matching spec.md's RATE_PRECISION. Basis points
// (BpsScale) are used for fee and threshold parameters.
const (
	RatePrecision = 10_000_000 // 1e7
	BpsScale      = 10_000     // 1e4
)

var (
	ratePrecision = big.NewInt(RatePrecision)
	bpsScale      = big.NewInt(BpsScale)
)

// MulDiv computes floor(a*b/d) on arbitrary-precision integers. Every
// monetary computation in xlmstake goes through this helper rather than
// native division so rounding direction is always the conservative one:
// the protocol, never the user, keeps the remainder.
func MulDiv(a, b, d *big.Int) *big.Int {
	if a == nil || b == nil || d == nil || d.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(a, b)
	out.Quo(out, d)
	return out
}

// ScaleByRate computes floor(amount*rate/RatePrecision).
func ScaleByRate(amount, rate *big.Int) *big.Int {
	return MulDiv(amount, rate, ratePrecision)
}

// UnscaleByRate computes floor(amount*RatePrecision/rate), the inverse of
// ScaleByRate. Returns zero if rate is zero or negative.
func UnscaleByRate(amount, rate *big.Int) *big.Int {
	if rate == nil || rate.Sign() <= 0 {
		return big.NewInt(0)
	}
	return MulDiv(amount, ratePrecision, rate)
}

// BpsOf computes floor(amount*bps/BpsScale).
func BpsOf(amount *big.Int, bps uint32) *big.Int {
	if amount == nil {
		return big.NewInt(0)
	}
	return MulDiv(amount, big.NewInt(int64(bps)), bpsScale)
}

// Isqrt returns floor(sqrt(n)) for n >= 0, using big.Int's Newton-iteration
// Sqrt. Used by the AMM core to mint the bootstrap LP supply as
// sqrt(xlm_amount * asset_amount).
func Isqrt(n *big.Int) *big.Int {
	if n == nil || n.Sign() <= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Sqrt(n)
}

// Min returns the lesser of two big.Ints.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// IsPositive reports whether n is non-nil and strictly positive.
func IsPositive(n *big.Int) bool {
	return n != nil && n.Sign() > 0
}

// IsNonNegative reports whether n is non-nil and >= 0.
func IsNonNegative(n *big.Int) bool {
	return n != nil && n.Sign() >= 0
}
