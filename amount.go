package seimart

import (
	"fmt"
	"math/big"

	"github.com/seimart/seimart/schema"
	"github.com/shopspring/decimal"
)

// ParseNative converts a decimal amount string into chain base units without
// ever touching floating point. Amounts with more fractional digits than the
// token carries are rejected rather than rounded.
func ParseNative(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadAmount, amount)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", ErrBadAmount, amount)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s exceeds %d decimals", ErrBadAmount, amount, decimals)
	}
	return shifted.BigInt(), nil
}

// FormatNative renders base units as a decimal token amount.
func FormatNative(v *big.Int, decimals int) string {
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// formatBalance is used in user-facing balance messages; native amounts are
// small-denomination, so two decimal places would hide real differences.
func formatBalance(v *big.Int) string {
	return decimal.NewFromBigInt(v, -schema.NativeDecimals).StringFixed(6)
}
