package purchase

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrZeroNominal is the validation error for a purchase without an amount.
	ErrZeroNominal = errors.New("nominal harus lebih dari 0")
	// ErrInvalidPrice is returned when a fuel price is zero or negative.
	ErrInvalidPrice = errors.New("harga BBM tidak valid")
)

// Liters converts a nominal amount in rupiah to liters at the given unit
// price, rounded half away from zero to 2 decimals.
func Liters(nominal int64, price decimal.Decimal) (decimal.Decimal, error) {
	if nominal <= 0 {
		return decimal.Zero, ErrZeroNominal
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	return decimal.NewFromInt(nominal).Div(price).Round(2), nil
}

// DeductQuota subtracts liters from remaining and clamps the result at zero.
func DeductQuota(remaining, liters decimal.Decimal) decimal.Decimal {
	left := remaining.Sub(liters)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

// Exceeds reports whether liters is more than the remaining quota.
func Exceeds(remaining, liters decimal.Decimal) bool {
	return liters.GreaterThan(remaining)
}
