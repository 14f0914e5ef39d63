package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FuelPrice maps a fuel-type label (e.g. "Pertalite") to its unit price in
// rupiah per liter.
type FuelPrice struct {
	FuelType  string          `json:"fuel_type"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}
