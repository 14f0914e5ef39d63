package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one subsidized-fuel transaction in the append-only sales ledger.
//
// Fields:
//
//	ID       – composite id STATION-PLATE-YYYYMMDD-FUELCODE-SEQ.
//	Station  – station that served the purchase.
//	Pump     – pump whose per-fuel counter produced the sequence.
//	Plate    – recipient plate.
//	FuelType – fuel-type label at the time of sale.
//	Liters   – Nominal divided by the unit price, rounded to 2 decimals.
//	Nominal  – amount paid in rupiah.
//	SoldAt   – UTC timestamp of the sale.
type Sale struct {
	ID       string          `json:"id"`
	Station  string          `json:"station"`
	Pump     string          `json:"pump"`
	Plate    string          `json:"plate"`
	FuelType string          `json:"fuel_type"`
	Liters   decimal.Decimal `json:"liters"`
	Nominal  int64           `json:"nominal"`
	SoldAt   time.Time       `json:"sold_at"`
}
