package model

import "github.com/shopspring/decimal"

// Recipient is a vehicle registered for subsidized fuel, keyed by its
// normalised license plate.  Quotas are liters; RemainingQuota is decremented
// by every purchase and never goes below zero.
type Recipient struct {
	Plate          string          `json:"plate"`
	Owner          string          `json:"owner"`
	DailyQuota     decimal.Decimal `json:"daily_quota"`
	RemainingQuota decimal.Decimal `json:"remaining_quota"`
	FuelType       string          `json:"fuel_type"`
	VehicleType    string          `json:"vehicle_type"`
	Brand          string          `json:"brand"`
	Color          string          `json:"color"`
	Year           string          `json:"year"`
}
