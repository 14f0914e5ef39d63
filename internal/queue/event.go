// Package queue defines message payloads exchanged over the message broker
// and the background consumers that process them.
package queue

// Queue names.
const (
	SaleRecordedQueue  = "sale.recorded"
	PlateDetectedQueue = "plate.detected"
)

// SaleRecordedEvent is published after a purchase commits.  It carries
// enough information for downstream consumers to log or report the sale
// without querying the primary database.
type SaleRecordedEvent struct {
	SaleID         string `json:"sale_id"`
	Station        string `json:"station"`
	Pump           string `json:"pump"`
	Plate          string `json:"plate"`
	Owner          string `json:"owner"`
	FuelType       string `json:"fuel_type"`
	Liters         string `json:"liters"`
	Nominal        int64  `json:"nominal"`
	RemainingQuota string `json:"remaining_quota"`
	SoldAt         string `json:"sold_at"`
}

// PlateDetectedEvent is sent by roadside detectors that publish to the
// broker instead of calling the HTTP relay.  "plat" is accepted as an alias
// of "plate".
type PlateDetectedEvent struct {
	Station string `json:"station"`
	Plate   string `json:"plate"`
	Plat    string `json:"plat"`
}

// Value returns whichever plate field is set.
func (e PlateDetectedEvent) Value() string {
	if e.Plate != "" {
		return e.Plate
	}
	return e.Plat
}
