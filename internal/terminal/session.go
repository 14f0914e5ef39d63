// Package terminal drives the pump operator's purchase screen.  Each station
// has one Session that moves through
//
//	idle -> plate-detected -> vehicle-loaded | not-registered
//	     -> amount-entry -> confirm-pending -> submitting -> idle
//
// Sessions live in a Store so several browser tabs, or several server
// instances behind a load balancer, see the same screen.
package terminal

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
)

// State is a step of the purchase screen.
type State string

const (
	Idle           State = "idle"
	PlateDetected  State = "plate-detected"
	VehicleLoaded  State = "vehicle-loaded"
	NotRegistered  State = "not-registered"
	AmountEntry    State = "amount-entry"
	ConfirmPending State = "confirm-pending"
	Submitting     State = "submitting"
)

var (
	// ErrBadState is returned for an action the current state does not allow.
	ErrBadState = errors.New("aksi tidak tersedia pada status ini")
	// ErrBusy is returned when a session kept changing under an update.
	ErrBusy = errors.New("terminal sedang sibuk, coba lagi")

	// errUnchanged lets an update function skip the write.
	errUnchanged = errors.New("unchanged")
)

// Session is what the terminal screen shows.
type Session struct {
	Station   string           `json:"station"`
	State     State            `json:"state"`
	Plate     string           `json:"plate,omitempty"`
	Vehicle   *model.Recipient `json:"vehicle,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Nominal   int64            `json:"nominal"`
	Liters    decimal.Decimal  `json:"liters"`
	OverQuota bool             `json:"over_quota"`
	Message   string           `json:"message,omitempty"`
	LastSale  *model.Sale      `json:"last_sale,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func newSession(station string) Session {
	return Session{Station: strings.ToUpper(station), State: Idle}
}
