package terminal

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/purchase"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/service"
)

// Relay is the detected-plate source; *relay.Relay implements it.
type Relay interface {
	Station(s string) string
	Latest(ctx context.Context, station string) (string, bool, error)
	Reset(ctx context.Context, station string) error
}

// Vehicles looks up a recipient and the unit price of its fuel type.
type Vehicles interface {
	Quote(ctx context.Context, plate string) (model.Recipient, decimal.Decimal, error)
}

// Seller records a purchase.
type Seller interface {
	Purchase(ctx context.Context, station, plate string, nominal int64) (model.Sale, error)
}

// MsgSaleOK is shown after a successful purchase.
const MsgSaleOK = "Transaksi berhasil"

// Terminal implements the purchase screen actions.
type Terminal struct {
	store    Store
	relay    Relay
	vehicles Vehicles
	seller   Seller
	keypad   purchase.Keypad
}

func New(store Store, relay Relay, vehicles Vehicles, seller Seller, maxNominal int64) *Terminal {
	return &Terminal{
		store:    store,
		relay:    relay,
		vehicles: vehicles,
		seller:   seller,
		keypad:   purchase.Keypad{Max: maxNominal},
	}
}

// State returns the current session without changing it.
func (t *Terminal) State(ctx context.Context, station string) (Session, error) {
	return t.store.Load(ctx, t.relay.Station(station))
}

// Poll moves an idle session forward when the relay holds a plate, then
// loads the vehicle.  In any other state it returns the session unchanged,
// so overlapping polls are harmless.
func (t *Terminal) Poll(ctx context.Context, station string) (Session, error) {
	station = t.relay.Station(station)
	sess, err := t.store.Load(ctx, station)
	if err != nil {
		return Session{}, err
	}
	switch sess.State {
	case Idle:
		plate, ok, err := t.relay.Latest(ctx, station)
		if err != nil || !ok {
			return sess, err
		}
		sess, err = t.store.Update(ctx, station, func(s *Session) error {
			if s.State != Idle {
				return errUnchanged
			}
			*s = newSession(station)
			s.State = PlateDetected
			s.Plate = plate
			return nil
		})
		if err != nil || sess.State != PlateDetected {
			return sess, err
		}
	case PlateDetected:
	default:
		return sess, nil
	}

	plate := sess.Plate
	v, price, qerr := t.vehicles.Quote(ctx, plate)
	return t.store.Update(ctx, station, func(s *Session) error {
		if s.State != PlateDetected || s.Plate != plate {
			return errUnchanged
		}
		switch {
		case qerr == nil:
			s.State = VehicleLoaded
			s.Vehicle = &v
			s.Price = price
			s.Message = ""
		case errors.Is(qerr, service.ErrNotRegistered):
			s.State = NotRegistered
			s.Message = qerr.Error()
		case errors.Is(qerr, repository.ErrPriceNotFound):
			s.State = NotRegistered
			s.Vehicle = &v
			s.Message = qerr.Error()
		default:
			// stay in plate-detected; the next poll retries the lookup
			return qerr
		}
		return nil
	})
}

// Key applies one keypad key to the nominal and recomputes the liters.
func (t *Terminal) Key(ctx context.Context, station, key string) (Session, error) {
	return t.store.Update(ctx, t.relay.Station(station), func(s *Session) error {
		if s.State != VehicleLoaded && s.State != AmountEntry {
			return ErrBadState
		}
		n, err := t.keypad.Press(s.Nominal, key)
		if err != nil {
			return err
		}
		s.State = AmountEntry
		s.Nominal = n
		s.Message = ""
		s.Liters = decimal.Zero
		if n > 0 {
			if l, err := purchase.Liters(n, s.Price); err == nil {
				s.Liters = l
			}
		}
		s.OverQuota = s.Vehicle != nil && purchase.Exceeds(s.Vehicle.RemainingQuota, s.Liters)
		return nil
	})
}

// Confirm asks for confirmation of a nonzero amount.
func (t *Terminal) Confirm(ctx context.Context, station string) (Session, error) {
	return t.store.Update(ctx, t.relay.Station(station), func(s *Session) error {
		if s.State != VehicleLoaded && s.State != AmountEntry {
			return ErrBadState
		}
		if s.Nominal <= 0 {
			return purchase.ErrZeroNominal
		}
		s.State = ConfirmPending
		s.Message = ""
		return nil
	})
}

// Cancel goes back from the confirmation to amount entry.
func (t *Terminal) Cancel(ctx context.Context, station string) (Session, error) {
	return t.store.Update(ctx, t.relay.Station(station), func(s *Session) error {
		if s.State != ConfirmPending {
			return ErrBadState
		}
		s.State = AmountEntry
		s.Message = ""
		return nil
	})
}

// Submit claims the confirmed session, records the purchase and resets the
// screen.  A concurrent second Submit finds the session already submitting
// and fails with ErrBadState.  When the purchase fails the session returns
// to confirm-pending carrying the error message.
func (t *Terminal) Submit(ctx context.Context, station string) (Session, error) {
	station = t.relay.Station(station)
	claimed, err := t.store.Update(ctx, station, func(s *Session) error {
		if s.State != ConfirmPending {
			return ErrBadState
		}
		s.State = Submitting
		s.Message = ""
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	sale, perr := t.seller.Purchase(ctx, station, claimed.Plate, claimed.Nominal)
	if perr != nil {
		sess, err := t.store.Update(ctx, station, func(s *Session) error {
			if s.State != Submitting {
				return errUnchanged
			}
			s.State = ConfirmPending
			s.Message = perr.Error()
			return nil
		})
		if err != nil {
			return Session{}, err
		}
		return sess, perr
	}

	return t.store.Update(ctx, station, func(s *Session) error {
		*s = newSession(station)
		s.LastSale = &sale
		s.Message = MsgSaleOK
		return nil
	})
}

// Reset returns the screen to idle from any state and clears the relay.
func (t *Terminal) Reset(ctx context.Context, station string) (Session, error) {
	station = t.relay.Station(station)
	if err := t.relay.Reset(ctx, station); err != nil {
		return Session{}, err
	}
	return t.store.Update(ctx, station, func(s *Session) error {
		*s = newSession(station)
		return nil
	})
}
