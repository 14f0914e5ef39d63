package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/purchase"
	q "github.com/platif-ai/spbu-pos/internal/queue"
	"github.com/platif-ai/spbu-pos/internal/repository"
)

// SaleEvents receives committed sales.
type SaleEvents interface {
	PublishSaleRecorded(ctx context.Context, event q.SaleRecordedEvent) error
}

// RelayResetter clears a station's detected plate.
type RelayResetter interface {
	Reset(ctx context.Context, station string) error
}

// PurchaseOptions tune PurchaseService.
type PurchaseOptions struct {
	Pump         string // sequence counters are kept per pump and fuel type
	QuotaEnforce bool   // reject instead of clamping when liters exceed the quota
}

// PurchaseService records subsidized-fuel sales.
type PurchaseService struct {
	recipients *repository.RecipientRepo
	prices     *repository.FuelPriceRepo
	sales      *repository.SaleRepo
	events     SaleEvents
	relay      RelayResetter
	opts       PurchaseOptions
	now        func() time.Time
}

// NewPurchaseService wires the repositories together.  events and relay may
// be nil.
func NewPurchaseService(recipients *repository.RecipientRepo, prices *repository.FuelPriceRepo,
	sales *repository.SaleRepo, events SaleEvents, relay RelayResetter, opts PurchaseOptions) *PurchaseService {
	s := &PurchaseService{
		recipients: recipients,
		prices:     prices,
		sales:      sales,
		relay:      relay,
		opts:       opts,
		now:        time.Now,
	}
	// A typed nil *Publisher must not end up as a non-nil interface.
	if p, ok := events.(*Publisher); !ok || p != nil {
		s.events = events
	}
	return s
}

// Quote returns the recipient registered for plate and the unit price of
// its fuel type.  The recipient is returned alongside ErrPriceNotFound so
// callers can still show the vehicle.
func (s *PurchaseService) Quote(ctx context.Context, plate string) (model.Recipient, decimal.Decimal, error) {
	plate = purchase.NormalizePlate(plate)
	if plate == "" {
		return model.Recipient{}, decimal.Zero, purchase.ErrPlateEmpty
	}
	v, err := s.recipients.Get(ctx, plate)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Recipient{}, decimal.Zero, ErrNotRegistered
	}
	if err != nil {
		return model.Recipient{}, decimal.Zero, err
	}
	price, err := s.prices.Price(ctx, v.FuelType)
	if err != nil {
		return v, decimal.Zero, err
	}
	return v, price, nil
}

// Purchase sells nominal rupiah of fuel to plate at station.  The quota
// decrement and the ledger append happen in one transaction with the
// recipient row locked; any failure leaves both untouched.
func (s *PurchaseService) Purchase(ctx context.Context, station, plate string, nominal int64) (model.Sale, error) {
	plate = purchase.NormalizePlate(plate)
	if plate == "" {
		return model.Sale{}, purchase.ErrPlateEmpty
	}
	if nominal <= 0 {
		return model.Sale{}, purchase.ErrZeroNominal
	}

	tx, err := s.recipients.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Sale{}, fmt.Errorf("begin purchase: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	v, err := s.recipients.GetForUpdateTx(ctx, tx, plate)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Sale{}, ErrNotRegistered
	}
	if err != nil {
		return model.Sale{}, fmt.Errorf("lock recipient: %w", err)
	}
	price, err := s.prices.PriceTx(ctx, tx, v.FuelType)
	if err != nil {
		return model.Sale{}, err
	}
	liters, err := purchase.Liters(nominal, price)
	if err != nil {
		return model.Sale{}, err
	}
	if s.opts.QuotaEnforce && purchase.Exceeds(v.RemainingQuota, liters) {
		return model.Sale{}, repository.ErrQuotaExceeded
	}
	seq, err := s.sales.NextSequenceTx(ctx, tx, s.opts.Pump, v.FuelType)
	if err != nil {
		return model.Sale{}, fmt.Errorf("next sequence: %w", err)
	}

	soldAt := s.now().UTC().Truncate(time.Second)
	sale := model.Sale{
		ID:       purchase.SaleID(station, v.Plate, v.FuelType, soldAt, seq),
		Station:  station,
		Pump:     s.opts.Pump,
		Plate:    v.Plate,
		FuelType: v.FuelType,
		Liters:   liters,
		Nominal:  nominal,
		SoldAt:   soldAt,
	}
	if err := s.sales.InsertTx(ctx, tx, sale); err != nil {
		return model.Sale{}, fmt.Errorf("insert sale: %w", err)
	}
	remaining := purchase.DeductQuota(v.RemainingQuota, liters)
	if err := s.recipients.SetRemainingTx(ctx, tx, v.Plate, remaining); err != nil {
		return model.Sale{}, fmt.Errorf("update quota: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Sale{}, fmt.Errorf("commit purchase: %w", err)
	}
	committed = true

	slog.Info("sale recorded", "id", sale.ID, "plate", sale.Plate, "liters", sale.Liters.StringFixed(2), "nominal", sale.Nominal)
	if s.relay != nil {
		if err := s.relay.Reset(ctx, station); err != nil {
			slog.Warn("relay reset after sale failed", "station", station, "error", err)
		}
	}
	if s.events != nil {
		ev := q.SaleRecordedEvent{
			SaleID:         sale.ID,
			Station:        sale.Station,
			Pump:           sale.Pump,
			Plate:          sale.Plate,
			Owner:          v.Owner,
			FuelType:       sale.FuelType,
			Liters:         sale.Liters.StringFixed(2),
			Nominal:        sale.Nominal,
			RemainingQuota: remaining.StringFixed(2),
			SoldAt:         sale.SoldAt.Format(time.RFC3339),
		}
		if err := s.events.PublishSaleRecorded(ctx, ev); err != nil {
			slog.Warn("publish sale.recorded failed", "id", sale.ID, "error", err)
		}
	}
	return sale, nil
}
