package relay

import (
	"context"
	"strings"

	"github.com/platif-ai/spbu-pos/internal/purchase"
)

// Relay validates detector readings before they reach the Store and picks
// the default station when a caller does not name one.
type Relay struct {
	store          Store
	defaultStation string
}

func New(store Store, defaultStation string) *Relay {
	return &Relay{store: store, defaultStation: strings.ToUpper(defaultStation)}
}

// Station returns the station key to use for s.
func (r *Relay) Station(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return r.defaultStation
	}
	return s
}

// Post parses raw as a license plate and stores its normalised form.  The
// returned error wraps one of the purchase.ErrPlate* values when the plate
// is rejected.
func (r *Relay) Post(ctx context.Context, station, raw string) (string, error) {
	p, err := purchase.ParsePlate(raw)
	if err != nil {
		return "", err
	}
	plate := p.String()
	if err := r.store.Set(ctx, r.Station(station), plate); err != nil {
		return "", err
	}
	return plate, nil
}

func (r *Relay) Latest(ctx context.Context, station string) (string, bool, error) {
	return r.store.Get(ctx, r.Station(station))
}

func (r *Relay) Reset(ctx context.Context, station string) error {
	return r.store.Clear(ctx, r.Station(station))
}
