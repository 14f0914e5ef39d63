package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SalesLog appends every sale.recorded event to <Dir>/sales.log as one
// human-friendly line.
type SalesLog struct {
	Dir string
	mu  sync.Mutex
}

// Handle implements Handler.
func (l *SalesLog) Handle(_ context.Context, body []byte) error {
	var ev SaleRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.SaleID == "" {
		return fmt.Errorf("event without sale_id")
	}
	dir := l.Dir
	if dir == "" {
		dir = "logs"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "sales.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Sale recorded | id=%s | station=%s | pump=%s | plate=%s | owner=%q | fuel=%q | liters=%s | nominal=%d | remaining=%s\n",
		ev.SoldAt, ev.SaleID, ev.Station, ev.Pump, ev.Plate, ev.Owner, ev.FuelType, ev.Liters, ev.Nominal, ev.RemainingQuota)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// PlatePoster stores a detector reading; *relay.Relay implements it.
type PlatePoster interface {
	Post(ctx context.Context, station, raw string) (string, error)
}

// PlateIngest returns a Handler that feeds plate.detected events into the
// relay.  Invalid plates are rejected like any other bad message.
func PlateIngest(relay PlatePoster) Handler {
	return func(ctx context.Context, body []byte) error {
		var ev PlateDetectedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if _, err := relay.Post(ctx, ev.Station, ev.Value()); err != nil {
			return fmt.Errorf("plate %q: %w", ev.Value(), err)
		}
		return nil
	}
}
