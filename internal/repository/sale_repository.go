package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
)

// SaleRepo appends to and reads from the sales ledger.  Rows are never
// updated or deleted.
type SaleRepo struct {
	db *sql.DB
}

func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

// NextSequenceTx increments the (pump, fuelType) counter and returns the new
// value.  The upsert locks the counter row until tx ends, so concurrent
// purchases on the same pump and fuel type get distinct numbers.
func (r *SaleRepo) NextSequenceTx(ctx context.Context, tx *sql.Tx, pump, fuelType string) (uint64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sale_sequences (pump, fuel_type, seq) VALUES (?, ?, 1)
		 ON DUPLICATE KEY UPDATE seq = seq + 1`, pump, fuelType); err != nil {
		return 0, err
	}
	var seq uint64
	err := tx.QueryRowContext(ctx,
		"SELECT seq FROM sale_sequences WHERE pump=? AND fuel_type=?", pump, fuelType).Scan(&seq)
	return seq, err
}

// InsertTx appends a sale inside tx.  A duplicate id yields ErrConflict.
func (r *SaleRepo) InsertTx(ctx context.Context, tx *sql.Tx, s model.Sale) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sales (id, station, pump, plate, fuel_type, liters, nominal, sold_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Station, s.Pump, s.Plate, s.FuelType, s.Liters.StringFixed(2), s.Nominal, s.SoldAt)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// List returns the ledger newest first.
func (r *SaleRepo) List(ctx context.Context) ([]model.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, station, pump, plate, fuel_type, liters, nominal, sold_at
		 FROM sales ORDER BY sold_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Sale
	for rows.Next() {
		var s model.Sale
		if err := rows.Scan(&s.ID, &s.Station, &s.Pump, &s.Plate, &s.FuelType, &s.Liters, &s.Nominal, &s.SoldAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DailyTotal aggregates the sales of one calendar day (UTC).
type DailyTotal struct {
	Date         string          `json:"date"`
	Transactions int64           `json:"transactions"`
	Liters       decimal.Decimal `json:"liters"`
	Nominal      int64           `json:"nominal"`
}

// DailyTotals sums sales per day from since (inclusive), oldest first.
func (r *SaleRepo) DailyTotals(ctx context.Context, since time.Time) ([]DailyTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DATE_FORMAT(sold_at, '%Y-%m-%d') AS d, COUNT(*), COALESCE(SUM(liters), 0), COALESCE(SUM(nominal), 0)
		 FROM sales WHERE sold_at >= ? GROUP BY d ORDER BY d`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Date, &t.Transactions, &t.Liters, &t.Nominal); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
