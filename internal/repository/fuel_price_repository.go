package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
)

// FuelPriceRepo reads and updates the fuel_prices table.
type FuelPriceRepo struct {
	db *sql.DB
}

func NewFuelPriceRepo(db *sql.DB) *FuelPriceRepo { return &FuelPriceRepo{db: db} }

// List returns all prices ordered by fuel type.
func (r *FuelPriceRepo) List(ctx context.Context) ([]model.FuelPrice, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT fuel_type, price, updated_at FROM fuel_prices ORDER BY fuel_type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FuelPrice
	for rows.Next() {
		var p model.FuelPrice
		if err := rows.Scan(&p.FuelType, &p.Price, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Price returns the unit price of fuelType or ErrPriceNotFound.
func (r *FuelPriceRepo) Price(ctx context.Context, fuelType string) (decimal.Decimal, error) {
	return scanPrice(r.db.QueryRowContext(ctx, "SELECT price FROM fuel_prices WHERE fuel_type=?", fuelType))
}

// PriceTx is Price inside a transaction.
func (r *FuelPriceRepo) PriceTx(ctx context.Context, tx *sql.Tx, fuelType string) (decimal.Decimal, error) {
	return scanPrice(tx.QueryRowContext(ctx, "SELECT price FROM fuel_prices WHERE fuel_type=?", fuelType))
}

func scanPrice(row *sql.Row) (decimal.Decimal, error) {
	var p decimal.Decimal
	err := row.Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrPriceNotFound
	}
	return p, err
}

// Upsert sets the unit price of a fuel type, creating the row if needed.
func (r *FuelPriceRepo) Upsert(ctx context.Context, fuelType string, price decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fuel_prices (fuel_type, price) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE price = VALUES(price)`,
		fuelType, price.StringFixed(2))
	return err
}
