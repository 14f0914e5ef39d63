package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/platif-ai/spbu-pos/internal/model"
)

// RecipientRepo provides CRUD operations over the subsidized-fuel recipient
// registry.  Plates are stored normalised (upper-case, no spaces); callers
// normalise before calling.
type RecipientRepo struct {
	db *sql.DB
}

func NewRecipientRepo(db *sql.DB) *RecipientRepo { return &RecipientRepo{db: db} }

// DB exposes the underlying handle so services can open a transaction that
// spans several repositories.
func (r *RecipientRepo) DB() *sql.DB { return r.db }

const recipientColumns = "plate,owner,daily_quota,remaining_quota,fuel_type,vehicle_type,brand,color,year"

func scanRecipient(s rowScanner) (model.Recipient, error) {
	var v model.Recipient
	err := s.Scan(&v.Plate, &v.Owner, &v.DailyQuota, &v.RemainingQuota,
		&v.FuelType, &v.VehicleType, &v.Brand, &v.Color, &v.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recipient{}, ErrNotFound
	}
	return v, err
}

// List returns every recipient ordered by plate.
func (r *RecipientRepo) List(ctx context.Context) ([]model.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+recipientColumns+" FROM recipients ORDER BY plate")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Recipient
	for rows.Next() {
		v, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Get fetches one recipient by plate.
func (r *RecipientRepo) Get(ctx context.Context, plate string) (model.Recipient, error) {
	return scanRecipient(r.db.QueryRowContext(ctx,
		"SELECT "+recipientColumns+" FROM recipients WHERE plate=?", plate))
}

// GetForUpdateTx reads a recipient and locks its row until tx ends, so two
// purchases for the same plate are applied one after the other.
func (r *RecipientRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, plate string) (model.Recipient, error) {
	return scanRecipient(tx.QueryRowContext(ctx,
		"SELECT "+recipientColumns+" FROM recipients WHERE plate=? FOR UPDATE", plate))
}

// SetRemainingTx writes the remaining quota inside tx.  The row is already
// locked by GetForUpdateTx, so an unchanged value (an exhausted quota
// clamped to 0.00 again) is not treated as a missing row.
func (r *RecipientRepo) SetRemainingTx(ctx context.Context, tx *sql.Tx, plate string, remaining decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE recipients SET remaining_quota=? WHERE plate=?", remaining.StringFixed(2), plate)
	return err
}

// Create registers a new recipient.  A duplicate plate yields ErrConflict.
func (r *RecipientRepo) Create(ctx context.Context, v model.Recipient) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO recipients ("+recipientColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
		v.Plate, v.Owner, v.DailyQuota.StringFixed(2), v.RemainingQuota.StringFixed(2),
		v.FuelType, v.VehicleType, v.Brand, v.Color, v.Year)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Update overwrites every column except the plate.
func (r *RecipientRepo) Update(ctx context.Context, v model.Recipient) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recipients SET owner=?, daily_quota=?, remaining_quota=?, fuel_type=?,
		 vehicle_type=?, brand=?, color=?, year=? WHERE plate=?`,
		v.Owner, v.DailyQuota.StringFixed(2), v.RemainingQuota.StringFixed(2), v.FuelType,
		v.VehicleType, v.Brand, v.Color, v.Year, v.Plate)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows for an unchanged row too.
		if _, err := r.Get(ctx, v.Plate); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a recipient.
func (r *RecipientRepo) Delete(ctx context.Context, plate string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM recipients WHERE plate=?", plate)
	if err != nil {
		return err
	}
	return affected(res)
}

// ResetQuotas refills every recipient to its daily quota and returns the
// number of rows changed.
func (r *RecipientRepo) ResetQuotas(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE recipients SET remaining_quota=daily_quota")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
