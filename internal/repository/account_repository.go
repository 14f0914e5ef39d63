package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platif-ai/spbu-pos/internal/model"
	"github.com/platif-ai/spbu-pos/internal/utils"
)

// AccountRepo persists dashboard accounts in the 'users' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,name,email,password_hash,role,is_approved,created_at"

// NewAccount describes an account to insert.  The password is hashed with
// bcrypt at the given cost before it reaches the database.
type NewAccount struct {
	Name     string
	Email    string
	Password string
	Role     string
	Approved bool
}

// Create inserts an account with a fresh UUID and returns it.
func (r *AccountRepo) Create(ctx context.Context, in NewAccount, cost int) (model.Account, error) {
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return model.Account{}, err
	}
	a := model.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
		IsApproved:   in.Approved,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id,name,email,password_hash,role,is_approved,created_at) VALUES (?,?,?,?,?,?,?)",
		a.ID, a.Name, a.Email, a.PasswordHash, a.Role, a.IsApproved, a.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.Account{}, ErrEmailExists
		}
		return model.Account{}, err
	}
	return a, nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanAccount(row)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanAccount(row)
}

// List returns every account in signup order.
func (r *AccountRepo) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM users ORDER BY created_at, email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Approve marks an account as approved so it can log in.
func (r *AccountRepo) Approve(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_approved=1 WHERE id=?", id)
	if err != nil {
		return err
	}
	if err := affected(res); !errors.Is(err, ErrNotFound) {
		return err
	}
	// approving twice changes nothing; only a missing account is an error
	_, err = r.GetByID(ctx, id)
	return err
}

// Delete removes an account; its refresh tokens cascade.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (model.Account, error) {
	var a model.Account
	err := s.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.IsApproved, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// affected maps "0 rows affected" to ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
