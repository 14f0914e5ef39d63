package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	qInsertRefresh = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)`
	qFindRefresh   = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1`
	qRevokeRefresh = `UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE revoked_at IS NULL AND `
	qPurgeRefresh  = `DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked_at < ?`
)

// TokenRepo stores refresh tokens by their SHA-256 hash; the raw token
// never reaches the database.
type TokenRepo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db, now: time.Now} }

func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	if _, err := r.DB.ExecContext(ctx, qInsertRefresh, userID, tokenHash, exp.UTC()); err != nil {
		return fmt.Errorf("store refresh: %w", err)
	}
	return nil
}

// ValidateRefresh returns the owner of a live token.  Unknown, revoked and
// expired tokens all yield ErrNotFound so callers cannot tell them apart.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var (
		owner   string
		exp     time.Time
		revoked sql.NullTime
	)
	switch err := r.DB.QueryRowContext(ctx, qFindRefresh, tokenHash).Scan(&owner, &exp, &revoked); {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("find refresh: %w", err)
	}
	if revoked.Valid || !r.now().UTC().Before(exp) {
		return "", ErrNotFound
	}
	return owner, nil
}

// RevokeByHash revokes one token; revoking twice is not an error.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.revoke(ctx, "token_hash=?", tokenHash)
}

// RevokeAllForUser signs an account out of every device.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.revoke(ctx, "user_id=?", userID)
}

func (r *TokenRepo) revoke(ctx context.Context, where string, arg string) error {
	if _, err := r.DB.ExecContext(ctx, qRevokeRefresh+where, arg); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

// PurgeExpired deletes tokens that expired or were revoked before cutoff
// and reports how many rows went away.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	res, err := r.DB.ExecContext(ctx, qPurgeRefresh, cutoff, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge refresh: %w", err)
	}
	return res.RowsAffected()
}
