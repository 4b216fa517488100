package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

// TokenRepo persists and validates refresh tokens. One row is one
// device login session for a user; only the SHA-256 hash of the raw
// token is stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row together with the
// device fingerprint captured at login.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash, deviceInfo string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, device_info, expires_at) VALUES (?,?,?,?)",
		userID, tokenHash, deviceInfo, exp)
	return err
}

// ValidateRefresh returns the owning user ID if a non-revoked,
// non-expired token exists, and stamps last_used_at so the devices
// listing reflects recent activity.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	_, _ = r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET last_used_at=NOW() WHERE token_hash=?", tokenHash)
	return userID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeByID revokes a single device session, verifying that it
// belongs to the given user. Returns sql.ErrNoRows when the row does
// not exist or is owned by someone else.
func (r *TokenRepo) RevokeByID(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE id=? AND user_id=? AND revoked_at IS NULL",
		id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// ListActiveForUser returns the user's live device sessions, newest
// first, for the devices listing endpoint.
func (r *TokenRepo) ListActiveForUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, device_info, expires_at, last_used_at, created_at
		 FROM refresh_tokens
		 WHERE user_id=? AND revoked_at IS NULL AND expires_at > NOW()
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RefreshToken, 0)
	for rows.Next() {
		var t model.RefreshToken
		var lastUsed sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.DeviceInfo, &t.ExpiresAt, &lastUsed, &t.CreatedAt); err != nil {
			return nil, err
		}
		if lastUsed.Valid {
			lu := lastUsed.Time
			t.LastUsedAt = &lu
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteExpired removes refresh tokens that are expired or revoked.
// The server runs this hourly in the background so the table does not
// accumulate dead sessions. It returns the number of rows removed.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < NOW() OR revoked_at IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
