package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrTokenInvalid covers unknown, revoked and expired refresh tokens alike.
var ErrTokenInvalid = errors.New("refresh token invalid")

// TokenRepo keeps staff sessions as refresh token hashes. Raw tokens are
// only ever held by the client.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func storeRefresh(ctx context.Context, db execer, userID uint64, hash string, exp time.Time) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, hash, exp.UTC())
	return err
}

// StoreRefresh opens a new session for userID.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	return storeRefresh(ctx, r.DB, userID, hash, exp)
}

// ValidateRefresh returns the user owning a live token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, hash string) (uint64, error) {
	var (
		userID  uint64
		expires time.Time
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		hash).Scan(&userID, &expires, &revoked)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, ErrTokenInvalid
	case err != nil:
		return 0, err
	case revoked.Valid, !time.Now().UTC().Before(expires):
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// Rotate revokes oldHash and stores its replacement in one transaction.
// A token that was already revoked, for example by a concurrent refresh,
// yields ErrTokenInvalid and nothing is stored.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND user_id=? AND revoked_at IS NULL",
		oldHash, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrTokenInvalid
	}
	if err := storeRefresh(ctx, tx, userID, newHash, exp); err != nil {
		return err
	}
	return tx.Commit()
}

// RevokeByHash ends one session.
func (r *TokenRepo) RevokeByHash(ctx context.Context, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		hash)
	return err
}

// RevokeAllForUser ends every session of the user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
