package postgres

import (
	"context"
	"fmt"
	"time"
)

func (r *tokenRepository) Invalidate(ctx context.Context, token string, expiry time.Time) error {
	query := `
		INSERT INTO revoked_tokens (token, expires_at, revoked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`
	if _, err := r.GetDB().ExecContext(ctx, query, token, expiry, time.Now()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *tokenRepository) IsInvalidated(ctx context.Context, token string) (bool, error) {
	var count int
	err := r.GetDB().GetContext(ctx, &count,
		`SELECT COUNT(*) FROM revoked_tokens WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return count > 0, nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	if _, err := r.GetDB().ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < $1`, before); err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return nil
}
