package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account_service/internal/models"
	"account_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *PostgresRepo) SaveToken(ctx context.Context, token string, userID int64, lastUsedAt time.Time) error {
	const op = "storage.postgres.SaveToken"

	query := `
		INSERT INTO tokens (token, user_id, last_used_at)
		VALUES ($1, $2, $3);
	`

	_, err := r.pool.Exec(ctx, query, token, userID, lastUsedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrTokenExists
		}

		return fmt.Errorf("%s: failed to save token: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) Token(ctx context.Context, token string) (models.SessionToken, error) {
	const op = "storage.postgres.Token"

	query := `
		SELECT token, user_id, last_used_at
		FROM tokens
		WHERE token = $1;
	`

	var t models.SessionToken
	err := r.pool.QueryRow(ctx, query, token).Scan(&t.Token, &t.UserID, &t.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SessionToken{}, storage.ErrTokenNotFound
		}

		return models.SessionToken{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (r *PostgresRepo) TouchToken(ctx context.Context, token string, usedAt time.Time) error {
	const op = "storage.postgres.TouchToken"

	query := `UPDATE tokens SET last_used_at = $2 WHERE token = $1;`

	tag, err := r.pool.Exec(ctx, query, token, usedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

func (r *PostgresRepo) DeleteToken(ctx context.Context, token string) error {
	const op = "storage.postgres.DeleteToken"

	query := `DELETE FROM tokens WHERE token = $1;`

	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteTokensByUser(ctx context.Context, userID int64) error {
	const op = "storage.postgres.DeleteTokensByUser"

	query := `DELETE FROM tokens WHERE user_id = $1;`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteExpiredTokens removes every token last used at or before cutoff in a
// single statement, so a token touched after the cutoff is never swept.
func (r *PostgresRepo) DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredTokens"

	query := `DELETE FROM tokens WHERE last_used_at <= $1;`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
