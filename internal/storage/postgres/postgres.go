package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account_service/internal/config"
	"account_service/internal/models"
	"account_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	pool *pgxpool.Pool
	dsn  string
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool, dsn: dsn}, nil
}

// SaveUser inserts the user and invokes notify inside the same transaction.
// If notify fails the insert is rolled back, so a user whose activation e-mail
// could not be handed off never exists in the database.
func (r *PostgresRepo) SaveUser(
	ctx context.Context,
	username, email string,
	passHash []byte,
	activationToken string,
	notify func(ctx context.Context) error,
) (int64, error) {
	const op = "storage.postgres.SaveUser"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (username, email, password_hash, activation_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err = tx.QueryRow(ctx, query, username, email, string(passHash), activationToken).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, storage.ErrEmailTaken
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	if notify != nil {
		if err := notify(ctx); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: failed to commit tx: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `
		SELECT id, username, email, password_hash, inactive, activation_token, password_reset_token
		FROM users
		WHERE email = $1;
	`

	row := r.pool.QueryRow(ctx, query, email)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PassHash,
		&u.Inactive,
		&u.ActivationToken,
		&u.PasswordResetToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// ActiveUserByID returns the user only when it exists and has been activated.
// Inactive and missing ids are indistinguishable to the caller.
func (r *PostgresRepo) ActiveUserByID(ctx context.Context, id int64) (models.User, error) {
	const op = "storage.postgres.ActiveUserByID"

	query := `
		SELECT id, username, email
		FROM users
		WHERE id = $1 AND inactive = FALSE;
	`

	var u models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// ActiveUsers lists active users excluding excludeID, newest id last, together
// with the total count of matching rows. excludeID 0 matches no user.
func (r *PostgresRepo) ActiveUsers(ctx context.Context, excludeID int64, limit, offset int) ([]models.User, int, error) {
	const op = "storage.postgres.ActiveUsers"

	countQuery := `
		SELECT COUNT(*)
		FROM users
		WHERE inactive = FALSE AND id <> $1;
	`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, excludeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	query := `
		SELECT id, username, email
		FROM users
		WHERE inactive = FALSE AND id <> $1
		ORDER BY id
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.pool.Query(ctx, query, excludeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list users: %w", op, err)
	}
	defer rows.Close()

	var users []models.User

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return users, total, nil
}

func (r *PostgresRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	const op = "storage.postgres.UpdateUsername"

	query := `UPDATE users SET username = $2 WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// DeleteUser removes the user row; session tokens go with it through the
// foreign key cascade.
func (r *PostgresRepo) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	query := `DELETE FROM users WHERE id = $1;`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ActivateUser consumes the single-use activation token: clears the inactive
// flag and nulls the token in one statement.
func (r *PostgresRepo) ActivateUser(ctx context.Context, token string) error {
	const op = "storage.postgres.ActivateUser"

	query := `
		UPDATE users
		SET inactive = FALSE, activation_token = NULL
		WHERE activation_token = $1;
	`

	tag, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

func (r *PostgresRepo) SetPasswordResetToken(ctx context.Context, email, token string) error {
	const op = "storage.postgres.SetPasswordResetToken"

	query := `UPDATE users SET password_reset_token = $2 WHERE email = $1;`

	tag, err := r.pool.Exec(ctx, query, email, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// ResetPassword consumes the single-use reset token: sets the new password
// hash and nulls the token, returning the owning user id.
func (r *PostgresRepo) ResetPassword(ctx context.Context, token string, passHash []byte) (int64, error) {
	const op = "storage.postgres.ResetPassword"

	query := `
		UPDATE users
		SET password_hash = $2, password_reset_token = NULL
		WHERE password_reset_token = $1
		RETURNING id;
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, token, string(passHash)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrTokenNotFound
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
