package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/hartonodwi/authgate/internal/auth/entity"
)

const queryGetUserByUsername = `
SELECT id, username, email, phone, password, created_at
FROM auth_users
WHERE lower(username) = lower($1)`

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	var user entity.User
	err = s.conn.QueryRow(ctx, queryGetUserByUsername, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.Password,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

const queryCreateUser = `
INSERT INTO auth_users (id, username, email, phone, password)
VALUES ($1, $2, $3, $4, $5)`

func (s *DB) NewUser(ctx context.Context, user entity.NewUser, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "NewUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateUser, user.ID, user.Username, user.Email, user.Phone, hash)
	return s.mapError(err)
}

// NewRegistration consumes the identifier's challenge and creates the
// credential record in one transaction. A unique violation rolls the consume
// back, so the verified challenge survives a duplicate-username attempt.
func (s *DB) NewRegistration(ctx context.Context, user entity.NewUser, hash, identifier string) (err error) {
	ctx, span := s.startSpan(ctx, "NewRegistration")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, queryDeleteChallenge, identifier); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, queryCreateUser, user.ID, user.Username, user.Email, user.Phone, hash); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
