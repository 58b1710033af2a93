package db

import (
	"context"
	"time"

	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
)

const queryGetChallenge = `
SELECT identifier, code_hash, status, expires_at
FROM auth_otp_challenges
WHERE identifier = $1`

func (s *DB) GetChallenge(ctx context.Context, identifier string) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallenge")
	defer func() { s.endSpan(span, err) }()

	var chal entity.Challenge
	err = s.conn.QueryRow(ctx, queryGetChallenge, identifier).Scan(
		&chal.Identifier,
		&chal.CodeHash,
		&chal.Status,
		&chal.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &chal, nil
}

const queryUpsertChallenge = `
INSERT INTO auth_otp_challenges (identifier, code_hash, status, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (identifier) DO UPDATE
SET code_hash = EXCLUDED.code_hash,
    status = EXCLUDED.status,
    expires_at = EXCLUDED.expires_at,
    created_at = now()`

// UpsertChallenge stores a fresh challenge, unconditionally replacing any
// previous one for the identifier regardless of its status.
func (s *DB) UpsertChallenge(ctx context.Context, in entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryUpsertChallenge, in.Identifier, in.CodeHash, in.Status, in.ExpiresAt)
	return s.mapError(err)
}

const queryMarkChallengeVerified = `
UPDATE auth_otp_challenges
SET status = $2
WHERE identifier = $1`

func (s *DB) MarkChallengeVerified(ctx context.Context, identifier string) (err error) {
	ctx, span := s.startSpan(ctx, "MarkChallengeVerified")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryMarkChallengeVerified, identifier, entity.ChallengeStatusVerified)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

const queryDeleteChallenge = `
DELETE FROM auth_otp_challenges
WHERE identifier = $1`

func (s *DB) DeleteChallenge(ctx context.Context, identifier string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryDeleteChallenge, identifier)
	return s.mapError(err)
}

const queryDeleteExpiredChallenges = `
DELETE FROM auth_otp_challenges
WHERE expires_at < $1`

func (s *DB) DeleteExpiredChallenges(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredChallenges")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteExpiredChallenges, now)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
