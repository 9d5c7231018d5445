package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

type verificationsRepo struct {
	db dbtx
}

func (r *verificationsRepo) UpsertVerification(ctx context.Context, v domain.EmailVerification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_verifications (user_id, secret, attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			secret = EXCLUDED.secret,
			attempts = EXCLUDED.attempts,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`,
		v.UserID, v.Secret, v.Attempts, v.ExpiresAt.UTC(), v.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *verificationsRepo) GetVerification(ctx context.Context, userID string) (domain.EmailVerification, error) {
	var v domain.EmailVerification
	err := r.db.QueryRow(ctx, `
		SELECT user_id, secret, attempts, expires_at, created_at
		FROM email_verifications WHERE user_id = $1`, userID,
	).Scan(&v.UserID, &v.Secret, &v.Attempts, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		return domain.EmailVerification{}, mapNotFound(err)
	}

	v.ExpiresAt = v.ExpiresAt.UTC()
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}

func (r *verificationsRepo) IncrementAttempts(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		UPDATE email_verifications SET attempts = attempts + 1
		WHERE user_id = $1 RETURNING attempts`, userID,
	).Scan(&n)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return n, nil
}

func (r *verificationsRepo) DeleteVerification(ctx context.Context, userID string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM email_verifications WHERE user_id = $1`, userID))
}

func (r *verificationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM email_verifications WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
