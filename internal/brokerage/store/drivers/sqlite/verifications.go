package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

type verificationsRepo struct {
	db dbtx
}

func (r *verificationsRepo) UpsertVerification(ctx context.Context, v domain.EmailVerification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_verifications (user_id, secret, attempts, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			secret = excluded.secret,
			attempts = excluded.attempts,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		v.UserID, v.Secret, v.Attempts, toMillis(v.ExpiresAt), toMillis(v.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *verificationsRepo) GetVerification(ctx context.Context, userID string) (domain.EmailVerification, error) {
	var (
		v                    domain.EmailVerification
		expiresAt, createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, secret, attempts, expires_at, created_at
		FROM email_verifications WHERE user_id = ?`, userID,
	).Scan(&v.UserID, &v.Secret, &v.Attempts, &expiresAt, &createdAt)
	if err != nil {
		return domain.EmailVerification{}, mapNotFound(err)
	}

	v.ExpiresAt = fromMillis(expiresAt)
	v.CreatedAt = fromMillis(createdAt)
	return v, nil
}

func (r *verificationsRepo) IncrementAttempts(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		UPDATE email_verifications SET attempts = attempts + 1
		WHERE user_id = ? RETURNING attempts`, userID,
	).Scan(&n)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return n, nil
}

func (r *verificationsRepo) DeleteVerification(ctx context.Context, userID string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM email_verifications WHERE user_id = ?`, userID))
}

func (r *verificationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_verifications WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
