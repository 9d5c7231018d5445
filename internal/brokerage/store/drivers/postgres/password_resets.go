package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt.UTC(), pr.UsedAt, pr.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *passwordResetsRepo) GetPasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error) {
	var pr domain.PasswordReset
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets WHERE token_hash = $1`, hash,
	).Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.UsedAt, &pr.CreatedAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}

	pr.ExpiresAt = pr.ExpiresAt.UTC()
	pr.CreatedAt = pr.CreatedAt.UTC()
	if pr.UsedAt != nil {
		t := pr.UsedAt.UTC()
		pr.UsedAt = &t
	}
	return pr, nil
}

func (r *passwordResetsRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE password_resets SET used_at = $1 WHERE id = $2 AND used_at IS NULL`,
		at.UTC(), id,
	))
}

func (r *passwordResetsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM password_resets WHERE expires_at < $1 OR used_at IS NOT NULL`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
