package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		pr.ID, pr.UserID, pr.TokenHash, toMillis(pr.ExpiresAt), nullMillis(pr.UsedAt), toMillis(pr.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *passwordResetsRepo) GetPasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error) {
	var (
		pr                   domain.PasswordReset
		expiresAt, createdAt int64
		usedAt               sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets WHERE token_hash = ?`, hash,
	).Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &expiresAt, &usedAt, &createdAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}

	pr.ExpiresAt = fromMillis(expiresAt)
	pr.UsedAt = fromNullMillis(usedAt)
	pr.CreatedAt = fromMillis(createdAt)
	return pr, nil
}

func (r *passwordResetsRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE password_resets SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		toMillis(at), id,
	))
}

func (r *passwordResetsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < ? OR used_at IS NOT NULL`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
