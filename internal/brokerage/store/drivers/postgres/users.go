package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/jackc/pgx/v5"
)

type usersRepo struct {
	db dbtx
}

const userSelect = `SELECT id, email, name, contact_number, password_hash, roles,
	COALESCE(referral_id, ''), email_verified, tokens_valid_after, created_at, updated_at
	FROM users`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u          domain.User
		roles      string
		validAfter *time.Time
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.ContactNumber, &u.PasswordHash, &roles,
		&u.ReferralID, &u.EmailVerified, &validAfter, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}

	u.Roles = store.DecodeRoles(roles)
	u.TokensValidAfter = fromNullTime(validAfter)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, userSelect+` WHERE `+where, arg))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = $1`, domain.NormalizeEmail(email))
}

func (r *usersRepo) GetUserByReferralID(ctx context.Context, referralID string) (domain.User, error) {
	return r.getOne(ctx, `referral_id = $1`, referralID)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	roles, err := store.EncodeRoles(u.Roles)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO users (id, email, name, contact_number, password_hash, roles,
			referral_id, email_verified, tokens_valid_after, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, domain.NormalizeEmail(u.Email), u.Name, u.ContactNumber, u.PasswordHash, roles,
		nullString(u.ReferralID), u.EmailVerified, nullTime(u.TokensValidAfter),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id string, upd domain.UserUpdate) error {
	args := []any{time.Now().UTC()}
	sets := []string{"updated_at = $1"}
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.ContactNumber != nil {
		args = append(args, *upd.ContactNumber)
		sets = append(sets, fmt.Sprintf("contact_number = $%d", len(args)))
	}
	args = append(args, id)

	return requireAffected(r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...))
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id, hash string, tokensValidAfter time.Time) error {
	return requireAffected(r.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, tokens_valid_after = $2, updated_at = $3
		WHERE id = $4`,
		hash, nullTime(tokensValidAfter), time.Now().UTC(), id,
	))
}

func (r *usersRepo) SetRoles(ctx context.Context, id string, roles []string) error {
	raw, err := store.EncodeRoles(roles)
	if err != nil {
		return err
	}
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET roles = $1, updated_at = $2 WHERE id = $3`,
		raw, time.Now().UTC(), id,
	))
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, id string) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	))
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}

// ListUsersByRole narrows with ILIKE and then decodes, so legacy role shapes
// match too.
func (r *usersRepo) ListUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		userSelect+` WHERE roles ILIKE $1 ORDER BY created_at, id`,
		"%"+strings.TrimSpace(role)+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if u.HasRole(role) {
			out = append(out, u)
		}
	}
	return out, rows.Err()
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return false, err
	}
	return !exists, nil
}
