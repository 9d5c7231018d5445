package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, name, contact_number, password_hash, roles,
	referral_id, email_verified, tokens_valid_after, created_at, updated_at`

func scanUser(row scanner) (domain.User, error) {
	var (
		u                                domain.User
		roles                            string
		referralID                       sql.NullString
		validAfter, createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.ContactNumber, &u.PasswordHash, &roles,
		&referralID, &u.EmailVerified, &validAfter, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}

	u.Roles = store.DecodeRoles(roles)
	u.ReferralID = referralID.String
	u.TokensValidAfter = fromMillis(validAfter)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = ?`, domain.NormalizeEmail(email))
}

func (r *usersRepo) GetUserByReferralID(ctx context.Context, referralID string) (domain.User, error) {
	return r.getOne(ctx, `referral_id = ?`, referralID)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	roles, err := store.EncodeRoles(u.Roles)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, domain.NormalizeEmail(u.Email), u.Name, u.ContactNumber, u.PasswordHash, roles,
		nullString(u.ReferralID), u.EmailVerified, toMillis(u.TokensValidAfter),
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id string, upd domain.UserUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UnixMilli()}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.ContactNumber != nil {
		sets = append(sets, "contact_number = ?")
		args = append(args, *upd.ContactNumber)
	}
	args = append(args, id)

	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...))
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id, hash string, tokensValidAfter time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, tokens_valid_after = ?, updated_at = ?
		WHERE id = ?`,
		hash, toMillis(tokensValidAfter), time.Now().UnixMilli(), id,
	))
}

func (r *usersRepo) SetRoles(ctx context.Context, id string, roles []string) error {
	raw, err := store.EncodeRoles(roles)
	if err != nil {
		return err
	}
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET roles = ?, updated_at = ? WHERE id = ?`,
		raw, time.Now().UnixMilli(), id,
	))
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), id,
	))
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

// ListUsersByRole filters after decoding so legacy role shapes match too.
func (r *usersRepo) ListUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE roles LIKE ? ORDER BY created_at, id`,
		"%"+strings.ToLower(strings.TrimSpace(role))+"%",
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
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
