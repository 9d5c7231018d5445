package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

type referralsRepo struct {
	db dbtx
}

const referralColumns = `r.id, r.referral_id, r.referral_name, r.referral_email,
	r.referral_phone, r.notes, r.status, r.created_at`

func scanReferral(row scanner, extra ...any) (domain.Referral, error) {
	var (
		ref       domain.Referral
		status    string
		createdAt int64
	)
	dest := append([]any{&ref.ID, &ref.ReferralID, &ref.ReferralName, &ref.ReferralEmail,
		&ref.ReferralPhone, &ref.Notes, &status, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Referral{}, err
	}

	ref.Status = domain.ReferralStatus(status)
	ref.CreatedAt = fromMillis(createdAt)
	return ref, nil
}

func (r *referralsRepo) CreateReferral(ctx context.Context, ref domain.Referral) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO referrals (id, referral_id, referral_name, referral_email,
			referral_phone, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.ReferralID, ref.ReferralName, ref.ReferralEmail,
		ref.ReferralPhone, ref.Notes, string(ref.Status), toMillis(ref.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *referralsRepo) ListByReferralID(ctx context.Context, referralID string) ([]domain.Referral, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+referralColumns+` FROM referrals r
		WHERE r.referral_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, referralID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Referral{}
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *referralsRepo) DeleteOwned(ctx context.Context, id, referralID string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM referrals WHERE id = ? AND referral_id = ?`, id, referralID))
}

func (r *referralsRepo) UpdateStatus(ctx context.Context, id string, status domain.ReferralStatus) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE referrals SET status = ? WHERE id = ?`, string(status), id))
}

func (r *referralsRepo) ListWithReferrer(ctx context.Context, status *domain.ReferralStatus) ([]domain.Referral, error) {
	query := `
		SELECT ` + referralColumns + `, u.name, u.email
		FROM referrals r
		LEFT JOIN users u ON u.referral_id = r.referral_id`
	var args []any
	if status != nil {
		query += ` WHERE r.status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Referral{}
	for rows.Next() {
		var name, email sql.NullString
		ref, err := scanReferral(rows, &name, &email)
		if err != nil {
			return nil, err
		}
		ref.ReferrerName = name.String
		ref.ReferrerEmail = email.String
		out = append(out, ref)
	}
	return out, rows.Err()
}
