package postgres

import (
	"context"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/jackc/pgx/v5"
)

type referralsRepo struct {
	db dbtx
}

const referralColumns = `r.id, r.referral_id, r.referral_name, r.referral_email,
	r.referral_phone, r.notes, r.status, r.created_at`

func scanReferral(row pgx.Row, extra ...any) (domain.Referral, error) {
	var (
		ref    domain.Referral
		status string
	)
	dest := append([]any{&ref.ID, &ref.ReferralID, &ref.ReferralName, &ref.ReferralEmail,
		&ref.ReferralPhone, &ref.Notes, &status, &ref.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Referral{}, err
	}

	ref.Status = domain.ReferralStatus(status)
	ref.CreatedAt = ref.CreatedAt.UTC()
	return ref, nil
}

func (r *referralsRepo) CreateReferral(ctx context.Context, ref domain.Referral) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO referrals (id, referral_id, referral_name, referral_email,
			referral_phone, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ref.ID, ref.ReferralID, ref.ReferralName, ref.ReferralEmail,
		ref.ReferralPhone, ref.Notes, string(ref.Status), ref.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *referralsRepo) ListByReferralID(ctx context.Context, referralID string) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+referralColumns+` FROM referrals r
		WHERE r.referral_id = $1
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
	return requireAffected(r.db.Exec(ctx,
		`DELETE FROM referrals WHERE id = $1 AND referral_id = $2`, id, referralID))
}

func (r *referralsRepo) UpdateStatus(ctx context.Context, id string, status domain.ReferralStatus) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE referrals SET status = $1 WHERE id = $2`, string(status), id))
}

func (r *referralsRepo) ListWithReferrer(ctx context.Context, status *domain.ReferralStatus) ([]domain.Referral, error) {
	query := `
		SELECT ` + referralColumns + `, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM referrals r
		LEFT JOIN users u ON u.referral_id = r.referral_id`
	var args []any
	if status != nil {
		query += ` WHERE r.status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Referral{}
	for rows.Next() {
		var name, email string
		ref, err := scanReferral(rows, &name, &email)
		if err != nil {
			return nil, err
		}
		ref.ReferrerName = name
		ref.ReferrerEmail = email
		out = append(out, ref)
	}
	return out, rows.Err()
}
