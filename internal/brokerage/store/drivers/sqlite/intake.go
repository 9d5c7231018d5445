package sqlite

import (
	"context"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

// intakeRepo serves both public intake tables.
type intakeRepo struct {
	db dbtx
}

func (r *intakeRepo) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registrations (id, fullname, email, phone, mortgage_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.FullName, reg.Email, reg.Phone, reg.MortgageType, toMillis(reg.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *intakeRepo) ListRegistrations(ctx context.Context) ([]domain.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fullname, email, phone, mortgage_type, created_at
		FROM registrations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Registration{}
	for rows.Next() {
		var (
			reg       domain.Registration
			createdAt int64
		)
		if err := rows.Scan(&reg.ID, &reg.FullName, &reg.Email, &reg.Phone, &reg.MortgageType, &createdAt); err != nil {
			return nil, err
		}
		reg.CreatedAt = fromMillis(createdAt)
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *intakeRepo) CreateContact(ctx context.Context, c domain.ContactSubmission) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, fullname, company, email, phone, service, budget, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FullName, c.Company, c.Email, c.Phone, c.Service, c.Budget, c.Message, toMillis(c.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *intakeRepo) ListContacts(ctx context.Context) ([]domain.ContactSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fullname, company, email, phone, service, budget, message, created_at
		FROM contacts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ContactSubmission{}
	for rows.Next() {
		var (
			c         domain.ContactSubmission
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.FullName, &c.Company, &c.Email, &c.Phone,
			&c.Service, &c.Budget, &c.Message, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = fromMillis(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
