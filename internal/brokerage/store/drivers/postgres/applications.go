package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/jackc/pgx/v5"
)

type applicationsRepo struct {
	db dbtx
}

const applicationSelect = `SELECT id, user_id, customer_id, status, form_data, created_at, updated_at
	FROM mortgage_applications`

func scanApplication(row pgx.Row) (domain.Application, error) {
	var (
		a        domain.Application
		formData []byte
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.CustomerID, &a.Status, &formData, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return domain.Application{}, err
	}

	if err := json.Unmarshal(formData, &a.FormData); err != nil {
		return domain.Application{}, fmt.Errorf("decode form_data for %s: %w", a.ID, err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	if a.UpdatedAt != nil {
		t := a.UpdatedAt.UTC()
		a.UpdatedAt = &t
	}
	return a, nil
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.Application) error {
	formData, err := json.Marshal(a.FormData)
	if err != nil {
		return fmt.Errorf("encode form_data: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO mortgage_applications (id, user_id, customer_id, status, form_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.CustomerID, a.Status, string(formData), a.CreatedAt.UTC(), a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *applicationsRepo) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE id = $1`, id))
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return a, nil
}

func (r *applicationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Application, error) {
	query := applicationSelect + ` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *applicationsRepo) UpdateFormData(ctx context.Context, id string, formData map[string]any, at time.Time) error {
	raw, err := json.Marshal(formData)
	if err != nil {
		return fmt.Errorf("encode form_data: %w", err)
	}

	return requireAffected(r.db.Exec(ctx,
		`UPDATE mortgage_applications SET form_data = $1, updated_at = $2 WHERE id = $3`,
		string(raw), at.UTC(), id,
	))
}

func (r *applicationsRepo) DeleteApplication(ctx context.Context, id string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM mortgage_applications WHERE id = $1`, id))
}
