package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
)

type applicationsRepo struct {
	db dbtx
}

const applicationColumns = `id, user_id, customer_id, status, form_data, created_at, updated_at`

func scanApplication(row scanner) (domain.Application, error) {
	var (
		a         domain.Application
		formData  string
		createdAt int64
		updatedAt sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.CustomerID, &a.Status, &formData, &createdAt, &updatedAt); err != nil {
		return domain.Application{}, err
	}

	if err := json.Unmarshal([]byte(formData), &a.FormData); err != nil {
		return domain.Application{}, fmt.Errorf("decode form_data for %s: %w", a.ID, err)
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromNullMillis(updatedAt)
	return a, nil
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.Application) error {
	formData, err := json.Marshal(a.FormData)
	if err != nil {
		return fmt.Errorf("encode form_data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mortgage_applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.CustomerID, a.Status, string(formData), toMillis(a.CreatedAt), nullMillis(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *applicationsRepo) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM mortgage_applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return a, nil
}

func (r *applicationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Application, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM mortgage_applications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
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

	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE mortgage_applications SET form_data = ?, updated_at = ? WHERE id = ?`,
		string(raw), toMillis(at), id,
	))
}

func (r *applicationsRepo) DeleteApplication(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM mortgage_applications WHERE id = ?`, id))
}
