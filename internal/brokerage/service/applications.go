package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/idx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// MaxListedApplications caps a user's own application listing.
const MaxListedApplications = 100

type ApplicationService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *ApplicationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// checkFormData requires a non-blank value for each of
// domain.RequiredApplicationFields.
func checkFormData(formData map[string]any) error {
	missing := map[string]string{}
	for _, field := range domain.RequiredApplicationFields {
		v, ok := formData[field]
		if str, isStr := v.(string); !ok || v == nil || (isStr && strings.TrimSpace(str) == "") {
			missing["form_data."+field] = "required"
		}
	}
	if len(missing) > 0 {
		return &validx.ValidationError{Fields: missing}
	}
	return nil
}

// Submit stores an application for u. formData must carry a non-blank value
// for each of domain.RequiredApplicationFields.
func (s *ApplicationService) Submit(ctx context.Context, u domain.User, formData map[string]any) (domain.Application, error) {
	if err := checkFormData(formData); err != nil {
		return domain.Application{}, err
	}

	app := domain.Application{
		ID:         idx.New().String(),
		UserID:     u.ID,
		CustomerID: idx.NewUUID(),
		Status:     domain.ApplicationSubmitted,
		FormData:   formData,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Store.Applications().CreateApplication(ctx, app); err != nil {
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}

	slogx.FromContext(ctx).Info("mortgage application submitted",
		slog.String("application_id", app.ID),
		slog.String("customer_id", app.CustomerID),
	)
	return app, nil
}

// Mine lists u's applications, newest first.
func (s *ApplicationService) Mine(ctx context.Context, u domain.User) ([]domain.Application, error) {
	return s.Store.Applications().ListByUser(ctx, u.ID, MaxListedApplications)
}

// ForUser lists every application of userID. An empty result is
// ErrNoApplications.
func (s *ApplicationService) ForUser(ctx context.Context, userID string) ([]domain.Application, error) {
	apps, err := s.Store.Applications().ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, ErrNoApplications
	}
	return apps, nil
}

// editable loads application id for u. Only the owner and admins see it.
func (s *ApplicationService) editable(ctx context.Context, u domain.User, id string) (domain.Application, error) {
	app, err := s.Store.Applications().GetApplication(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Application{}, ErrApplicationNotFound
	}
	if err != nil {
		return domain.Application{}, err
	}
	if app.UserID != u.ID && !u.HasRole(domain.RoleAdmin) {
		return domain.Application{}, ErrApplicationNotFound
	}
	return app, nil
}

// Update replaces the form of an application owned by u; admins may update
// any. The new form is checked like a submission. Status and customer id
// are kept.
func (s *ApplicationService) Update(ctx context.Context, u domain.User, id string, formData map[string]any) (domain.Application, error) {
	if err := checkFormData(formData); err != nil {
		return domain.Application{}, err
	}

	app, err := s.editable(ctx, u, id)
	if err != nil {
		return domain.Application{}, err
	}

	now := s.now().UTC()
	err = s.Store.Applications().UpdateFormData(ctx, id, formData, now)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Application{}, ErrApplicationNotFound
	}
	if err != nil {
		return domain.Application{}, err
	}

	app.FormData = formData
	app.UpdatedAt = &now

	slogx.FromContext(ctx).Info("mortgage application updated",
		slog.String("application_id", id),
		slog.String("owner_id", app.UserID),
	)
	return app, nil
}

// Delete removes an application owned by u; admins may delete any. Other
// users' applications look missing.
func (s *ApplicationService) Delete(ctx context.Context, u domain.User, id string) error {
	app, err := s.editable(ctx, u, id)
	if err != nil {
		return err
	}

	err = s.Store.Applications().DeleteApplication(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrApplicationNotFound
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("mortgage application deleted",
		slog.String("application_id", id),
		slog.String("owner_id", app.UserID),
	)
	return nil
}
