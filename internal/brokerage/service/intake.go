package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/domain"
	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/aussiebroadwan/brokerage/pkg/idx"
	"github.com/aussiebroadwan/brokerage/pkg/slogx"
)

// IntakeService stores the anonymous website forms.
type IntakeService struct {
	Store store.Store
}

func (s *IntakeService) Register(ctx context.Context, r domain.Registration) (domain.Registration, error) {
	r.ID = idx.New().String()
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = domain.NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.MortgageType = strings.TrimSpace(r.MortgageType)
	r.CreatedAt = time.Now().UTC()

	if err := s.Store.Registrations().CreateRegistration(ctx, r); err != nil {
		return domain.Registration{}, err
	}
	slogx.FromContext(ctx).Info("registration received", slog.String("registration_id", r.ID))
	return r, nil
}

func (s *IntakeService) Contact(ctx context.Context, c domain.ContactSubmission) (domain.ContactSubmission, error) {
	c.ID = idx.New().String()
	c.FullName = strings.TrimSpace(c.FullName)
	c.Company = strings.TrimSpace(c.Company)
	c.Email = domain.NormalizeEmail(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Service = strings.TrimSpace(c.Service)
	c.Budget = strings.TrimSpace(c.Budget)
	c.Message = strings.TrimSpace(c.Message)
	c.CreatedAt = time.Now().UTC()

	if err := s.Store.Contacts().CreateContact(ctx, c); err != nil {
		return domain.ContactSubmission{}, err
	}
	slogx.FromContext(ctx).Info("contact form received", slog.String("contact_id", c.ID))
	return c, nil
}

func (s *IntakeService) Registrations(ctx context.Context) ([]domain.Registration, error) {
	return s.Store.Registrations().ListRegistrations(ctx)
}

func (s *IntakeService) Contacts(ctx context.Context) ([]domain.ContactSubmission, error) {
	return s.Store.Contacts().ListContacts(ctx)
}
