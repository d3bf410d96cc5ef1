// Package service implements the quotation lifecycle: draft, send with an
// expiry window, customer decision, and conversion into a booking.
package service

import (
	"context"
	"time"

	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/events"
	"fleet_portal_backend/internal/quotations/repository"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/logger"
	"fleet_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
	cfg  config.ReminderConfig
	mail email.Sender
	bus  events.Bus
	log  *logger.Logger
}

func New(repo *repository.Repository, cfg config.ReminderConfig, mail email.Sender, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, mail: mail, bus: bus, log: log}
}

type CreateInput struct {
	CustomerID               uuid.UUID
	ServiceName              string
	BasePriceCents           int64
	PackagePriceCents        int64
	PromotionDiscountPercent float64
	RegularDiscountPercent   float64
	TaxPercent               float64
	Notes                    string
	CreatedBy                uuid.UUID
}

// Create stores a draft quotation with its total computed through the
// shared price calculator.
func (s *Service) Create(ctx context.Context, in CreateInput) (*repository.Quotation, error) {
	breakdown := CalculatePrice(PriceInput{
		BasePriceCents:           in.BasePriceCents,
		PackagePriceCents:        in.PackagePriceCents,
		PromotionDiscountPercent: in.PromotionDiscountPercent,
		RegularDiscountPercent:   in.RegularDiscountPercent,
		TaxPercent:               in.TaxPercent,
	})

	return s.repo.Create(ctx, repository.CreateParams{
		CustomerID:               in.CustomerID,
		ServiceName:              sanitize.Text(in.ServiceName),
		BasePriceCents:           in.BasePriceCents,
		PackagePriceCents:        in.PackagePriceCents,
		PromotionDiscountPercent: in.PromotionDiscountPercent,
		RegularDiscountPercent:   in.RegularDiscountPercent,
		TaxPercent:               in.TaxPercent,
		TotalCents:               breakdown.TotalCents,
		Notes:                    sanitize.Text(in.Notes),
		CreatedBy:                in.CreatedBy,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Quotation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]repository.Quotation, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Send emails the quotation to the customer and starts the expiry clock.
// A failed email send is logged but does not roll the status back; the
// quotation can be re-sent manually from the dashboard.
func (s *Service) Send(ctx context.Context, id uuid.UUID, validity time.Duration) (*repository.Quotation, error) {
	if validity <= 0 {
		validity = s.cfg.GetDefaultQuotationValidity()
	}
	expiry := time.Now().Add(validity)

	if err := s.repo.MarkSent(ctx, id, expiry); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.mail.SendQuotationEmail(ctx, q.CustomerEmail, q.CustomerName, q.QuoteNumber, email.FormatCurrency(q.TotalCents), expiry); err != nil {
		s.log.EmailEvent("quotation_sent", q.CustomerEmail, false, err.Error())
	} else {
		s.log.EmailEvent("quotation_sent", q.CustomerEmail, true, "")
	}

	s.bus.Publish(ctx, events.QuotationSent{
		BaseEvent:     events.NewBaseEvent(),
		QuotationID:   q.ID,
		QuotationNo:   q.QuoteNumber,
		CustomerName:  q.CustomerName,
		CustomerEmail: q.CustomerEmail,
		ExpiryDate:    expiry,
	})

	return q, nil
}

// Approve records the customer's acceptance of a sent quotation.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*repository.Quotation, error) {
	if err := s.repo.UpdateStatus(ctx, id, repository.StatusSent, repository.StatusApproved, ""); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationApproved{
		BaseEvent:    events.NewBaseEvent(),
		QuotationID:  q.ID,
		QuotationNo:  q.QuoteNumber,
		CustomerName: q.CustomerName,
	})

	return q, nil
}

// Reject records the customer's rejection with an optional reason.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*repository.Quotation, error) {
	if err := s.repo.UpdateStatus(ctx, id, repository.StatusSent, repository.StatusRejected, sanitize.Text(reason)); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationRejected{
		BaseEvent:    events.NewBaseEvent(),
		QuotationID:  q.ID,
		QuotationNo:  q.QuoteNumber,
		CustomerName: q.CustomerName,
		Reason:       reason,
	})

	return q, nil
}

// Convert links the quotation to a booking. A converted quotation never
// receives expiry warnings again.
func (s *Service) Convert(ctx context.Context, id, bookingID uuid.UUID) (*repository.Quotation, error) {
	if err := s.repo.Convert(ctx, id, bookingID); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationConverted{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: q.ID,
		QuotationNo: q.QuoteNumber,
		BookingID:   bookingID,
	})

	return q, nil
}

// ListExpiringBetween exposes the window scan for the reminder pipeline.
func (s *Service) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]repository.Quotation, error) {
	return s.repo.ListExpiringBetween(ctx, from, to)
}

// ListExpiredBefore exposes the past-due scan for the reminder pipeline.
func (s *Service) ListExpiredBefore(ctx context.Context, now time.Time) ([]repository.Quotation, error) {
	return s.repo.ListExpiredBefore(ctx, now)
}

// MarkExpired flips a past-due quotation to expired. Returns false when
// another run already performed the transition.
func (s *Service) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	transitioned, err := s.repo.MarkExpired(ctx, id)
	if err != nil || !transitioned {
		return transitioned, err
	}

	q, getErr := s.repo.GetByID(ctx, id)
	if getErr == nil && q.ExpiryDate != nil {
		s.bus.Publish(ctx, events.QuotationExpired{
			BaseEvent:   events.NewBaseEvent(),
			QuotationID: q.ID,
			QuotationNo: q.QuoteNumber,
			ExpiryDate:  *q.ExpiryDate,
		})
	}

	return true, nil
}
