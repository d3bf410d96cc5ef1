// Package service implements booking lifecycle operations and the day
// scans consumed by the reminder pipeline.
package service

import (
	"context"
	"time"

	"fleet_portal_backend/internal/bookings/repository"
	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/events"
	"fleet_portal_backend/platform/apperr"
	"fleet_portal_backend/platform/logger"
	"fleet_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

const opCreate = "bookings.service.create"

type Service struct {
	repo *repository.Repository
	mail email.Sender
	bus  events.Bus
	log  *logger.Logger
}

func New(repo *repository.Repository, mail email.Sender, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, mail: mail, bus: bus, log: log}
}

type CreateInput struct {
	CustomerID      uuid.UUID
	QuotationID     *uuid.UUID
	ServiceName     string
	PickupLocation  string
	DropoffLocation string
	Date            string // "2006-01-02"
	Time            string // "15:04"
	Notes           string
	CreatedBy       uuid.UUID
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*repository.Booking, error) {
	day, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, apperr.BadRequest("invalid booking date").WithOp(opCreate)
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return nil, apperr.BadRequest("invalid booking time").WithOp(opCreate)
	}

	b, err := s.repo.Create(ctx, repository.CreateParams{
		CustomerID:      in.CustomerID,
		QuotationID:     in.QuotationID,
		ServiceName:     sanitize.Text(in.ServiceName),
		PickupLocation:  sanitize.Text(in.PickupLocation),
		DropoffLocation: sanitize.Text(in.DropoffLocation),
		Date:            day,
		Time:            in.Time,
		Notes:           sanitize.Text(in.Notes),
		CreatedBy:       in.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.BookingCreated{
		BaseEvent:    events.NewBaseEvent(),
		BookingID:    b.ID,
		BookingNo:    b.BookingNo,
		CustomerName: b.CustomerName,
		PickupTime:   PickupInstant(b.Date, b.Time, time.Local),
	})

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]repository.Booking, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Confirm moves a pending booking to confirmed and emails the customer.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*repository.Booking, error) {
	if err := s.repo.UpdateStatus(ctx, id, []string{repository.StatusPending}, repository.StatusConfirmed); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.reminderDetailsFor(ctx, b)
	if err == nil && details != nil && details.CustomerEmail != "" {
		pickup := PickupInstant(b.Date, b.Time, time.Local).Format("Monday, 2 January 2006 at 15:04")
		if sendErr := s.mail.SendBookingConfirmationEmail(ctx, details.CustomerEmail, b.CustomerName, b.BookingNo, pickup, b.PickupLocation, b.DropoffLocation); sendErr != nil {
			s.log.EmailEvent("booking_confirmation", details.CustomerEmail, false, sendErr.Error())
		} else {
			s.log.EmailEvent("booking_confirmation", details.CustomerEmail, true, "")
		}
	}

	return b, nil
}

// Assign attaches a driver and vehicle.
func (s *Service) Assign(ctx context.Context, id, driverID, vehicleID uuid.UUID) (*repository.Booking, error) {
	if err := s.repo.Assign(ctx, id, driverID, vehicleID); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.BookingAssigned{
		BaseEvent: events.NewBaseEvent(),
		BookingID: b.ID,
		BookingNo: b.BookingNo,
		DriverID:  driverID,
	})

	return b, nil
}

func (s *Service) Start(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, id, []string{repository.StatusAssigned, repository.StatusConfirmed}, repository.StatusInProgress)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, id, []string{repository.StatusInProgress}, repository.StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	err := s.repo.UpdateStatus(ctx, id,
		[]string{repository.StatusPending, repository.StatusConfirmed, repository.StatusAssigned},
		repository.StatusCancelled)
	if err != nil {
		return err
	}

	if b, getErr := s.repo.GetByID(ctx, id); getErr == nil {
		s.bus.Publish(ctx, events.BookingCancelled{
			BaseEvent: events.NewBaseEvent(),
			BookingID: b.ID,
			BookingNo: b.BookingNo,
			Reason:    reason,
		})
	}

	return nil
}

// ListRemindableForDay returns joined reminder details for bookings on
// the given calendar day that are in a reminder-eligible status.
func (s *Service) ListRemindableForDay(ctx context.Context, day time.Time) ([]repository.ReminderDetails, error) {
	return s.repo.ListForDay(ctx, day, repository.ReminderStatuses)
}

// PickupInstant combines the stored calendar date and "HH:MM" wall-clock
// time into an instant in the given location. A malformed time falls back
// to midnight, matching how the booking would sort on the dashboard.
func PickupInstant(day time.Time, clock string, loc *time.Location) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
}

func (s *Service) reminderDetailsFor(ctx context.Context, b *repository.Booking) (*repository.ReminderDetails, error) {
	details, err := s.repo.ListForDay(ctx, b.Date, []string{b.Status})
	if err != nil {
		return nil, err
	}
	for i := range details {
		if details[i].ID == b.ID {
			return &details[i], nil
		}
	}
	return nil, nil
}
