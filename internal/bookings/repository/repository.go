// Package repository provides data access for bookings and the joined
// contact details the reminder pipeline needs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate       = "bookings.repository.create"
	opGetByID      = "bookings.repository.get_by_id"
	opList         = "bookings.repository.list"
	opAssign       = "bookings.repository.assign"
	opUpdateStatus = "bookings.repository.update_status"
	opListForDay   = "bookings.repository.list_for_day"
)

// Booking statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ReminderStatuses are the statuses whose bookings receive trip reminders.
var ReminderStatuses = []string{StatusConfirmed, StatusPending, StatusAssigned}

// Booking is a scheduled trip. Date and Time are kept separate because
// Time is the operator-entered local wall-clock value; combining them
// into an instant is the reminder pipeline's job.
type Booking struct {
	ID              uuid.UUID
	BookingNo       string
	CustomerID      uuid.UUID
	CustomerName    string
	QuotationID     *uuid.UUID
	DriverID        *uuid.UUID
	VehicleID       *uuid.UUID
	ServiceName     string
	PickupLocation  string
	DropoffLocation string
	Date            time.Time // date component only
	Time            string    // "HH:MM" local wall clock
	Status          string
	Notes           string
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReminderDetails is a booking joined with every contact the reminder
// email needs. Missing driver or vehicle leaves the fields empty.
type ReminderDetails struct {
	Booking
	CustomerEmail string
	CustomerPhone string
	DriverName    string
	DriverEmail   string
	DriverPhone   string
	VehicleMake   string
	VehicleModel  string
	VehiclePlate  string
	CreatorEmail  string
}

const bookingColumns = `
	b.id, b.booking_no, b.customer_id, c.name, b.quotation_id, b.driver_id, b.vehicle_id,
	b.service_name, COALESCE(b.pickup_location, ''), COALESCE(b.dropoff_location, ''),
	b.booking_date, to_char(b.booking_time, 'HH24:MI'), b.status, COALESCE(b.notes, ''),
	b.created_by, b.created_at, b.updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateParams struct {
	CustomerID      uuid.UUID
	QuotationID     *uuid.UUID
	ServiceName     string
	PickupLocation  string
	DropoffLocation string
	Date            time.Time
	Time            string
	Notes           string
	CreatedBy       uuid.UUID
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (*Booking, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opCreate)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO bookings (
				booking_no, customer_id, quotation_id, service_name,
				pickup_location, dropoff_location, booking_date, booking_time,
				status, notes, created_by
			)
			VALUES (
				'BK-' || lpad(nextval('booking_number_seq')::text, 6, '0'),
				$1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7::time, '%s', NULLIF($8, ''), $9
			)
			RETURNING *
		)
		SELECT %s FROM inserted b JOIN customers c ON c.id = b.customer_id`,
		StatusPending, bookingColumns),
		p.CustomerID, p.QuotationID, p.ServiceName, p.PickupLocation,
		p.DropoffLocation, p.Date, p.Time, p.Notes, p.CreatedBy)

	return scanBooking(row, opCreate)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opGetByID)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1`, bookingColumns), id)

	return scanBooking(row, opGetByID)
}

func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]Booking, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal("repository not initialized").WithOp(opList)
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE ($1 = '' OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count bookings", err).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE ($1 = '' OR b.status = $1)
		ORDER BY b.booking_date DESC, b.booking_time DESC
		LIMIT $2 OFFSET $3`, bookingColumns), status, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list bookings", err).WithOp(opList)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows, opList)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to read bookings", err).WithOp(opList)
	}

	return bookings, total, nil
}

// Assign attaches a driver and vehicle and moves the booking to assigned.
func (r *Repository) Assign(ctx context.Context, id, driverID, vehicleID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal("repository not initialized").WithOp(opAssign)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET driver_id = $2, vehicle_id = $3, status = $4, updated_at = now()
		WHERE id = $1 AND status = ANY($5)`,
		id, driverID, vehicleID, StatusAssigned, []string{StatusPending, StatusConfirmed})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to assign booking", err).WithOp(opAssign)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("booking cannot be assigned in its current status").WithOp(opAssign)
	}
	return nil
}

// UpdateStatus transitions between statuses with a guard on the current one.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) error {
	if r == nil || r.pool == nil {
		return apperr.Internal("repository not initialized").WithOp(opUpdateStatus)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status = $3, updated_at = now()
		WHERE id = $1 AND status = ANY($2)`, id, from, to)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update booking status", err).WithOp(opUpdateStatus)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("booking is not in an eligible status").WithOp(opUpdateStatus)
	}
	return nil
}

// ListForDay returns reminder details for bookings on the given calendar
// day in any of the given statuses. Customer and creator are required
// joins; driver and vehicle are left joins because unassigned bookings
// still get reminders with placeholder fields.
func (r *Repository) ListForDay(ctx context.Context, day time.Time, statuses []string) ([]ReminderDetails, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opListForDay)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s,
			c.email, COALESCE(c.phone, ''),
			COALESCE(d.name, ''), COALESCE(d.email, ''), COALESCE(d.phone, ''),
			COALESCE(v.make, ''), COALESCE(v.model, ''), COALESCE(v.license_plate, ''),
			COALESCE(a.email, '')
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN drivers d ON d.id = b.driver_id
		LEFT JOIN vehicles v ON v.id = b.vehicle_id
		LEFT JOIN admin_users a ON a.id = b.created_by
		WHERE b.booking_date = $1::date AND b.status = ANY($2)`, bookingColumns),
		day, statuses)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list bookings for day", err).WithOp(opListForDay)
	}
	defer rows.Close()

	var details []ReminderDetails
	for rows.Next() {
		var d ReminderDetails
		err := rows.Scan(
			&d.ID, &d.BookingNo, &d.CustomerID, &d.CustomerName, &d.QuotationID,
			&d.DriverID, &d.VehicleID, &d.ServiceName, &d.PickupLocation,
			&d.DropoffLocation, &d.Date, &d.Time, &d.Status, &d.Notes,
			&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
			&d.CustomerEmail, &d.CustomerPhone,
			&d.DriverName, &d.DriverEmail, &d.DriverPhone,
			&d.VehicleMake, &d.VehicleModel, &d.VehiclePlate,
			&d.CreatorEmail,
		)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan booking reminder details", err).WithOp(opListForDay)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read booking reminder details", err).WithOp(opListForDay)
	}

	return details, nil
}

func scanBooking(row pgx.Row, op string) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.BookingNo, &b.CustomerID, &b.CustomerName, &b.QuotationID,
		&b.DriverID, &b.VehicleID, &b.ServiceName, &b.PickupLocation,
		&b.DropoffLocation, &b.Date, &b.Time, &b.Status, &b.Notes,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("booking not found").WithOp(op)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to scan booking", err).WithOp(op)
	}
	return &b, nil
}
