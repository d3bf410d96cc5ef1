// Package repository provides data access for quotations.
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
	opCreate              = "quotations.repository.create"
	opGetByID             = "quotations.repository.get_by_id"
	opList                = "quotations.repository.list"
	opMarkSent            = "quotations.repository.mark_sent"
	opUpdateStatus        = "quotations.repository.update_status"
	opConvert             = "quotations.repository.convert"
	opListExpiringBetween = "quotations.repository.list_expiring_between"
	opListExpiredBefore   = "quotations.repository.list_expired_before"
	opMarkExpired         = "quotations.repository.mark_expired"
)

// Quotation statuses. Transitions are enforced by the service layer;
// MarkExpired additionally guards on sent at the SQL level.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusExpired   = "expired"
	StatusConverted = "converted"
	StatusPaid      = "paid"
)

// Quotation is a priced offer with an expiry window once sent.
type Quotation struct {
	ID                       uuid.UUID
	QuoteNumber              string
	CustomerID               uuid.UUID
	CustomerName             string
	CustomerEmail            string
	ServiceName              string
	Status                   string
	BasePriceCents           int64
	PackagePriceCents        int64
	PromotionDiscountPercent float64
	RegularDiscountPercent   float64
	TaxPercent               float64
	TotalCents               int64
	Notes                    string
	ExpiryDate               *time.Time
	ConvertedToBookingID     *uuid.UUID
	RejectionReason          string
	CreatedBy                uuid.UUID
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

const quotationColumns = `
	q.id, q.quote_number, q.customer_id, c.name, c.email, q.service_name, q.status,
	q.base_price_cents, q.package_price_cents, q.promotion_discount_percent,
	q.regular_discount_percent, q.tax_percent, q.total_cents,
	COALESCE(q.notes, ''), q.expiry_date, q.converted_to_booking_id,
	COALESCE(q.rejection_reason, ''), q.created_by, q.created_at, q.updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateParams struct {
	CustomerID               uuid.UUID
	ServiceName              string
	BasePriceCents           int64
	PackagePriceCents        int64
	PromotionDiscountPercent float64
	RegularDiscountPercent   float64
	TaxPercent               float64
	TotalCents               int64
	Notes                    string
	CreatedBy                uuid.UUID
}

// Create inserts a draft quotation. The quote number comes from a sequence
// so numbers stay gapless-enough and human readable (QUO-000123).
func (r *Repository) Create(ctx context.Context, p CreateParams) (*Quotation, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opCreate)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO quotations (
				quote_number, customer_id, service_name, status,
				base_price_cents, package_price_cents,
				promotion_discount_percent, regular_discount_percent,
				tax_percent, total_cents, notes, created_by
			)
			VALUES (
				'QUO-' || lpad(nextval('quote_number_seq')::text, 6, '0'),
				$1, $2, '%s', $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10
			)
			RETURNING *
		)
		SELECT %s FROM inserted q JOIN customers c ON c.id = q.customer_id`,
		StatusDraft, quotationColumns),
		p.CustomerID, p.ServiceName, p.BasePriceCents, p.PackagePriceCents,
		p.PromotionDiscountPercent, p.RegularDiscountPercent,
		p.TaxPercent, p.TotalCents, p.Notes, p.CreatedBy)

	return scanQuotation(row, opCreate)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opGetByID)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM quotations q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.id = $1`, quotationColumns), id)

	return scanQuotation(row, opGetByID)
}

// List returns quotations newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]Quotation, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal("repository not initialized").WithOp(opList)
	}

	var total int
	countQuery := `SELECT count(*) FROM quotations WHERE ($1 = '' OR status = $1)`
	if err := r.pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count quotations", err).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM quotations q
		JOIN customers c ON c.id = q.customer_id
		WHERE ($1 = '' OR q.status = $1)
		ORDER BY q.created_at DESC
		LIMIT $2 OFFSET $3`, quotationColumns), status, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list quotations", err).WithOp(opList)
	}
	defer rows.Close()

	quotations, err := collectQuotations(rows, opList)
	if err != nil {
		return nil, 0, err
	}
	return quotations, total, nil
}

// MarkSent moves a draft quotation to sent and stamps the expiry date.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, expiry time.Time) error {
	if r == nil || r.pool == nil {
		return apperr.Internal("repository not initialized").WithOp(opMarkSent)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE quotations SET status = $3, expiry_date = $2, updated_at = now()
		WHERE id = $1 AND status = $4`, id, expiry, StatusSent, StatusDraft)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to mark quotation sent", err).WithOp(opMarkSent)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("quotation is not in draft status").WithOp(opMarkSent)
	}
	return nil
}

// UpdateStatus transitions between the given statuses, failing with a
// conflict when the quotation is not in the expected state.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to, reason string) error {
	if r == nil || r.pool == nil {
		return apperr.Internal("repository not initialized").WithOp(opUpdateStatus)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE quotations
		SET status = $3, rejection_reason = NULLIF($4, ''), updated_at = now()
		WHERE id = $1 AND status = $2`, id, from, to, reason)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update quotation status", err).WithOp(opUpdateStatus)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict(fmt.Sprintf("quotation is not in %s status", from)).WithOp(opUpdateStatus)
	}
	return nil
}

// Convert links the quotation to the booking created from it.
func (r *Repository) Convert(ctx context.Context, id, bookingID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal("repository not initialized").WithOp(opConvert)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE quotations
		SET status = $3, converted_to_booking_id = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($4) AND converted_to_booking_id IS NULL`,
		id, bookingID, StatusConverted, []string{StatusSent, StatusApproved})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to convert quotation", err).WithOp(opConvert)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("quotation cannot be converted from its current status").WithOp(opConvert)
	}
	return nil
}

// ListExpiringBetween returns sent, unconverted quotations whose expiry
// falls inside the given window. The reminder pipeline uses deliberately
// wide windows to tolerate cron jitter.
func (r *Repository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]Quotation, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opListExpiringBetween)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM quotations q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.status = $1
		  AND q.converted_to_booking_id IS NULL
		  AND q.expiry_date >= $2
		  AND q.expiry_date <= $3`, quotationColumns), StatusSent, from, to)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list expiring quotations", err).WithOp(opListExpiringBetween)
	}
	defer rows.Close()

	return collectQuotations(rows, opListExpiringBetween)
}

// ListExpiredBefore returns sent, unconverted quotations already past expiry.
func (r *Repository) ListExpiredBefore(ctx context.Context, now time.Time) ([]Quotation, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opListExpiredBefore)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM quotations q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.status = $1
		  AND q.converted_to_booking_id IS NULL
		  AND q.expiry_date < $2`, quotationColumns), StatusSent, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list expired quotations", err).WithOp(opListExpiredBefore)
	}
	defer rows.Close()

	return collectQuotations(rows, opListExpiredBefore)
}

// MarkExpired flips a sent quotation to expired. The status guard in the
// WHERE clause makes the transition fire at most once; re-runs see zero
// rows affected and report false.
func (r *Repository) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal("repository not initialized").WithOp(opMarkExpired)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE quotations SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3 AND converted_to_booking_id IS NULL`,
		id, StatusExpired, StatusSent)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to mark quotation expired", err).WithOp(opMarkExpired)
	}
	return tag.RowsAffected() > 0, nil
}

func scanQuotation(row pgx.Row, op string) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.CustomerID, &q.CustomerName, &q.CustomerEmail,
		&q.ServiceName, &q.Status, &q.BasePriceCents, &q.PackagePriceCents,
		&q.PromotionDiscountPercent, &q.RegularDiscountPercent, &q.TaxPercent,
		&q.TotalCents, &q.Notes, &q.ExpiryDate, &q.ConvertedToBookingID,
		&q.RejectionReason, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("quotation not found").WithOp(op)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to scan quotation", err).WithOp(op)
	}
	return &q, nil
}

func collectQuotations(rows pgx.Rows, op string) ([]Quotation, error) {
	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows, op)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read quotations", err).WithOp(op)
	}
	return quotations, nil
}
