package service

import (
	"math"

	"fleet_portal_backend/internal/quotations/transport"
)

// PriceInput holds the raw pricing components of a quotation.
type PriceInput struct {
	BasePriceCents           int64
	PackagePriceCents        int64
	PromotionDiscountPercent float64
	RegularDiscountPercent   float64
	TaxPercent               float64
}

// PriceBreakdown is the result of a price calculation.
type PriceBreakdown struct {
	SubtotalCents int64
	DiscountCents int64
	TaxableCents  int64
	TaxCents      int64
	TotalCents    int64
}

// roundCents rounds a float to the nearest cent (integer)
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// CalculatePrice computes the quotation total. The calculation order is
// fixed: base plus package, discounts off that subtotal, the discounted
// amount clamped at zero, and tax applied to the clamped amount. Every
// renderer (API, email, PDF) goes through this one function so totals
// never drift between surfaces.
func CalculatePrice(in PriceInput) PriceBreakdown {
	subtotal := in.BasePriceCents + in.PackagePriceCents

	discountPercent := in.PromotionDiscountPercent + in.RegularDiscountPercent
	discount := roundCents(float64(subtotal) * discountPercent / 100.0)

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}

	tax := roundCents(float64(taxable) * in.TaxPercent / 100.0)

	return PriceBreakdown{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TaxableCents:  taxable,
		TaxCents:      tax,
		TotalCents:    taxable + tax,
	}
}

// ToResponse converts a breakdown to its transport representation.
func (b PriceBreakdown) ToResponse() transport.PriceBreakdownResponse {
	return transport.PriceBreakdownResponse{
		SubtotalCents: b.SubtotalCents,
		DiscountCents: b.DiscountCents,
		TaxableCents:  b.TaxableCents,
		TaxCents:      b.TaxCents,
		TotalCents:    b.TotalCents,
	}
}
