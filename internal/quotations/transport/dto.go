// Package transport defines the wire-level request and response types for quotations.
package transport

import "time"

type CreateQuotationRequest struct {
	CustomerID               string  `json:"customerId" validate:"required,uuid"`
	ServiceName              string  `json:"serviceName" validate:"required,min=2,max=200"`
	BasePriceCents           int64   `json:"basePriceCents" validate:"min=0"`
	PackagePriceCents        int64   `json:"packagePriceCents" validate:"min=0"`
	PromotionDiscountPercent float64 `json:"promotionDiscountPercent" validate:"min=0,max=100"`
	RegularDiscountPercent   float64 `json:"regularDiscountPercent" validate:"min=0,max=100"`
	TaxPercent               float64 `json:"taxPercent" validate:"min=0,max=100"`
	Notes                    string  `json:"notes" validate:"omitempty,max=2000"`
}

type SendQuotationRequest struct {
	// ValidityHours overrides the configured default quotation validity.
	ValidityHours int `json:"validityHours" validate:"omitempty,min=1,max=720"`
}

type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type ConvertQuotationRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

type CalculatePriceRequest struct {
	BasePriceCents           int64   `json:"basePriceCents" validate:"min=0"`
	PackagePriceCents        int64   `json:"packagePriceCents" validate:"min=0"`
	PromotionDiscountPercent float64 `json:"promotionDiscountPercent" validate:"min=0"`
	RegularDiscountPercent   float64 `json:"regularDiscountPercent" validate:"min=0"`
	TaxPercent               float64 `json:"taxPercent" validate:"min=0,max=100"`
}

type PriceBreakdownResponse struct {
	SubtotalCents int64 `json:"subtotalCents"`
	DiscountCents int64 `json:"discountCents"`
	TaxableCents  int64 `json:"taxableCents"`
	TaxCents      int64 `json:"taxCents"`
	TotalCents    int64 `json:"totalCents"`
}

type QuotationResponse struct {
	ID                       string     `json:"id"`
	QuoteNumber              string     `json:"quoteNumber"`
	CustomerID               string     `json:"customerId"`
	CustomerName             string     `json:"customerName"`
	CustomerEmail            string     `json:"customerEmail"`
	ServiceName              string     `json:"serviceName"`
	Status                   string     `json:"status"`
	BasePriceCents           int64      `json:"basePriceCents"`
	PackagePriceCents        int64      `json:"packagePriceCents"`
	PromotionDiscountPercent float64    `json:"promotionDiscountPercent"`
	RegularDiscountPercent   float64    `json:"regularDiscountPercent"`
	TaxPercent               float64    `json:"taxPercent"`
	TotalCents               int64      `json:"totalCents"`
	Notes                    string     `json:"notes,omitempty"`
	ExpiryDate               *time.Time `json:"expiryDate,omitempty"`
	ConvertedToBookingID     *string    `json:"convertedToBookingId,omitempty"`
	RejectionReason          string     `json:"rejectionReason,omitempty"`
	CreatedBy                string     `json:"createdBy"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

type ListQuotationsResponse struct {
	Quotations []QuotationResponse `json:"quotations"`
	Total      int                 `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
