// Package handler exposes the quotation HTTP endpoints.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"fleet_portal_backend/internal/quotations/repository"
	"fleet_portal_backend/internal/quotations/service"
	"fleet_portal_backend/internal/quotations/transport"
	"fleet_portal_backend/platform/httpkit"
	"fleet_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid quotation id"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid customer id", nil)
		return
	}

	q, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		CustomerID:               customerID,
		ServiceName:              req.ServiceName,
		BasePriceCents:           req.BasePriceCents,
		PackagePriceCents:        req.PackagePriceCents,
		PromotionDiscountPercent: req.PromotionDiscountPercent,
		RegularDiscountPercent:   req.RegularDiscountPercent,
		TaxPercent:               req.TaxPercent,
		Notes:                    req.Notes,
		CreatedBy:                identity.UserID(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, toResponse(q))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	q, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(q))
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")

	quotations, total, err := h.svc.List(c.Request.Context(), status, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.QuotationResponse, 0, len(quotations))
	for i := range quotations {
		out = append(out, toResponse(&quotations[i]))
	}

	httpkit.OK(c, transport.ListQuotationsResponse{
		Quotations: out,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	})
}

func (h *Handler) Send(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.SendQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	q, err := h.svc.Send(c.Request.Context(), id, time.Duration(req.ValidityHours)*time.Hour)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(q))
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	q, err := h.svc.Approve(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(q))
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.RejectQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	q, err := h.svc.Reject(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(q))
}

func (h *Handler) Convert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.ConvertQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid booking id", nil)
		return
	}

	q, err := h.svc.Convert(c.Request.Context(), id, bookingID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(q))
}

// CalculatePrice previews a price breakdown without persisting anything.
// The dashboard calls this while the quote form is being edited.
func (h *Handler) CalculatePrice(c *gin.Context) {
	var req transport.CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	breakdown := service.CalculatePrice(service.PriceInput{
		BasePriceCents:           req.BasePriceCents,
		PackagePriceCents:        req.PackagePriceCents,
		PromotionDiscountPercent: req.PromotionDiscountPercent,
		RegularDiscountPercent:   req.RegularDiscountPercent,
		TaxPercent:               req.TaxPercent,
	})

	httpkit.OK(c, breakdown.ToResponse())
}

func toResponse(q *repository.Quotation) transport.QuotationResponse {
	resp := transport.QuotationResponse{
		ID:                       q.ID.String(),
		QuoteNumber:              q.QuoteNumber,
		CustomerID:               q.CustomerID.String(),
		CustomerName:             q.CustomerName,
		CustomerEmail:            q.CustomerEmail,
		ServiceName:              q.ServiceName,
		Status:                   q.Status,
		BasePriceCents:           q.BasePriceCents,
		PackagePriceCents:        q.PackagePriceCents,
		PromotionDiscountPercent: q.PromotionDiscountPercent,
		RegularDiscountPercent:   q.RegularDiscountPercent,
		TaxPercent:               q.TaxPercent,
		TotalCents:               q.TotalCents,
		Notes:                    q.Notes,
		ExpiryDate:               q.ExpiryDate,
		RejectionReason:          q.RejectionReason,
		CreatedBy:                q.CreatedBy.String(),
		CreatedAt:                q.CreatedAt,
		UpdatedAt:                q.UpdatedAt,
	}
	if q.ConvertedToBookingID != nil {
		id := q.ConvertedToBookingID.String()
		resp.ConvertedToBookingID = &id
	}
	return resp
}
