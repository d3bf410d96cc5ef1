// Package handler exposes the booking HTTP endpoints.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"fleet_portal_backend/internal/bookings/repository"
	"fleet_portal_backend/internal/bookings/service"
	"fleet_portal_backend/internal/bookings/transport"
	"fleet_portal_backend/platform/httpkit"
	"fleet_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid booking id"
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

	var req transport.CreateBookingRequest
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

	var quotationID *uuid.UUID
	if req.QuotationID != "" {
		parsed, err := uuid.Parse(req.QuotationID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid quotation id", nil)
			return
		}
		quotationID = &parsed
	}

	b, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		CustomerID:      customerID,
		QuotationID:     quotationID,
		ServiceName:     req.ServiceName,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Date:            req.Date,
		Time:            req.Time,
		Notes:           req.Notes,
		CreatedBy:       identity.UserID(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, toResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	b, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")

	bookings, total, err := h.svc.List(c.Request.Context(), status, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toResponse(&bookings[i]))
	}

	httpkit.OK(c, transport.ListBookingsResponse{
		Bookings: out,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	b, err := h.svc.Confirm(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(b))
}

func (h *Handler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.AssignBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid driver id", nil)
		return
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid vehicle id", nil)
		return
	}

	b, err := h.svc.Assign(c.Request.Context(), id, driverID, vehicleID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(b))
}

func (h *Handler) Start(c *gin.Context) {
	h.simpleTransition(c, h.svc.Start)
}

func (h *Handler) Complete(c *gin.Context) {
	h.simpleTransition(c, h.svc.Complete)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), id, req.Reason); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) simpleTransition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := fn(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func toResponse(b *repository.Booking) transport.BookingResponse {
	resp := transport.BookingResponse{
		ID:              b.ID.String(),
		BookingNo:       b.BookingNo,
		CustomerID:      b.CustomerID.String(),
		CustomerName:    b.CustomerName,
		ServiceName:     b.ServiceName,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		Date:            b.Date.Format("2006-01-02"),
		Time:            b.Time,
		Status:          b.Status,
		Notes:           b.Notes,
		CreatedBy:       b.CreatedBy.String(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.QuotationID != nil {
		id := b.QuotationID.String()
		resp.QuotationID = &id
	}
	if b.DriverID != nil {
		id := b.DriverID.String()
		resp.DriverID = &id
	}
	if b.VehicleID != nil {
		id := b.VehicleID.String()
		resp.VehicleID = &id
	}
	return resp
}
