// Package transport defines the wire-level request and response types for bookings.
package transport

import "time"

type CreateBookingRequest struct {
	CustomerID      string `json:"customerId" validate:"required,uuid"`
	QuotationID     string `json:"quotationId" validate:"omitempty,uuid"`
	ServiceName     string `json:"serviceName" validate:"required,min=2,max=200"`
	PickupLocation  string `json:"pickupLocation" validate:"omitempty,max=500"`
	DropoffLocation string `json:"dropoffLocation" validate:"omitempty,max=500"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,datetime=15:04"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

type AssignBookingRequest struct {
	DriverID  string `json:"driverId" validate:"required,uuid"`
	VehicleID string `json:"vehicleId" validate:"required,uuid"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type BookingResponse struct {
	ID              string    `json:"id"`
	BookingNo       string    `json:"bookingNo"`
	CustomerID      string    `json:"customerId"`
	CustomerName    string    `json:"customerName"`
	QuotationID     *string   `json:"quotationId,omitempty"`
	DriverID        *string   `json:"driverId,omitempty"`
	VehicleID       *string   `json:"vehicleId,omitempty"`
	ServiceName     string    `json:"serviceName"`
	PickupLocation  string    `json:"pickupLocation,omitempty"`
	DropoffLocation string    `json:"dropoffLocation,omitempty"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
