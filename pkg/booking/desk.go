// Package booking implements the coach ticket desk the assistant can call into.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// SeatPrice is the fixed price of one seat.
	SeatPrice int64 = 150000
	// FakeTicketID is the identifier every booking receives.
	FakeTicketID = "ABC12345"

	fakeRemainingSeats = 12
)

// ErrInvalidArguments is returned when a desk operation is missing required input.
var ErrInvalidArguments = errors.New("invalid arguments")

// TicketInfo describes availability on a route.
type TicketInfo struct {
	Route          string `json:"route"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	RemainingSeats int    `json:"remaining_seats"`
	Price          int64  `json:"price"`
}

// Booking is the confirmation of a ticket purchase.
type Booking struct {
	Status     string `json:"status"`
	Route      string `json:"route"`
	Time       string `json:"time"`
	Seats      int    `json:"seats"`
	TicketID   string `json:"ticket_id"`
	TotalPrice int64  `json:"total_price"`
}

// Cancellation is the result of cancelling a ticket.
type Cancellation struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Refund  int64  `json:"refund"`
}

// Desk is the ticketing backend.
type Desk interface {
	GetTicketInfo(ctx context.Context, route, date, time string) (TicketInfo, error)
	BookTicket(ctx context.Context, route, time string, seats int) (Booking, error)
	CancelTicket(ctx context.Context, ticketID string) (Cancellation, error)
}

// FakeDesk answers every request with fixed data.
type FakeDesk struct{}

// NewFakeDesk returns a desk backed by canned responses.
func NewFakeDesk() *FakeDesk {
	return &FakeDesk{}
}

// GetTicketInfo reports the route as available.
func (d *FakeDesk) GetTicketInfo(ctx context.Context, route, date, time string) (TicketInfo, error) {
	if err := require("route", route, "date", date, "time", time); err != nil {
		return TicketInfo{}, err
	}
	return TicketInfo{
		Route:          route,
		Date:           date,
		Time:           time,
		Status:         "available",
		RemainingSeats: fakeRemainingSeats,
		Price:          SeatPrice,
	}, nil
}

// BookTicket books seats and prices them at SeatPrice each.
func (d *FakeDesk) BookTicket(ctx context.Context, route, time string, seats int) (Booking, error) {
	if err := require("route", route, "time", time); err != nil {
		return Booking{}, err
	}
	if seats <= 0 {
		return Booking{}, fmt.Errorf("%w: seats must be positive, got %d", ErrInvalidArguments, seats)
	}
	return Booking{
		Status:     "success",
		Route:      route,
		Time:       time,
		Seats:      seats,
		TicketID:   FakeTicketID,
		TotalPrice: int64(seats) * SeatPrice,
	}, nil
}

// CancelTicket cancels a ticket and refunds one seat.
func (d *FakeDesk) CancelTicket(ctx context.Context, ticketID string) (Cancellation, error) {
	if err := require("ticket_id", ticketID); err != nil {
		return Cancellation{}, err
	}
	return Cancellation{
		Status:  "success",
		Message: fmt.Sprintf("Ticket %s has been cancelled.", ticketID),
		Refund:  SeatPrice,
	}, nil
}

// require takes name/value pairs and fails on the first blank value.
func require(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidArguments, pairs[i])
		}
	}
	return nil
}

var _ Desk = (*FakeDesk)(nil)
