package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"

	"github.com/eventro/eventro/go/dynamo"
)

type BookingService struct {
	store *dynamo.Store
}

func NewBookingService(store *dynamo.Store) *BookingService {
	return &BookingService{store: store}
}

type BookSeatsRequest struct {
	ShowID string   `json:"show_id"`
	Seats  []string `json:"seats"`
}

// bookAttempts bounds the validate/reserve loop. A conditional reservation
// that fails is re-validated against a fresh read so the caller learns which
// seats collided; one retry covers condition failures whose conflict has
// since been resolved out from under us.
const bookAttempts = 2

// Book runs the reservation protocol: fetch the show, check the show, event
// and venue against fresh reads, check the requested seats against the
// current booked list, then reserve seats and write the booking record in one
// conditional transaction. The transaction itself re-asserts that none of the
// seats is taken, so two racing bookings of the same seat can never both
// commit.
func (s *BookingService) Book(ctx context.Context, userID string, req BookSeatsRequest) (*dynamo.Booking, error) {
	if len(req.Seats) == 0 {
		return nil, &ValidationError{Field: "seats", Rule: "must not be empty"}
	}
	seen := make(map[string]bool, len(req.Seats))
	for _, seat := range req.Seats {
		if seat == "" {
			return nil, &ValidationError{Field: "seats", Rule: "must not contain empty seat names"}
		}
		if seen[seat] {
			return nil, &ValidationError{Field: "seats", Rule: "must not repeat seats"}
		}
		seen[seat] = true
	}

	for attempt := 0; ; attempt++ {
		show, err := s.store.GetShow(ctx, req.ShowID)
		if err != nil {
			return nil, err
		}
		if show == nil {
			return nil, notFound("show", req.ShowID)
		}
		if show.IsBlocked {
			return nil, &BlockedError{Resource: "show", ID: show.ShowID}
		}

		event, err := s.store.GetEvent(ctx, show.EventID)
		if err != nil {
			return nil, err
		}
		if event == nil {
			return nil, notFound("event", show.EventID)
		}
		if event.IsBlocked {
			return nil, &BlockedError{Resource: "event", ID: event.EventID}
		}

		venue, err := s.store.GetVenue(ctx, show.VenueID)
		if err != nil {
			return nil, err
		}
		if venue == nil {
			return nil, notFound("venue", show.VenueID)
		}
		if venue.IsBlocked {
			return nil, &BlockedError{Resource: "venue", ID: venue.VenueID}
		}

		if taken := seatIntersection(show.BookedSeats, req.Seats); len(taken) > 0 {
			return nil, &SeatsBookedError{Seats: taken}
		}

		booking := dynamo.Booking{
			BookingID:     xid.New().String(),
			UserID:        userID,
			ShowID:        show.ShowID,
			TimeBooked:    time.Now().UTC().Format("2006-01-02 15:04:05"),
			TotalPrice:    show.Price * len(req.Seats),
			Seats:         req.Seats,
			VenueCity:     venue.City,
			VenueID:       venue.VenueID,
			VenueName:     venue.Name,
			VenueState:    venue.State,
			EventName:     event.Name,
			EventDuration: event.Duration,
			EventID:       event.EventID,
			ShowDate:      show.ShowDate,
		}
		err = s.store.CreateBooking(ctx, booking, *show)
		if err == nil {
			return &booking, nil
		}
		if !errors.Is(err, dynamo.ErrSeatConflict) {
			return nil, err
		}
		if attempt+1 >= bookAttempts {
			return nil, &SeatsBookedError{Seats: req.Seats}
		}
		// The conditional write lost a race; go around and re-validate so
		// the error names the seats that actually collided.
	}
}

// UserBookings lists the caller's bookings in stored key order (show date,
// then booking id).
func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]dynamo.Booking, error) {
	return s.store.BookingsForUser(ctx, userID)
}

func seatIntersection(booked, requested []string) []string {
	taken := make(map[string]bool, len(booked))
	for _, seat := range booked {
		taken[seat] = true
	}
	var conflicts []string
	for _, seat := range requested {
		if taken[seat] {
			conflicts = append(conflicts, seat)
		}
	}
	return conflicts
}
