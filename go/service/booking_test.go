package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eventro/eventro/go/dynamo"
)

func bookingFixture(t *testing.T, store *dynamo.Store) dynamo.Show {
	t.Helper()
	venue := seedVenue(t, store, "v1", "h1", "bengaluru")
	event := seedEvent(t, store, "e1", "rock night", false)
	return seedShow(t, store, "s1", venue, event)
}

func TestBook(t *testing.T) {
	store, svc := testServices(t)
	show := bookingFixture(t, store)
	ctx := context.Background()

	booking, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1", "A2"}})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if booking.TotalPrice != 200 {
		t.Errorf("total price = %d, want 200", booking.TotalPrice)
	}
	if booking.EventName != "rock night" || booking.VenueName != "grand hall v1" {
		t.Errorf("denormalized fields = %+v", booking)
	}
	if booking.ShowDate != show.ShowDate {
		t.Errorf("show date = %s, want %s", booking.ShowDate, show.ShowDate)
	}

	// Booking an already-sold seat names the conflict.
	_, err = svc.bookings.Book(ctx, "u2", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1", "B1"}})
	var taken *SeatsBookedError
	if !errors.As(err, &taken) {
		t.Fatalf("overlap error = %v, want SeatsBookedError", err)
	}
	if len(taken.Seats) != 1 || taken.Seats[0] != "A1" {
		t.Errorf("conflicting seats = %v, want [A1]", taken.Seats)
	}
}

func TestBook_Validation(t *testing.T) {
	store, svc := testServices(t)
	show := bookingFixture(t, store)
	ctx := context.Background()

	var verr *ValidationError
	if _, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID}); !errors.As(err, &verr) {
		t.Errorf("no seats = %v, want ValidationError", err)
	}
	if _, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1", "A1"}}); !errors.As(err, &verr) {
		t.Errorf("repeated seat = %v, want ValidationError", err)
	}
}

func TestBook_MissingShow(t *testing.T) {
	_, svc := testServices(t)

	var nf *NotFoundError
	_, err := svc.bookings.Book(context.Background(), "u1", BookSeatsRequest{ShowID: "ghost", Seats: []string{"A1"}})
	if !errors.As(err, &nf) || nf.Resource != "show" {
		t.Fatalf("err = %v, want show NotFoundError", err)
	}
}

func TestBook_BlockedResources(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked show", func(t *testing.T) {
		store, svc := testServices(t)
		show := bookingFixture(t, store)
		if err := svc.shows.Update(ctx, show.ShowID, true); err != nil {
			t.Fatalf("block show: %v", err)
		}
		_, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1"}})
		var blocked *BlockedError
		if !errors.As(err, &blocked) || blocked.Resource != "show" {
			t.Fatalf("err = %v, want show BlockedError", err)
		}
	})

	t.Run("blocked event", func(t *testing.T) {
		store, svc := testServices(t)
		show := bookingFixture(t, store)
		if err := store.SetEventBlocked(ctx, "e1", true); err != nil {
			t.Fatalf("block event: %v", err)
		}
		_, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1"}})
		var blocked *BlockedError
		if !errors.As(err, &blocked) || blocked.Resource != "event" {
			t.Fatalf("err = %v, want event BlockedError", err)
		}
	})

	t.Run("blocked venue", func(t *testing.T) {
		store, svc := testServices(t)
		show := bookingFixture(t, store)
		if err := store.SetVenueBlocked(ctx, "v1", "h1", true); err != nil {
			t.Fatalf("block venue: %v", err)
		}
		_, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1"}})
		var blocked *BlockedError
		if !errors.As(err, &blocked) || blocked.Resource != "venue" {
			t.Fatalf("err = %v, want venue BlockedError", err)
		}
	})
}

func TestUserBookings(t *testing.T) {
	store, svc := testServices(t)
	show := bookingFixture(t, store)
	ctx := context.Background()

	if _, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A1"}}); err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := svc.bookings.Book(ctx, "u1", BookSeatsRequest{ShowID: show.ShowID, Seats: []string{"A2"}}); err != nil {
		t.Fatalf("Book: %v", err)
	}

	bookings, err := svc.bookings.UserBookings(ctx, "u1")
	if err != nil {
		t.Fatalf("UserBookings: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("got %d bookings, want 2", len(bookings))
	}
	for _, b := range bookings {
		if b.UserID != "u1" || b.ShowID != show.ShowID {
			t.Errorf("booking = %+v", b)
		}
	}
}
