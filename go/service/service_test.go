package service

import (
	"context"
	"testing"
	"time"

	"github.com/eventro/eventro/go/auth"
	"github.com/eventro/eventro/go/dynamo"
	"github.com/eventro/eventro/go/dynamo/dynamotest"
)

func testServices(t *testing.T) (*dynamo.Store, *services) {
	t.Helper()
	store := dynamo.NewWithClient(dynamotest.New(), "eventro-test")
	artists := NewArtistService(store)
	return store, &services{
		artists:  artists,
		events:   NewEventService(store, artists),
		venues:   NewVenueService(store),
		shows:    NewShowService(store),
		bookings: NewBookingService(store),
		users:    NewUserService(store, auth.NewIssuer("test-secret", time.Hour)),
	}
}

type services struct {
	artists  *ArtistService
	events   *EventService
	venues   *VenueService
	shows    *ShowService
	bookings *BookingService
	users    *UserService
}

func seedArtist(t *testing.T, store *dynamo.Store, id, name string) {
	t.Helper()
	if err := store.CreateArtist(context.Background(), dynamo.Artist{ArtistID: id, Name: name}); err != nil {
		t.Fatalf("seed artist %s: %v", id, err)
	}
}

func seedEvent(t *testing.T, store *dynamo.Store, id, name string, blocked bool) dynamo.Event {
	t.Helper()
	event := dynamo.Event{
		EventID:     id,
		Name:        name,
		Description: "desc",
		Duration:    120,
		Category:    "music",
		IsBlocked:   blocked,
		ArtistIDs:   []string{},
		ArtistNames: []string{},
	}
	if err := store.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("seed event %s: %v", id, err)
	}
	return event
}

func seedVenue(t *testing.T, store *dynamo.Store, id, host, city string) dynamo.Venue {
	t.Helper()
	venue := dynamo.Venue{
		VenueID: id,
		Name:    "grand hall " + id,
		HostID:  host,
		City:    city,
		State:   "karnataka",
	}
	if err := store.CreateVenue(context.Background(), venue); err != nil {
		t.Fatalf("seed venue %s: %v", id, err)
	}
	return venue
}

func seedShow(t *testing.T, store *dynamo.Store, id string, venue dynamo.Venue, event dynamo.Event) dynamo.Show {
	t.Helper()
	show := dynamo.Show{
		ShowID:   id,
		VenueID:  venue.VenueID,
		EventID:  event.EventID,
		Price:    100,
		ShowDate: "2026-09-01",
		ShowTime: "19:30",
	}
	if err := store.CreateShow(context.Background(), show, venue, event); err != nil {
		t.Fatalf("seed show %s: %v", id, err)
	}
	show.BookedSeats = []string{}
	return show
}
