package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eventro/eventro/go/dynamo"
)

func TestCreateEvent_DenormalizesArtists(t *testing.T) {
	store, svc := testServices(t)
	seedArtist(t, store, "a1", "Artist One")
	seedArtist(t, store, "a2", "Artist Two")

	event, err := svc.events.Create(context.Background(), CreateEventRequest{
		Name:        "Rock Night",
		Description: "desc",
		Duration:    120,
		Category:    "music",
		ArtistIDs:   []string{"a1", "a2"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.Name != "rock night" {
		t.Errorf("name = %q, want lowercased", event.Name)
	}
	if len(event.ArtistNames) != 2 || event.ArtistNames[0] != "Artist One" || event.ArtistNames[1] != "Artist Two" {
		t.Errorf("artist names = %v", event.ArtistNames)
	}
	if event.IsBlocked {
		t.Error("new event must not be blocked")
	}
}

func TestCreateEvent_MissingArtist(t *testing.T) {
	store, svc := testServices(t)
	seedArtist(t, store, "a1", "Artist One")

	_, err := svc.events.Create(context.Background(), CreateEventRequest{
		Name:      "rock night",
		Duration:  120,
		ArtistIDs: []string{"a1", "ghost"},
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.Resource != "artist" {
		t.Errorf("resource = %s, want artist", nf.Resource)
	}
}

func TestEventGetByID_HidesBlocked(t *testing.T) {
	store, svc := testServices(t)
	seedEvent(t, store, "e1", "rock night", true)
	ctx := context.Background()

	var nf *NotFoundError
	if _, err := svc.events.GetByID(ctx, "e1", dynamo.RoleCustomer); !errors.As(err, &nf) {
		t.Errorf("customer view of blocked event = %v, want NotFoundError", err)
	}

	event, err := svc.events.GetByID(ctx, "e1", dynamo.RoleAdmin)
	if err != nil {
		t.Fatalf("admin view of blocked event: %v", err)
	}
	if !event.IsBlocked {
		t.Error("admin must see the blocked flag")
	}
}

// seedCityListings puts one blocked and one unblocked event on stage in the
// same city, via the show-creation records that feed the city index.
func seedCityListings(t *testing.T, store *dynamo.Store) {
	t.Helper()
	venue := seedVenue(t, store, "v1", "h1", "bengaluru")
	open := seedEvent(t, store, "e-open", "open mic", false)
	blocked := seedEvent(t, store, "e-blocked", "banned gig", false)
	seedShow(t, store, "s1", venue, open)
	seedShow(t, store, "s2", venue, blocked)
	if err := store.SetEventBlocked(context.Background(), "e-blocked", true); err != nil {
		t.Fatalf("SetEventBlocked: %v", err)
	}
}

func TestBrowseByCity_Visibility(t *testing.T) {
	store, svc := testServices(t)
	seedCityListings(t, store)
	ctx := context.Background()

	customer, err := svc.events.BrowseByCity(ctx, "bengaluru", nil, dynamo.RoleCustomer)
	if err != nil {
		t.Fatalf("customer browse: %v", err)
	}
	if len(customer) != 1 || customer[0].EventID != "e-open" {
		t.Errorf("customer sees %v, want only e-open", eventIDs(customer))
	}

	blocked := true
	adminBlocked, err := svc.events.BrowseByCity(ctx, "bengaluru", &blocked, dynamo.RoleAdmin)
	if err != nil {
		t.Fatalf("admin blocked browse: %v", err)
	}
	if len(adminBlocked) != 1 || adminBlocked[0].EventID != "e-blocked" {
		t.Errorf("admin blocked-only sees %v, want only e-blocked", eventIDs(adminBlocked))
	}

	adminAll, err := svc.events.BrowseByCity(ctx, "bengaluru", nil, dynamo.RoleAdmin)
	if err != nil {
		t.Fatalf("admin browse: %v", err)
	}
	if len(adminAll) != 2 {
		t.Errorf("admin sees %v, want both events", eventIDs(adminAll))
	}
}

func TestBrowseByName(t *testing.T) {
	store, svc := testServices(t)
	seedCityListings(t, store)
	ctx := context.Background()

	// Customer with a city searches that city's index.
	events, err := svc.events.BrowseByName(ctx, "Open", "bengaluru", dynamo.RoleCustomer)
	if err != nil {
		t.Fatalf("customer city search: %v", err)
	}
	if len(events) != 1 || events[0].EventID != "e-open" {
		t.Errorf("city search = %v, want e-open", eventIDs(events))
	}

	// Admin searches globally and sees blocked events too.
	events, err = svc.events.BrowseByName(ctx, "banned", "", dynamo.RoleAdmin)
	if err != nil {
		t.Fatalf("admin global search: %v", err)
	}
	if len(events) != 1 || events[0].EventID != "e-blocked" {
		t.Errorf("global search = %v, want e-blocked", eventIDs(events))
	}

	// Customer searching globally never sees blocked events.
	events, err = svc.events.BrowseByName(ctx, "banned", "", dynamo.RoleCustomer)
	if err != nil {
		t.Fatalf("customer global search: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("customer global search = %v, want empty", eventIDs(events))
	}
}

func TestEventUpdate_Missing(t *testing.T) {
	_, svc := testServices(t)

	var nf *NotFoundError
	if err := svc.events.Update(context.Background(), "ghost", true); !errors.As(err, &nf) {
		t.Errorf("update of missing event = %v, want NotFoundError", err)
	}
}

func eventIDs(events []dynamo.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.EventID
	}
	return ids
}
