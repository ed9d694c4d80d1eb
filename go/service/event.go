package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/xid"

	"github.com/eventro/eventro/go/dynamo"
)

type EventService struct {
	store   *dynamo.Store
	artists *ArtistService
}

func NewEventService(store *dynamo.Store, artists *ArtistService) *EventService {
	return &EventService{store: store, artists: artists}
}

type CreateEventRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Category    string   `json:"category"`
	ArtistIDs   []string `json:"artist_ids"`
}

// Create resolves the artist line-up, denormalizes the artist names into the
// event, and persists it. A missing artist fails the whole call.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*dynamo.Event, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Rule: "must not be empty"}
	}
	if req.Duration <= 0 {
		return nil, &ValidationError{Field: "duration", Rule: "must be positive"}
	}

	artists, err := s.artists.GetBatch(ctx, req.ArtistIDs)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}

	event := dynamo.Event{
		EventID:     xid.New().String(),
		Name:        strings.ToLower(req.Name),
		Description: req.Description,
		Duration:    req.Duration,
		Category:    req.Category,
		ArtistIDs:   req.ArtistIDs,
		ArtistNames: names,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, dynamo.ErrAlreadyExists) {
			return nil, &AlreadyExistsError{Resource: "event"}
		}
		return nil, err
	}
	return &event, nil
}

// GetByID hides blocked events from everyone but admins; a hidden event is
// indistinguishable from an absent one.
func (s *EventService) GetByID(ctx context.Context, eventID string, role dynamo.Role) (*dynamo.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || (event.IsBlocked && role != dynamo.RoleAdmin) {
		return nil, notFound("event", eventID)
	}
	return event, nil
}

// BrowseByCity lists events playing in a city. Non-admins only ever see
// unblocked events; admins can pass blocked to narrow to one side, or nil
// for everything.
func (s *EventService) BrowseByCity(ctx context.Context, city string, blocked *bool, role dynamo.Role) ([]dynamo.Event, error) {
	events, err := s.store.EventsByCity(ctx, city, "")
	if err != nil {
		return nil, err
	}
	if role != dynamo.RoleAdmin {
		return filterBlocked(events, false), nil
	}
	if blocked != nil {
		return filterBlocked(events, *blocked), nil
	}
	return events, nil
}

// BrowseByName searches events by lowercase name prefix. A customer browsing
// within a city searches that city's listings; everyone else searches
// globally. Non-admin results are unblocked only.
func (s *EventService) BrowseByName(ctx context.Context, name, city string, role dynamo.Role) ([]dynamo.Event, error) {
	prefix := strings.ToLower(name)

	var (
		events []dynamo.Event
		err    error
	)
	if city != "" && role == dynamo.RoleCustomer {
		events, err = s.store.EventsByCity(ctx, city, prefix)
	} else {
		events, err = s.store.EventsByName(ctx, prefix)
	}
	if err != nil {
		return nil, err
	}
	if role != dynamo.RoleAdmin {
		events = filterBlocked(events, false)
	}
	return events, nil
}

// HostEvents lists the events with shows at any of the host's venues.
func (s *EventService) HostEvents(ctx context.Context, hostID string) ([]dynamo.Event, error) {
	return s.store.EventsOfHost(ctx, hostID)
}

// Update flips the blocked flag on an existing event.
func (s *EventService) Update(ctx context.Context, eventID string, blocked bool) error {
	if err := s.store.SetEventBlocked(ctx, eventID, blocked); err != nil {
		if errors.Is(err, dynamo.ErrNotExists) {
			return notFound("event", eventID)
		}
		return err
	}
	return nil
}

func filterBlocked(events []dynamo.Event, blocked bool) []dynamo.Event {
	out := make([]dynamo.Event, 0, len(events))
	for _, e := range events {
		if e.IsBlocked == blocked {
			out = append(out, e)
		}
	}
	return out
}
