package service

import (
	"context"
	"errors"

	"github.com/rs/xid"

	"github.com/eventro/eventro/go/dynamo"
)

// Identity is the decoded caller passed down from the auth boundary. The
// services trust it without re-verifying anything.
type Identity struct {
	UserID string
	Role   dynamo.Role
}

type ShowService struct {
	store *dynamo.Store
}

func NewShowService(store *dynamo.Store) *ShowService {
	return &ShowService{store: store}
}

type CreateShowRequest struct {
	VenueID  string `json:"venue_id"`
	EventID  string `json:"event_id"`
	Price    int    `json:"price"`
	ShowDate string `json:"show_date"`
	ShowTime string `json:"show_time"`
}

// VenueSummary is the venue slice embedded in show responses.
type VenueSummary struct {
	VenueID string `json:"venue_id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state"`
	HostID  string `json:"host_id"`
}

// ShowDetail is a show plus the venue it plays at.
type ShowDetail struct {
	dynamo.Show
	Venue VenueSummary `json:"venue"`
}

// Create persists the show and its four index records. Both the venue and
// the event must exist; creation against a blocked event is refused.
func (s *ShowService) Create(ctx context.Context, req CreateShowRequest) (*dynamo.Show, error) {
	if req.Price <= 0 {
		return nil, &ValidationError{Field: "price", Rule: "must be positive"}
	}
	if _, err := dynamo.ShowExpiry(req.ShowDate, req.ShowTime); err != nil {
		return nil, &ValidationError{Field: "show_date", Rule: "must be YYYY-MM-DD with time HH:MM"}
	}

	venue, err := s.store.GetVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, notFound("venue", req.VenueID)
	}
	event, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, notFound("event", req.EventID)
	}

	show := dynamo.Show{
		ShowID:   xid.New().String(),
		VenueID:  venue.VenueID,
		EventID:  event.EventID,
		Price:    req.Price,
		ShowDate: req.ShowDate,
		ShowTime: req.ShowTime,
	}
	if err := s.store.CreateShow(ctx, show, *venue, *event); err != nil {
		if errors.Is(err, dynamo.ErrEventBlocked) {
			return nil, &BlockedError{Resource: "event", ID: event.EventID}
		}
		return nil, err
	}
	show.BookedSeats = []string{}
	return &show, nil
}

// GetByID returns the show with its venue summary. A blocked show, or any
// show at a blocked venue, is hidden as if absent.
func (s *ShowService) GetByID(ctx context.Context, showID string) (*ShowDetail, error) {
	show, err := s.store.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show == nil || show.IsBlocked {
		return nil, notFound("show", showID)
	}
	venue, err := s.store.GetVenue(ctx, show.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil || venue.IsBlocked {
		return nil, notFound("show", showID)
	}
	return &ShowDetail{
		Show: *show,
		Venue: VenueSummary{
			VenueID: venue.VenueID,
			Name:    venue.Name,
			City:    venue.City,
			State:   venue.State,
			HostID:  venue.HostID,
		},
	}, nil
}

// Update flips the blocked flag on the show's details and date-index records
// together.
func (s *ShowService) Update(ctx context.Context, showID string, blocked bool) error {
	show, err := s.store.GetShow(ctx, showID)
	if err != nil {
		return err
	}
	if show == nil {
		return notFound("show", showID)
	}
	venue, err := s.store.GetVenue(ctx, show.VenueID)
	if err != nil {
		return err
	}
	if venue == nil {
		return notFound("venue", show.VenueID)
	}
	if err := s.store.SetShowBlocked(ctx, *show, *venue, blocked); err != nil {
		if errors.Is(err, dynamo.ErrNotExists) {
			return notFound("show", showID)
		}
		return err
	}
	return nil
}

// EventShows lists an event's shows in a city, optionally narrowed to one
// date. For customers a blocked or absent event yields an empty listing and
// blocked shows are dropped; every caller loses shows at blocked venues;
// hosts additionally only see shows at their own venues.
func (s *ShowService) EventShows(ctx context.Context, eventID, city, date string, caller Identity) ([]ShowDetail, error) {
	if caller.Role == dynamo.RoleCustomer {
		event, err := s.store.GetEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event == nil || event.IsBlocked {
			return []ShowDetail{}, nil
		}
	}

	var (
		shows []dynamo.Show
		err   error
	)
	if date == "" {
		shows, err = s.store.ShowsByEventCity(ctx, eventID, city)
	} else {
		shows, err = s.store.ShowsByEventDate(ctx, eventID, city, date)
	}
	if err != nil {
		return nil, err
	}

	if caller.Role == dynamo.RoleCustomer {
		visible := make([]dynamo.Show, 0, len(shows))
		for _, sh := range shows {
			if !sh.IsBlocked {
				visible = append(visible, sh)
			}
		}
		shows = visible
	}

	venues, err := s.venuesFor(ctx, shows)
	if err != nil {
		return nil, err
	}

	out := make([]ShowDetail, 0, len(shows))
	for _, sh := range shows {
		venue, ok := venues[sh.VenueID]
		if !ok || venue.IsBlocked {
			continue
		}
		if caller.Role == dynamo.RoleHost && venue.HostID != caller.UserID {
			continue
		}
		out = append(out, ShowDetail{
			Show: sh,
			Venue: VenueSummary{
				VenueID: venue.VenueID,
				Name:    venue.Name,
				City:    venue.City,
				State:   venue.State,
				HostID:  venue.HostID,
			},
		})
	}
	return out, nil
}

// venuesFor batch-fetches the distinct venues a show list references.
func (s *ShowService) venuesFor(ctx context.Context, shows []dynamo.Show) (map[string]dynamo.Venue, error) {
	seen := make(map[string]bool, len(shows))
	ids := make([]string, 0, len(shows))
	for _, sh := range shows {
		if !seen[sh.VenueID] {
			seen[sh.VenueID] = true
			ids = append(ids, sh.VenueID)
		}
	}
	venues, err := s.store.BatchGetVenues(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]dynamo.Venue, len(venues))
	for _, v := range venues {
		byID[v.VenueID] = v
	}
	return byID, nil
}
