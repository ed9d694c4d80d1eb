package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/xid"

	"github.com/eventro/eventro/go/dynamo"
)

type VenueService struct {
	store *dynamo.Store
}

func NewVenueService(store *dynamo.Store) *VenueService {
	return &VenueService{store: store}
}

type CreateVenueRequest struct {
	Name               string `json:"name"`
	City               string `json:"city"`
	State              string `json:"state"`
	SeatLayoutRequired bool   `json:"is_seat_layout_required"`
}

func (s *VenueService) Add(ctx context.Context, req CreateVenueRequest, hostID string) (*dynamo.Venue, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Rule: "must not be empty"}
	}
	if req.City == "" {
		return nil, &ValidationError{Field: "city", Rule: "must not be empty"}
	}

	// Lowercase here so the returned entity matches what the store writes,
	// without a read-after-write that could miss the fresh record.
	venue := dynamo.Venue{
		VenueID:            xid.New().String(),
		Name:               req.Name,
		HostID:             hostID,
		City:               strings.ToLower(req.City),
		State:              strings.ToLower(req.State),
		SeatLayoutRequired: req.SeatLayoutRequired,
	}
	if err := s.store.CreateVenue(ctx, venue); err != nil {
		if errors.Is(err, dynamo.ErrAlreadyExists) {
			return nil, &AlreadyExistsError{Resource: "venue"}
		}
		return nil, err
	}
	return &venue, nil
}

func (s *VenueService) GetByID(ctx context.Context, venueID string) (*dynamo.Venue, error) {
	venue, err := s.store.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, notFound("venue", venueID)
	}
	return venue, nil
}

// HostVenues lists the host's venues, optionally narrowed to blocked-only or
// unblocked-only.
func (s *VenueService) HostVenues(ctx context.Context, hostID string, blocked *bool) ([]dynamo.Venue, error) {
	venues, err := s.store.HostVenues(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if blocked == nil {
		return venues, nil
	}
	out := make([]dynamo.Venue, 0, len(venues))
	for _, v := range venues {
		if v.IsBlocked == *blocked {
			out = append(out, v)
		}
	}
	return out, nil
}

// Update flips the blocked flag on a venue the caller hosts. The ownership
// check runs inside the store transaction, so a venue owned by someone else
// is indistinguishable from an absent one.
func (s *VenueService) Update(ctx context.Context, venueID, hostID string, blocked bool) error {
	if err := s.store.SetVenueBlocked(ctx, venueID, hostID, blocked); err != nil {
		if errors.Is(err, dynamo.ErrNotOwner) {
			return notFound("venue", venueID)
		}
		return err
	}
	return nil
}

// Delete removes the venue and its host-index record together, with the same
// in-transaction ownership check as Update.
func (s *VenueService) Delete(ctx context.Context, venueID, hostID string) error {
	if err := s.store.DeleteVenue(ctx, venueID, hostID); err != nil {
		if errors.Is(err, dynamo.ErrNotOwner) {
			return notFound("venue", venueID)
		}
		return err
	}
	return nil
}
