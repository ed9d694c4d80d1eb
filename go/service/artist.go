package service

import (
	"context"
	"strings"

	"github.com/rs/xid"

	"github.com/eventro/eventro/go/dynamo"
)

type ArtistService struct {
	store *dynamo.Store
}

func NewArtistService(store *dynamo.Store) *ArtistService {
	return &ArtistService{store: store}
}

func (s *ArtistService) GetByID(ctx context.Context, artistID string) (*dynamo.Artist, error) {
	artist, err := s.store.GetArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, notFound("artist", artistID)
	}
	return artist, nil
}

// GetBatch fetches the artists in the caller's order. If any id is absent the
// whole call fails with one NotFoundError naming every missing id.
func (s *ArtistService) GetBatch(ctx context.Context, artistIDs []string) ([]dynamo.Artist, error) {
	found, err := s.store.BatchGetArtists(ctx, artistIDs)
	if err != nil {
		return nil, err
	}

	var missing []string
	artists := make([]dynamo.Artist, 0, len(artistIDs))
	for _, id := range artistIDs {
		a, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		artists = append(artists, a)
	}
	if len(missing) > 0 {
		return nil, notFound("artist", strings.Join(missing, ", "))
	}
	return artists, nil
}

func (s *ArtistService) Add(ctx context.Context, name, bio string) (*dynamo.Artist, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Rule: "must not be empty"}
	}
	artist := dynamo.Artist{
		ArtistID: xid.New().String(),
		Name:     name,
		Bio:      bio,
	}
	if err := s.store.CreateArtist(ctx, artist); err != nil {
		return nil, err
	}
	return &artist, nil
}
