package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Artist struct {
	PK       string `dynamodbav:"pk" json:"-"`
	SK       string `dynamodbav:"sk" json:"-"`
	ArtistID string `dynamodbav:"-" json:"artist_id"`
	Name     string `dynamodbav:"name" json:"name"`
	Bio      string `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
}

// CreateArtist writes the single artist record.
func (s *Store) CreateArtist(ctx context.Context, a Artist) error {
	a.PK = ArtistPK(a.ArtistID)
	a.SK = DetailsSK

	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal artist: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("create artist: %w", err)
	}
	return nil
}

// GetArtist returns the artist by id, or nil if absent.
func (s *Store) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       detailsKey(ArtistPK(artistID)),
	})
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeArtist(out.Item)
}

// BatchGetArtists fetches the given artists keyed by id. Missing ids are
// simply absent from the map.
func (s *Store) BatchGetArtists(ctx context.Context, artistIDs []string) (map[string]Artist, error) {
	if len(artistIDs) == 0 {
		return map[string]Artist{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(artistIDs))
	for _, id := range artistIDs {
		keys = append(keys, detailsKey(ArtistPK(id)))
	}
	items, err := s.batchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("batch get artists: %w", err)
	}

	artists := make(map[string]Artist, len(items))
	for _, item := range items {
		a, err := decodeArtist(item)
		if err != nil {
			return nil, err
		}
		artists[a.ArtistID] = *a
	}
	return artists, nil
}

func decodeArtist(item map[string]types.AttributeValue) (*Artist, error) {
	var a Artist
	if err := attributevalue.UnmarshalMap(item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal artist: %w", err)
	}
	id, err := idFromPK(a.PK, "ARTIST#")
	if err != nil {
		return nil, err
	}
	a.ArtistID = id
	if a.Name == "" {
		return nil, &DecodeError{PK: a.PK, SK: a.SK, Attr: "name"}
	}
	return &a, nil
}
