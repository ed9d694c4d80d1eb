package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Venue struct {
	PK                 string `dynamodbav:"pk" json:"-"`
	SK                 string `dynamodbav:"sk" json:"-"`
	VenueID            string `dynamodbav:"-" json:"venue_id"`
	Name               string `dynamodbav:"venue_name" json:"name"`
	HostID             string `dynamodbav:"host_id" json:"host_id"`
	City               string `dynamodbav:"venue_city" json:"city"`
	State              string `dynamodbav:"venue_state" json:"state"`
	IsBlocked          bool   `dynamodbav:"is_blocked" json:"is_blocked"`
	SeatLayoutRequired bool   `dynamodbav:"is_seat_layout_required" json:"is_seat_layout_required"`
}

// hostVenueIndex is the "list my venues" record under the host's partition.
// The host id lives in the partition key.
type hostVenueIndex struct {
	PK                 string `dynamodbav:"pk"`
	SK                 string `dynamodbav:"sk"`
	Name               string `dynamodbav:"venue_name"`
	City               string `dynamodbav:"venue_city"`
	State              string `dynamodbav:"venue_state"`
	IsBlocked          bool   `dynamodbav:"is_blocked"`
	SeatLayoutRequired bool   `dynamodbav:"is_seat_layout_required"`
}

// CreateVenue writes the details record and the host index record in one
// transaction, conditioned on the id not existing.
func (s *Store) CreateVenue(ctx context.Context, v Venue) error {
	v.PK = VenuePK(v.VenueID)
	v.SK = DetailsSK
	v.City = strings.ToLower(v.City)
	v.State = strings.ToLower(v.State)

	venueItem, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal venue: %w", err)
	}
	hostItem, err := attributevalue.MarshalMap(hostVenueIndex{
		PK:                 UserPK(v.HostID),
		SK:                 HostVenueSK(v.VenueID),
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		IsBlocked:          v.IsBlocked,
		SeatLayoutRequired: v.SeatLayoutRequired,
	})
	if err != nil {
		return fmt.Errorf("marshal host venue index: %w", err)
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                venueItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(s.table),
				Item:      hostItem,
			}},
		},
	})
	if err != nil {
		if len(transactConditionFailed(err)) > 0 {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

// GetVenue returns the venue by id, or nil if absent.
func (s *Store) GetVenue(ctx context.Context, venueID string) (*Venue, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       detailsKey(VenuePK(venueID)),
	})
	if err != nil {
		return nil, fmt.Errorf("get venue: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeVenue(out.Item)
}

// BatchGetVenues fetches venue details for the given ids. Missing ids are
// skipped.
func (s *Store) BatchGetVenues(ctx context.Context, venueIDs []string) ([]Venue, error) {
	if len(venueIDs) == 0 {
		return []Venue{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(venueIDs))
	for _, id := range venueIDs {
		keys = append(keys, detailsKey(VenuePK(id)))
	}
	items, err := s.batchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("batch get venues: %w", err)
	}

	venues := make([]Venue, 0, len(items))
	for _, item := range items {
		v, err := decodeVenue(item)
		if err != nil {
			return nil, err
		}
		venues = append(venues, *v)
	}
	return venues, nil
}

// HostVenues lists the venues owned by a host via the host's partition.
func (s *Store) HostVenues(ctx context.Context, hostID string) ([]Venue, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: UserPK(hostID)},
			":prefix": &types.AttributeValueMemberS{Value: "VENUE#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list host venues: %w", err)
	}

	venues := make([]Venue, 0, len(items))
	for _, item := range items {
		var idx hostVenueIndex
		if err := attributevalue.UnmarshalMap(item, &idx); err != nil {
			return nil, fmt.Errorf("unmarshal host venue index: %w", err)
		}
		venueID, err := idFromPK(idx.SK, "VENUE#")
		if err != nil {
			return nil, err
		}
		venues = append(venues, Venue{
			VenueID:            venueID,
			HostID:             hostID,
			Name:               idx.Name,
			City:               idx.City,
			State:              idx.State,
			IsBlocked:          idx.IsBlocked,
			SeatLayoutRequired: idx.SeatLayoutRequired,
		})
	}
	return venues, nil
}

// SetVenueBlocked flips the blocked flag on both venue records in one
// transaction. The details update is conditioned on the stored host matching,
// so the ownership check cannot race with a reassignment. Returns ErrNotOwner
// when the venue is absent or owned by someone else.
func (s *Store) SetVenueBlocked(ctx context.Context, venueID, hostID string, blocked bool) error {
	expr, names, values, err := buildUpdateExpression(map[string]interface{}{"is_blocked": blocked})
	if err != nil {
		return err
	}
	names["#host"] = "host_id"
	values[":host"] = &types.AttributeValueMemberS{Value: hostID}

	indexExpr, indexNames, indexValues, err := buildUpdateExpression(map[string]interface{}{"is_blocked": blocked})
	if err != nil {
		return err
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(s.table),
				Key:                       detailsKey(VenuePK(venueID)),
				UpdateExpression:          aws.String(expr),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
				ConditionExpression:       aws.String("attribute_exists(pk) AND #host = :host"),
			}},
			{Update: &types.Update{
				TableName: aws.String(s.table),
				Key: map[string]types.AttributeValue{
					"pk": &types.AttributeValueMemberS{Value: UserPK(hostID)},
					"sk": &types.AttributeValueMemberS{Value: HostVenueSK(venueID)},
				},
				UpdateExpression:          aws.String(indexExpr),
				ExpressionAttributeNames:  indexNames,
				ExpressionAttributeValues: indexValues,
				ConditionExpression:       aws.String("attribute_exists(pk)"),
			}},
		},
	})
	if err != nil {
		if len(transactConditionFailed(err)) > 0 {
			return ErrNotOwner
		}
		return fmt.Errorf("set venue blocked: %w", err)
	}
	return nil
}

// DeleteVenue removes the details record and the host index record together.
// The details delete is conditioned on the stored host matching.
func (s *Store) DeleteVenue(ctx context.Context, venueID, hostID string) error {
	_, err := s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(s.table),
				Key:       detailsKey(VenuePK(venueID)),
				ConditionExpression: aws.String(
					"attribute_exists(pk) AND #host = :host",
				),
				ExpressionAttributeNames: map[string]string{"#host": "host_id"},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":host": &types.AttributeValueMemberS{Value: hostID},
				},
			}},
			{Delete: &types.Delete{
				TableName: aws.String(s.table),
				Key: map[string]types.AttributeValue{
					"pk": &types.AttributeValueMemberS{Value: UserPK(hostID)},
					"sk": &types.AttributeValueMemberS{Value: HostVenueSK(venueID)},
				},
			}},
		},
	})
	if err != nil {
		if len(transactConditionFailed(err)) > 0 {
			return ErrNotOwner
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}

func decodeVenue(item map[string]types.AttributeValue) (*Venue, error) {
	var v Venue
	if err := attributevalue.UnmarshalMap(item, &v); err != nil {
		return nil, fmt.Errorf("unmarshal venue: %w", err)
	}
	id, err := idFromPK(v.PK, "VENUE#")
	if err != nil {
		return nil, err
	}
	v.VenueID = id
	if v.Name == "" {
		return nil, &DecodeError{PK: v.PK, SK: v.SK, Attr: "venue_name"}
	}
	if v.HostID == "" {
		return nil, &DecodeError{PK: v.PK, SK: v.SK, Attr: "host_id"}
	}
	return &v, nil
}
