package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Event struct {
	PK          string   `dynamodbav:"pk" json:"-"`
	SK          string   `dynamodbav:"sk" json:"-"`
	EventID     string   `dynamodbav:"-" json:"event_id"`
	Name        string   `dynamodbav:"event_name" json:"name"`
	Description string   `dynamodbav:"description" json:"description"`
	Duration    int      `dynamodbav:"duration" json:"duration"`
	Category    string   `dynamodbav:"category" json:"category"`
	IsBlocked   bool     `dynamodbav:"is_event_blocked" json:"is_blocked"`
	ArtistIDs   []string `dynamodbav:"artist_ids" json:"artist_ids"`
	ArtistNames []string `dynamodbav:"artist_names" json:"artist_names"`
}

// eventNameIndex is the name-prefix search record. The event name lives in
// the sort key; the remaining attributes are denormalized for display.
type eventNameIndex struct {
	PK          string   `dynamodbav:"pk"`
	SK          string   `dynamodbav:"sk"`
	Description string   `dynamodbav:"description"`
	Duration    int      `dynamodbav:"duration"`
	Category    string   `dynamodbav:"category"`
	IsBlocked   bool     `dynamodbav:"is_event_blocked"`
	ArtistIDs   []string `dynamodbav:"artist_ids"`
	ArtistNames []string `dynamodbav:"artist_names"`
}

// CreateEvent writes the details record and the name index record in one
// transaction. The details put is conditioned on the id not existing, so the
// two records are either both present or both absent, write-once.
func (s *Store) CreateEvent(ctx context.Context, e Event) error {
	e.PK = EventPK(e.EventID)
	e.SK = DetailsSK

	eventItem, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	indexItem, err := attributevalue.MarshalMap(eventNameIndex{
		PK:          AllEventsPK,
		SK:          EventNameSK(e.Name, e.EventID),
		Description: e.Description,
		Duration:    e.Duration,
		Category:    e.Category,
		IsBlocked:   e.IsBlocked,
		ArtistIDs:   e.ArtistIDs,
		ArtistNames: e.ArtistNames,
	})
	if err != nil {
		return fmt.Errorf("marshal event name index: %w", err)
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                eventItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(s.table),
				Item:      indexItem,
			}},
		},
	})
	if err != nil {
		if len(transactConditionFailed(err)) > 0 {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetEvent returns the event by id, or nil if absent.
func (s *Store) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       detailsKey(EventPK(eventID)),
	})
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeEvent(out.Item)
}

// BatchGetEvents fetches event details for the given ids, preserving input
// order. Missing ids are skipped.
func (s *Store) BatchGetEvents(ctx context.Context, eventIDs []string) ([]Event, error) {
	if len(eventIDs) == 0 {
		return []Event{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(eventIDs))
	for _, id := range eventIDs {
		keys = append(keys, detailsKey(EventPK(id)))
	}
	items, err := s.batchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("batch get events: %w", err)
	}

	byID := make(map[string]Event, len(items))
	for _, item := range items {
		e, err := decodeEvent(item)
		if err != nil {
			return nil, err
		}
		byID[e.EventID] = *e
	}
	events := make([]Event, 0, len(byID))
	for _, id := range eventIDs {
		if e, ok := byID[id]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

// EventsByName lists events whose lowercased name starts with the given
// prefix, via the shared EVENTS partition, hydrating details by batch get.
func (s *Store) EventsByName(ctx context.Context, namePrefix string) ([]Event, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: AllEventsPK},
			":prefix": &types.AttributeValueMemberS{Value: "EVENT_NAME#" + namePrefix},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list events by name: %w", err)
	}
	return s.hydrateEvents(ctx, items, EventIDFromNameSK)
}

// EventsByCity lists events playing in a city, optionally narrowed by a name
// prefix, via the city partition written at show creation.
func (s *Store) EventsByCity(ctx context.Context, city, namePrefix string) ([]Event, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: CityPK(city)},
			":prefix": &types.AttributeValueMemberS{Value: "NAME#" + namePrefix},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list events by city: %w", err)
	}
	return s.hydrateEvents(ctx, items, EventIDFromCitySK)
}

// EventsOfHost lists events that have shows at the host's venues, via the
// host partition written at show creation.
func (s *Store) EventsOfHost(ctx context.Context, hostID string) ([]Event, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: HostPK(hostID)},
			":prefix": &types.AttributeValueMemberS{Value: "EVENT#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list events of host: %w", err)
	}
	return s.hydrateEvents(ctx, items, func(sk string) (string, error) {
		return idFromPK(sk, "EVENT#")
	})
}

// hydrateEvents resolves index records to full event details so callers see
// fresh blocked flags rather than denormalized copies.
func (s *Store) hydrateEvents(ctx context.Context, items []map[string]types.AttributeValue, idFromSK func(string) (string, error)) ([]Event, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		sk, _ := item["sk"].(*types.AttributeValueMemberS)
		if sk == nil {
			return nil, fmt.Errorf("index record without sort key")
		}
		id, err := idFromSK(sk.Value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return s.BatchGetEvents(ctx, ids)
}

// SetEventBlocked flips the blocked flag on an existing event. Returns
// ErrNotExists if the event is absent; updates never create records.
func (s *Store) SetEventBlocked(ctx context.Context, eventID string, blocked bool) error {
	expr, names, values, err := buildUpdateExpression(map[string]interface{}{"is_event_blocked": blocked})
	if err != nil {
		return err
	}

	_, err = s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       detailsKey(EventPK(eventID)),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return ErrNotExists
		}
		return fmt.Errorf("set event blocked: %w", err)
	}
	return nil
}

func decodeEvent(item map[string]types.AttributeValue) (*Event, error) {
	var e Event
	if err := attributevalue.UnmarshalMap(item, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	id, err := idFromPK(e.PK, "EVENT#")
	if err != nil {
		return nil, err
	}
	e.EventID = id
	if e.Name == "" {
		return nil, &DecodeError{PK: e.PK, SK: e.SK, Attr: "event_name"}
	}
	return &e, nil
}
