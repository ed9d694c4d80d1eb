package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Show dates and times are wall-clock values in the platform's home timezone.
// A fixed offset keeps expiry computation deterministic without tzdata.
var showZone = time.FixedZone("IST", 5*3600+30*60)

const showTimeLayout = "2006-01-02 15:04"

type Show struct {
	PK          string   `dynamodbav:"pk" json:"-"`
	SK          string   `dynamodbav:"sk" json:"-"`
	ShowID      string   `dynamodbav:"-" json:"show_id"`
	VenueID     string   `dynamodbav:"venue_id" json:"venue_id"`
	VenueCity   string   `dynamodbav:"venue_city" json:"venue_city"`
	EventID     string   `dynamodbav:"event_id" json:"event_id"`
	Price       int      `dynamodbav:"price" json:"price"`
	ShowDate    string   `dynamodbav:"show_date" json:"show_date"`
	ShowTime    string   `dynamodbav:"show_time" json:"show_time"`
	BookedSeats []string `dynamodbav:"booked_seats" json:"booked_seats"`
	IsBlocked   bool     `dynamodbav:"is_show_blocked" json:"is_blocked"`
	ExpiresAt   int64    `dynamodbav:"expires_at" json:"-"`
}

// showDateIndex supports date-scoped listing; venue, show and date live in
// the sort key.
type showDateIndex struct {
	PK             string `dynamodbav:"pk"`
	SK             string `dynamodbav:"sk"`
	IsEventBlocked bool   `dynamodbav:"is_event_blocked"`
	IsShowBlocked  bool   `dynamodbav:"is_show_blocked"`
	Price          int    `dynamodbav:"price"`
	ShowTime       string `dynamodbav:"show_time"`
	ExpiresAt      int64  `dynamodbav:"expires_at"`
}

// showCityIndex supports city-scoped listing without a date.
type showCityIndex struct {
	PK             string `dynamodbav:"pk"`
	SK             string `dynamodbav:"sk"`
	IsEventBlocked bool   `dynamodbav:"is_event_blocked"`
	Price          int    `dynamodbav:"price"`
	ShowTime       string `dynamodbav:"show_time"`
	ShowDate       string `dynamodbav:"show_date"`
	ExpiresAt      int64  `dynamodbav:"expires_at"`
}

// cityEventIndex supports city+name event browsing.
type cityEventIndex struct {
	PK          string   `dynamodbav:"pk"`
	SK          string   `dynamodbav:"sk"`
	Description string   `dynamodbav:"description"`
	Duration    int      `dynamodbav:"duration"`
	Category    string   `dynamodbav:"category"`
	IsBlocked   bool     `dynamodbav:"is_event_blocked"`
	ArtistIDs   []string `dynamodbav:"artist_ids"`
	ArtistNames []string `dynamodbav:"artist_names"`
	ExpiresAt   int64    `dynamodbav:"expires_at"`
}

// hostEventIndex records that a host has at least one show for an event.
type hostEventIndex struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// ShowExpiry computes the shared TTL for all records written at show
// creation: the epoch second at which the show starts.
func ShowExpiry(showDate, showTime string) (int64, error) {
	t, err := time.ParseInLocation(showTimeLayout, showDate+" "+showTime, showZone)
	if err != nil {
		return 0, fmt.Errorf("parse show datetime: %w", err)
	}
	return t.Unix(), nil
}

// CreateShow writes the show details record plus four derived index records
// in one transaction, all sharing one expiry so the store's TTL purges them
// together. Refuses creation against a blocked event with ErrEventBlocked.
func (s *Store) CreateShow(ctx context.Context, show Show, venue Venue, event Event) error {
	if event.IsBlocked {
		return ErrEventBlocked
	}

	expiry, err := ShowExpiry(show.ShowDate, show.ShowTime)
	if err != nil {
		return err
	}

	show.PK = ShowPK(show.ShowID)
	show.SK = DetailsSK
	show.VenueID = venue.VenueID
	show.VenueCity = venue.City
	show.ExpiresAt = expiry
	if show.BookedSeats == nil {
		show.BookedSeats = []string{}
	}

	records := []interface{}{
		show,
		showDateIndex{
			PK:             EventCityPK(event.EventID, venue.City),
			SK:             ShowDateSK(show.ShowDate, venue.VenueID, show.ShowID),
			IsEventBlocked: event.IsBlocked,
			IsShowBlocked:  show.IsBlocked,
			Price:          show.Price,
			ShowTime:       show.ShowTime,
			ExpiresAt:      expiry,
		},
		showCityIndex{
			PK:             EventCityPK(event.EventID, venue.City),
			SK:             ShowCitySK(venue.VenueID, show.ShowID),
			IsEventBlocked: event.IsBlocked,
			Price:          show.Price,
			ShowTime:       show.ShowTime,
			ShowDate:       show.ShowDate,
			ExpiresAt:      expiry,
		},
		cityEventIndex{
			PK:          CityPK(venue.City),
			SK:          CityEventSK(event.Name, event.EventID),
			Description: event.Description,
			Duration:    event.Duration,
			Category:    event.Category,
			IsBlocked:   event.IsBlocked,
			ArtistIDs:   event.ArtistIDs,
			ArtistNames: event.ArtistNames,
			ExpiresAt:   expiry,
		},
		hostEventIndex{
			PK:        HostPK(venue.HostID),
			SK:        HostEventSK(event.EventID),
			ExpiresAt: expiry,
		},
	}

	puts := make([]types.TransactWriteItem, 0, len(records))
	for _, rec := range records {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return fmt.Errorf("marshal show record: %w", err)
		}
		puts = append(puts, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(s.table), Item: item},
		})
	}

	if _, err := s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: puts,
	}); err != nil {
		return fmt.Errorf("create show: %w", err)
	}
	return nil
}

// GetShow returns the show details by id, or nil if absent. The booked-seats
// set on the details record is the authoritative one.
func (s *Store) GetShow(ctx context.Context, showID string) (*Show, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       detailsKey(ShowPK(showID)),
	})
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeShow(out.Item)
}

// ShowsByEventCity lists every show of an event in a city via the city index,
// then hydrates details so callers see fresh flags and seat sets.
func (s *Store) ShowsByEventCity(ctx context.Context, eventID, city string) ([]Show, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: EventCityPK(eventID, city)},
			":prefix": &types.AttributeValueMemberS{Value: "VENUE#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list shows by event city: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		var idx showCityIndex
		if err := attributevalue.UnmarshalMap(item, &idx); err != nil {
			return nil, fmt.Errorf("unmarshal show city index: %w", err)
		}
		_, showID, err := ShowFromCitySK(idx.SK)
		if err != nil {
			return nil, err
		}
		ids = append(ids, showID)
	}
	return s.BatchGetShows(ctx, ids)
}

// ShowsByEventDate lists shows of an event in a city on one date, straight
// from the date index. If the index marks the whole event blocked the listing
// is empty without looking at individual shows. Seat sets are not carried on
// index records; callers needing them must fetch the details record.
func (s *Store) ShowsByEventDate(ctx context.Context, eventID, city, date string) ([]Show, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: EventCityPK(eventID, city)},
			":prefix": &types.AttributeValueMemberS{Value: "DATE#" + date},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list shows by event date: %w", err)
	}

	shows := make([]Show, 0, len(items))
	for _, item := range items {
		var idx showDateIndex
		if err := attributevalue.UnmarshalMap(item, &idx); err != nil {
			return nil, fmt.Errorf("unmarshal show date index: %w", err)
		}
		if idx.IsEventBlocked {
			return []Show{}, nil
		}
		showDate, venueID, showID, err := ShowFromDateSK(idx.SK)
		if err != nil {
			return nil, err
		}
		shows = append(shows, Show{
			ShowID:    showID,
			VenueID:   venueID,
			VenueCity: city,
			EventID:   eventID,
			Price:     idx.Price,
			ShowDate:  showDate,
			ShowTime:  idx.ShowTime,
			IsBlocked: idx.IsShowBlocked,
			ExpiresAt: idx.ExpiresAt,
		})
	}
	return shows, nil
}

// BatchGetShows fetches show details for the given ids, preserving the
// caller's order. Missing ids are skipped.
func (s *Store) BatchGetShows(ctx context.Context, showIDs []string) ([]Show, error) {
	if len(showIDs) == 0 {
		return []Show{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(showIDs))
	for _, id := range showIDs {
		keys = append(keys, detailsKey(ShowPK(id)))
	}
	items, err := s.batchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("batch get shows: %w", err)
	}

	byID := make(map[string]Show, len(items))
	for _, item := range items {
		sh, err := decodeShow(item)
		if err != nil {
			return nil, err
		}
		byID[sh.ShowID] = *sh
	}
	shows := make([]Show, 0, len(byID))
	for _, id := range showIDs {
		if sh, ok := byID[id]; ok {
			shows = append(shows, sh)
		}
	}
	return shows, nil
}

// SetShowBlocked flips the blocked flag on the show details record and its
// date index record in one transaction, both conditioned on existing.
func (s *Store) SetShowBlocked(ctx context.Context, show Show, venue Venue, blocked bool) error {
	expr, names, values, err := buildUpdateExpression(map[string]interface{}{"is_show_blocked": blocked})
	if err != nil {
		return err
	}
	indexExpr, indexNames, indexValues, err := buildUpdateExpression(map[string]interface{}{"is_show_blocked": blocked})
	if err != nil {
		return err
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(s.table),
				Key:                       detailsKey(ShowPK(show.ShowID)),
				UpdateExpression:          aws.String(expr),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
				ConditionExpression:       aws.String("attribute_exists(pk)"),
			}},
			{Update: &types.Update{
				TableName: aws.String(s.table),
				Key: map[string]types.AttributeValue{
					"pk": &types.AttributeValueMemberS{Value: EventCityPK(show.EventID, venue.City)},
					"sk": &types.AttributeValueMemberS{Value: ShowDateSK(show.ShowDate, show.VenueID, show.ShowID)},
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
			return ErrNotExists
		}
		return fmt.Errorf("set show blocked: %w", err)
	}
	return nil
}

func decodeShow(item map[string]types.AttributeValue) (*Show, error) {
	var sh Show
	if err := attributevalue.UnmarshalMap(item, &sh); err != nil {
		return nil, fmt.Errorf("unmarshal show: %w", err)
	}
	id, err := idFromPK(sh.PK, "SHOW#")
	if err != nil {
		return nil, err
	}
	sh.ShowID = id
	for attr, v := range map[string]string{
		"venue_id":  sh.VenueID,
		"event_id":  sh.EventID,
		"show_date": sh.ShowDate,
		"show_time": sh.ShowTime,
	} {
		if v == "" {
			return nil, &DecodeError{PK: sh.PK, SK: sh.SK, Attr: attr}
		}
	}
	if sh.BookedSeats == nil {
		sh.BookedSeats = []string{}
	}
	return &sh, nil
}
