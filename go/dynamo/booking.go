package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Booking struct {
	PK            string   `dynamodbav:"pk" json:"-"`
	SK            string   `dynamodbav:"sk" json:"-"`
	BookingID     string   `dynamodbav:"-" json:"booking_id"`
	UserID        string   `dynamodbav:"-" json:"user_id"`
	ShowID        string   `dynamodbav:"show_id" json:"show_id"`
	TimeBooked    string   `dynamodbav:"time_booked" json:"time_booked"`
	TotalPrice    int      `dynamodbav:"total_price" json:"total_price"`
	Seats         []string `dynamodbav:"seats" json:"seats"`
	VenueCity     string   `dynamodbav:"venue_city" json:"venue_city"`
	VenueID       string   `dynamodbav:"venue_id" json:"venue_id"`
	VenueName     string   `dynamodbav:"venue_name" json:"venue_name"`
	VenueState    string   `dynamodbav:"venue_state" json:"venue_state"`
	EventName     string   `dynamodbav:"event_name" json:"event_name"`
	EventDuration int      `dynamodbav:"event_duration" json:"event_duration"`
	EventID       string   `dynamodbav:"event_id" json:"event_id"`
	ShowDate      string   `dynamodbav:"-" json:"show_date"`
}

// CreateBooking reserves seats and records the booking in one transaction:
// an append-only update of the show's booked-seats list, conditioned on none
// of the requested seats being present already, plus the booking record put.
// Appends from concurrent bookings of disjoint seats interleave safely; an
// overlap fails the whole transaction with ErrSeatConflict, so a seat can
// never be sold twice.
func (s *Store) CreateBooking(ctx context.Context, b Booking, show Show) error {
	if len(b.Seats) == 0 {
		return fmt.Errorf("create booking: no seats requested")
	}

	b.PK = UserPK(b.UserID)
	b.SK = BookingSK(show.ShowDate, b.BookingID)

	bookingItem, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}

	seatList, err := attributevalue.Marshal(b.Seats)
	if err != nil {
		return fmt.Errorf("marshal seats: %w", err)
	}
	values := map[string]types.AttributeValue{
		":empty": &types.AttributeValueMemberL{},
		":new":   seatList,
	}
	condition := "attribute_exists(pk)"
	for i, seat := range b.Seats {
		ref := fmt.Sprintf(":s%d", i)
		values[ref] = &types.AttributeValueMemberS{Value: seat}
		condition += fmt.Sprintf(" AND NOT contains(#seats, %s)", ref)
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(s.table),
				Key:                       detailsKey(ShowPK(show.ShowID)),
				UpdateExpression:          aws.String("SET #seats = list_append(if_not_exists(#seats, :empty), :new)"),
				ExpressionAttributeNames:  map[string]string{"#seats": "booked_seats"},
				ExpressionAttributeValues: values,
				ConditionExpression:       aws.String(condition),
			}},
			{Put: &types.Put{
				TableName: aws.String(s.table),
				Item:      bookingItem,
			}},
		},
	})
	if err != nil {
		if len(transactConditionFailed(err)) > 0 {
			return ErrSeatConflict
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// BookingsForUser lists every booking under the user's partition, in the
// store's natural sort-key order (show date, then booking id).
func (s *Store) BookingsForUser(ctx context.Context, userID string) ([]Booking, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: UserPK(userID)},
			":prefix": &types.AttributeValueMemberS{Value: "SHOW_DATE#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]Booking, 0, len(items))
	for _, item := range items {
		var b Booking
		if err := attributevalue.UnmarshalMap(item, &b); err != nil {
			return nil, fmt.Errorf("unmarshal booking: %w", err)
		}
		showDate, bookingID, err := BookingFromSK(b.SK)
		if err != nil {
			return nil, err
		}
		b.UserID = userID
		b.BookingID = bookingID
		b.ShowDate = showDate
		if b.ShowID == "" {
			return nil, &DecodeError{PK: b.PK, SK: b.SK, Attr: "show_id"}
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}
