package dynamo

import (
	"fmt"
	"strings"
)

// Entity ids are xid strings, so they can never contain the "#" delimiter.
// The parsers below split composite sort keys at documented occurrences and
// treat anything else as a corrupt record.

// Partition keys
func UserPK(id string) string      { return "USER#" + id }
func EmailPK(email string) string  { return "EMAIL#" + strings.ToLower(email) }
func ArtistPK(id string) string    { return "ARTIST#" + id }
func EventPK(id string) string     { return "EVENT#" + id }
func VenuePK(id string) string     { return "VENUE#" + id }
func ShowPK(id string) string      { return "SHOW#" + id }
func HostPK(hostID string) string  { return "HOST#" + hostID }
func CityPK(city string) string    { return "CITY#" + strings.ToLower(city) }

// EventCityPK co-locates every show of one event in one city.
func EventCityPK(eventID, city string) string {
	return "EVENT#" + eventID + "#CITY#" + strings.ToLower(city)
}

// Name-index partition shared by all events.
const AllEventsPK = "EVENTS"

// Sort keys
const DetailsSK = "DETAILS"

func HostVenueSK(id string) string   { return "VENUE#" + id }
func HostEventSK(id string) string   { return "EVENT#" + id }

func EventNameSK(name, id string) string {
	return "EVENT_NAME#" + strings.ToLower(name) + "#EVENT_ID#" + id
}

func CityEventSK(name, id string) string {
	return "NAME#" + strings.ToLower(name) + "#ID#" + id
}

func ShowDateSK(date, venueID, showID string) string {
	return "DATE#" + date + "#VENUE#" + venueID + "#SHOW#" + showID
}

func ShowCitySK(venueID, showID string) string {
	return "VENUE#" + venueID + "#SHOW#" + showID
}

func BookingSK(showDate, bookingID string) string {
	return "SHOW_DATE#" + showDate + "#BOOKING#" + bookingID
}

// idFromPK strips an entity prefix such as "EVENT#" from a partition key.
func idFromPK(pk, prefix string) (string, error) {
	id := strings.TrimPrefix(pk, prefix)
	if id == pk || id == "" {
		return "", fmt.Errorf("malformed key %q: want prefix %q", pk, prefix)
	}
	return id, nil
}

// EventIDFromNameSK extracts the event id from an EVENT_NAME index sort key.
func EventIDFromNameSK(sk string) (string, error) {
	_, id, ok := strings.Cut(sk, "#EVENT_ID#")
	if !ok || id == "" {
		return "", fmt.Errorf("malformed event name key %q", sk)
	}
	return id, nil
}

// EventIDFromCitySK extracts the event id from a city-index sort key.
func EventIDFromCitySK(sk string) (string, error) {
	_, id, ok := strings.Cut(sk, "#ID#")
	if !ok || id == "" {
		return "", fmt.Errorf("malformed city event key %q", sk)
	}
	return id, nil
}

// ShowFromDateSK splits a DATE#<date>#VENUE#<vid>#SHOW#<sid> sort key.
func ShowFromDateSK(sk string) (date, venueID, showID string, err error) {
	rest, ok := strings.CutPrefix(sk, "DATE#")
	if !ok {
		return "", "", "", fmt.Errorf("malformed show date key %q", sk)
	}
	date, rest, ok = strings.Cut(rest, "#VENUE#")
	if !ok {
		return "", "", "", fmt.Errorf("malformed show date key %q", sk)
	}
	venueID, showID, ok = strings.Cut(rest, "#SHOW#")
	if !ok || venueID == "" || showID == "" {
		return "", "", "", fmt.Errorf("malformed show date key %q", sk)
	}
	return date, venueID, showID, nil
}

// ShowFromCitySK splits a VENUE#<vid>#SHOW#<sid> sort key.
func ShowFromCitySK(sk string) (venueID, showID string, err error) {
	rest, ok := strings.CutPrefix(sk, "VENUE#")
	if !ok {
		return "", "", fmt.Errorf("malformed show city key %q", sk)
	}
	venueID, showID, ok = strings.Cut(rest, "#SHOW#")
	if !ok || venueID == "" || showID == "" {
		return "", "", fmt.Errorf("malformed show city key %q", sk)
	}
	return venueID, showID, nil
}

// BookingFromSK splits a SHOW_DATE#<date>#BOOKING#<bid> sort key.
func BookingFromSK(sk string) (showDate, bookingID string, err error) {
	rest, ok := strings.CutPrefix(sk, "SHOW_DATE#")
	if !ok {
		return "", "", fmt.Errorf("malformed booking key %q", sk)
	}
	showDate, bookingID, ok = strings.Cut(rest, "#BOOKING#")
	if !ok || bookingID == "" {
		return "", "", fmt.Errorf("malformed booking key %q", sk)
	}
	return showDate, bookingID, nil
}
