// Package service holds the domain services sitting between the HTTP
// boundary and the dynamo store: input validation, blocked-content
// visibility, cross-entity orchestration, and the seat-booking protocol.
// Failures surface as the typed errors below so callers can map them
// without string matching.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError covers both genuinely absent entities and entities hidden
// from the caller by visibility rules.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// BlockedError means the entity exists but is administratively blocked and
// the operation is disallowed for every caller.
type BlockedError struct {
	Resource string
	ID       string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s %s is blocked", e.Resource, e.ID)
}

// AlreadyExistsError is a uniqueness violation at creation time.
type AlreadyExistsError struct {
	Resource string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

// SeatsBookedError names the seats that collided with existing bookings.
type SeatsBookedError struct {
	Seats []string
}

func (e *SeatsBookedError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

// ValidationError rejects malformed input before any store interaction.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Rule)
}

var (
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrUserBlocked          = errors.New("user is blocked")
)

func notFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
