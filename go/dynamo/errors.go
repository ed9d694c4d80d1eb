package dynamo

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Sentinel errors for store-enforced conditions. Anything else coming out of
// this package is an infrastructure failure and is propagated wrapped but
// otherwise unchanged.
var (
	// ErrAlreadyExists is returned when a creation hit an existing primary key
	// (duplicate id, or duplicate email for users).
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotExists is returned when a conditional update targeted a record
	// that is not there. Updates never upsert.
	ErrNotExists = errors.New("record does not exist")

	// ErrNotOwner is returned when a venue write was rejected because the
	// stored host does not match the caller, or the venue is gone.
	ErrNotOwner = errors.New("venue does not belong to host")

	// ErrSeatConflict is returned when the seat-reservation condition failed:
	// at least one requested seat was already in the show's booked set.
	ErrSeatConflict = errors.New("requested seats already booked")

	// ErrEventBlocked is returned when a show is created against a blocked
	// event.
	ErrEventBlocked = errors.New("event is blocked")
)

// DecodeError reports a stored record missing an attribute it must carry.
// It signals data corruption, never a recoverable condition.
type DecodeError struct {
	PK   string
	SK   string
	Attr string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("corrupt record %s/%s: missing %s", e.PK, e.SK, e.Attr)
}

// conditionFailed reports whether a single-item write was rejected by its
// condition expression.
func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// transactConditionFailed reports whether a TransactWriteItems call was
// cancelled by a failed condition, and if so on which item indexes.
func transactConditionFailed(err error) []int {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	var failed []int
	for i, r := range tce.CancellationReasons {
		if r.Code != nil && *r.Code == "ConditionalCheckFailed" {
			failed = append(failed, i)
		}
	}
	return failed
}
