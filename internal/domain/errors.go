package domain

import (
	"errors"
	"fmt"
)

// Record validation failures. A RecordError wraps exactly one of these.
var (
	ErrMissingField     = errors.New("required field missing")
	ErrInvalidAmount    = errors.New("amount must be a positive integer")
	ErrInvalidTimestamp = errors.New("timestamp must be an ISO-8601 instant")
	ErrSelfTransfer     = errors.New("sender and receiver must differ")
	ErrDuplicateID      = errors.New("duplicate transaction id")
)

// ErrAccountNotFound is matched by every NotFoundError.
var ErrAccountNotFound = errors.New("account not found")

// RecordError describes one rejected input record. The rest of the batch is unaffected.
type RecordError struct {
	// Index is the record's position in the submitted batch.
	Index         int
	TransactionID string
	Field         string
	Err           error
}

func (e *RecordError) Error() string {
	id := e.TransactionID
	if id == "" {
		id = "<none>"
	}
	if e.Field == "" {
		return fmt.Sprintf("record %d (id %s): %v", e.Index, id, e.Err)
	}
	return fmt.Sprintf("record %d (id %s): %s: %v", e.Index, id, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DetectorTimeout reports a detector that gave up after exhausting its search budget.
type DetectorTimeout struct {
	Detector FlagKind
	Budget   int
}

func (e *DetectorTimeout) Error() string {
	return fmt.Sprintf("%s detector exceeded search budget of %d steps", e.Detector, e.Budget)
}

// NotFoundError is returned when a queried account has no node in the graph.
type NotFoundError struct {
	Account string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account %q not found", e.Account)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
