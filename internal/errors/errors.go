package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the attribution engine

// ErrMissingEventType is returned when an event is recorded without an event type
var ErrMissingEventType = errors.New("event type is required")

// ErrMissingSourceType is returned when an event is recorded without a source type
var ErrMissingSourceType = errors.New("source type is required")

// ErrMissingAccountID is returned when an operation is called without an account id
var ErrMissingAccountID = errors.New("account id is required")

// ErrInvalidOrderTotal is returned when attribution is requested for a non-positive order total
var ErrInvalidOrderTotal = errors.New("order total must be greater than zero")

// ErrMissingOrderID is returned when attribution is requested without an order id
var ErrMissingOrderID = errors.New("order id is required")

// ErrInvalidModelType is returned when a model configuration uses an unknown model type
var ErrInvalidModelType = errors.New("unknown attribution model type")

// ErrDuplicateEvent is returned when an idempotency key was already recorded for the account
var ErrDuplicateEvent = errors.New("event with this idempotency key already recorded")

// ErrAttributionFailed is returned when attribution-row inserts fail part way through
// an order. Rows written before the failure are kept (there is no rollback).
type ErrAttributionFailed struct {
	OrderID string
	Written int
	Reason  string
}

func (e ErrAttributionFailed) Error() string {
	return fmt.Sprintf("attribution for order %s failed after %d row(s): %s", e.OrderID, e.Written, e.Reason)
}

// ErrEventRecordingFailed is returned when event persistence fails
type ErrEventRecordingFailed struct {
	EventType string
	Reason    string
}

func (e ErrEventRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record %s event: %s", e.EventType, e.Reason)
}

// ErrConfigLoad is returned when configuration loading fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}
