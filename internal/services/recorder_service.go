// Package services contains the business logic layer for the attribution engine
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/elenaruiz/attribution-engine/internal/errors"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
)

// RecorderService records attribution events and maintains the per-day
// content performance counters. It acts as an intermediary between the HTTP
// handlers (or batch workers) and the data repositories.
type RecorderService struct {
	eventRepo repository.EventRepository
	perfRepo  repository.PerformanceRepository
}

// NewRecorderService creates and returns a new instance of RecorderService.
func NewRecorderService(eventRepo repository.EventRepository, perfRepo repository.PerformanceRepository) *RecorderService {
	return &RecorderService{
		eventRepo: eventRepo,
		perfRepo:  perfRepo,
	}
}

// Record validates and persists one touchpoint, then applies its counter
// deltas to the (content, day) performance row. Events with no content
// association are stored but contribute no counters.
//
// When the caller supplies an idempotency key that was already recorded for
// the account, the previously stored event is returned and no counters are
// re-applied. Without a key the recorder assigns a generated one, so blind
// retries of a failed call can double-count — deduplication is then the
// caller's responsibility.
func (s *RecorderService) Record(accountID string, input models.EventInput) (*models.AttributionEvent, error) {
	if accountID == "" {
		return nil, apperrors.ErrMissingAccountID
	}
	if input.EventType == "" {
		return nil, apperrors.ErrMissingEventType
	}
	if input.SourceType == "" {
		return nil, apperrors.ErrMissingSourceType
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	eventKey := input.IdempotencyKey
	if eventKey != "" {
		// Caller wants at-most-once recording: short-circuit on replays.
		existing, err := s.eventRepo.GetEventByKey(accountID, eventKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	} else {
		eventKey = uuid.NewString()
	}

	event := &models.AttributionEvent{
		AccountID:   accountID,
		EventKey:    eventKey,
		EventType:   input.EventType,
		SourceType:  input.SourceType,
		SourceID:    input.SourceID,
		QuoteID:     input.QuoteID,
		AssetID:     input.AssetID,
		ProductID:   input.ProductID,
		CustomerID:  input.CustomerID,
		SessionID:   input.SessionID,
		UtmSource:   input.UtmSource,
		UtmMedium:   input.UtmMedium,
		UtmCampaign: input.UtmCampaign,
		UtmContent:  input.UtmContent,
		UtmTerm:     input.UtmTerm,
		OrderID:     input.OrderID,
		OrderTotal:  input.OrderTotal,
		OccurredAt:  occurredAt,
	}

	if err := s.eventRepo.CreateEvent(event); err != nil {
		// A concurrent request may have inserted the same idempotency key
		// between our check and the insert; the unique index catches it.
		if _, lookupErr := s.eventRepo.GetEventByKey(accountID, eventKey); lookupErr == nil {
			return nil, apperrors.ErrDuplicateEvent
		}
		return nil, apperrors.ErrEventRecordingFailed{EventType: input.EventType, Reason: err.Error()}
	}

	contentType, contentID, ok := ResolveContent(event)
	if !ok {
		// No quote/asset/product association: nothing to aggregate.
		return event, nil
	}

	delta := models.DeltaForEvent(event.EventType, event.OrderTotal)
	day := occurredAt.Format(models.PeriodFormat)
	if err := s.perfRepo.ApplyDelta(accountID, contentType, contentID, day, delta); err != nil {
		// The event row is already written; the caller may retry the whole
		// call, accepting that the retry inserts a second event.
		return nil, fmt.Errorf("event recorded but performance update failed: %w", err)
	}

	return event, nil
}

// GetPerformance returns the performance counters for one (content, day) key.
func (s *RecorderService) GetPerformance(accountID, contentType, contentID string, day time.Time) (*models.ContentPerformance, error) {
	return s.perfRepo.GetByKey(accountID, contentType, contentID, day.Format(models.PeriodFormat))
}
