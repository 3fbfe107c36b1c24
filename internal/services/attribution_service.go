package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/elenaruiz/attribution-engine/internal/errors"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
)

// touchpointEventTypes are the event types eligible as attribution inputs.
// Checkout and purchase events are outcomes, not influencing touches.
var touchpointEventTypes = []string{models.EventImpression, models.EventClick, models.EventSave}

// AttributionService splits order revenue across the touchpoints that
// preceded the order within the account's lookback window.
type AttributionService struct {
	eventRepo repository.EventRepository
	modelRepo repository.ModelRepository
	attrRepo  repository.AttributionRepository

	// Fallback configuration used when the account has no stored default model.
	fallbackModelType  string
	fallbackWindowDays int
}

// NewAttributionService creates and returns a new instance of AttributionService.
// fallbackModelType and fallbackWindowDays replace the built-in last_touch /
// 7-day defaults when non-zero.
func NewAttributionService(eventRepo repository.EventRepository, modelRepo repository.ModelRepository, attrRepo repository.AttributionRepository, fallbackModelType string, fallbackWindowDays int) *AttributionService {
	if fallbackModelType == "" {
		fallbackModelType = models.DefaultModelType
	}
	if fallbackWindowDays <= 0 {
		fallbackWindowDays = models.DefaultWindowDays
	}
	return &AttributionService{
		eventRepo:          eventRepo,
		modelRepo:          modelRepo,
		attrRepo:           attrRepo,
		fallbackModelType:  fallbackModelType,
		fallbackWindowDays: fallbackWindowDays,
	}
}

// Attribute computes and persists the revenue attribution rows for one
// completed order. Zero eligible touchpoints is not an error: the call
// succeeds with an empty result and writes nothing.
//
// The per-row inserts are deliberately not wrapped in a transaction: a store
// failure mid-order returns the rows written so far inside an
// ErrAttributionFailed, and those rows are kept. Attribution is
// at-least-attempted, never blocking on exactness.
func (s *AttributionService) Attribute(accountID, orderID string, orderTotal float64, orderDate time.Time, customerID string) ([]models.RevenueAttribution, error) {
	if accountID == "" {
		return nil, apperrors.ErrMissingAccountID
	}
	if orderID == "" {
		return nil, apperrors.ErrMissingOrderID
	}
	if orderTotal <= 0 {
		return nil, apperrors.ErrInvalidOrderTotal
	}

	modelType := s.fallbackModelType
	windowDays := s.fallbackWindowDays
	var modelID uint
	model, err := s.modelRepo.GetDefaultModel(accountID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load attribution model: %w", err)
		}
		log.Printf("No default attribution model for account %s, using %s/%dd", accountID, modelType, windowDays)
	} else {
		modelType = model.ModelType
		if model.WindowDays > 0 {
			windowDays = model.WindowDays
		}
		modelID = model.ID
	}

	windowStart := orderDate.AddDate(0, 0, -windowDays)
	touchpoints, err := s.eventRepo.FindTouchpoints(accountID, customerID, touchpointEventTypes, windowStart, orderDate)
	if err != nil {
		return nil, err
	}
	if len(touchpoints) == 0 {
		return []models.RevenueAttribution{}, nil
	}

	weights := ComputeWeights(modelType, touchpoints, orderDate)

	attributions := make([]models.RevenueAttribution, 0, len(touchpoints))
	for i := range touchpoints {
		if weights[i] <= 0 {
			continue
		}
		tp := &touchpoints[i]
		contentType, contentID := ResolveContentOrSource(tp)
		row := models.RevenueAttribution{
			AccountID:         accountID,
			OrderID:           orderID,
			OrderTotal:        orderTotal,
			OrderDate:         orderDate,
			CustomerID:        customerID,
			ModelID:           modelID,
			ModelType:         modelType,
			ContentType:       contentType,
			ContentID:         contentID,
			AttributionWeight: weights[i],
			AttributedRevenue: orderTotal * weights[i],
			TouchpointType:    tp.EventType,
			TouchpointID:      tp.ID,
			TouchpointAt:      tp.OccurredAt,
		}
		if err := s.attrRepo.CreateAttribution(&row); err != nil {
			// Rows already written for this order are kept; there is no rollback.
			return attributions, apperrors.ErrAttributionFailed{
				OrderID: orderID,
				Written: len(attributions),
				Reason:  err.Error(),
			}
		}
		attributions = append(attributions, row)
	}

	return attributions, nil
}
