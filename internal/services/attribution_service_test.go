package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/elenaruiz/attribution-engine/internal/errors"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
	"gorm.io/gorm"
)

type attributionFixture struct {
	db        *gorm.DB
	eventRepo repository.EventRepository
	modelRepo repository.ModelRepository
	attrRepo  repository.AttributionRepository
	service   *AttributionService
}

func newAttributionFixture(t *testing.T) *attributionFixture {
	t.Helper()
	db := newTestDB(t)
	eventRepo := repository.NewEventRepository(db)
	modelRepo := repository.NewModelRepository(db)
	attrRepo := repository.NewAttributionRepository(db)
	return &attributionFixture{
		db:        db,
		eventRepo: eventRepo,
		modelRepo: modelRepo,
		attrRepo:  attrRepo,
		service:   NewAttributionService(eventRepo, modelRepo, attrRepo, "", 0),
	}
}

// seedTouchpoint stores one click touchpoint the given number of days before
// the order date.
func (f *attributionFixture) seedTouchpoint(t *testing.T, accountID, quoteID string, orderDate time.Time, daysBefore int) {
	t.Helper()
	err := f.eventRepo.CreateEvent(&models.AttributionEvent{
		AccountID:  accountID,
		EventKey:   uuid.NewString(),
		EventType:  models.EventClick,
		SourceType: models.SourceEmail,
		QuoteID:    quoteID,
		OccurredAt: orderDate.AddDate(0, 0, -daysBefore),
	})
	if err != nil {
		t.Fatalf("failed to seed touchpoint: %v", err)
	}
}

func TestAttributeValidation(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Now()

	if _, err := f.service.Attribute("", "o1", 100, orderDate, ""); !errors.Is(err, apperrors.ErrMissingAccountID) {
		t.Errorf("expected ErrMissingAccountID, got %v", err)
	}
	if _, err := f.service.Attribute("acct1", "", 100, orderDate, ""); !errors.Is(err, apperrors.ErrMissingOrderID) {
		t.Errorf("expected ErrMissingOrderID, got %v", err)
	}
	if _, err := f.service.Attribute("acct1", "o1", 0, orderDate, ""); !errors.Is(err, apperrors.ErrInvalidOrderTotal) {
		t.Errorf("expected ErrInvalidOrderTotal, got %v", err)
	}
}

func TestAttributeNoTouchpoints(t *testing.T) {
	f := newAttributionFixture(t)

	attributions, err := f.service.Attribute("acct1", "o1", 100, time.Now(), "")
	if err != nil {
		t.Fatalf("zero touchpoints must not be an error, got %v", err)
	}
	if len(attributions) != 0 {
		t.Errorf("expected empty attribution list, got %d rows", len(attributions))
	}

	count, err := f.attrRepo.CountByOrder("acct1", "o1")
	if err != nil {
		t.Fatalf("failed to count attribution rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected zero persisted rows, got %d", count)
	}
}

func TestAttributeWindowFiltering(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// 10 days old falls outside the default 7-day window, 5 days old is in.
	f.seedTouchpoint(t, "acct1", "q-old", orderDate, 10)
	f.seedTouchpoint(t, "acct1", "q-recent", orderDate, 5)

	attributions, err := f.service.Attribute("acct1", "o1", 100, orderDate, "")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}
	if len(attributions) != 1 {
		t.Fatalf("expected 1 attribution row, got %d", len(attributions))
	}
	if attributions[0].ContentID != "q-recent" {
		t.Errorf("attributed content = %s, want q-recent", attributions[0].ContentID)
	}
	if attributions[0].AttributionWeight != 1 {
		t.Errorf("single touchpoint weight = %v, want 1", attributions[0].AttributionWeight)
	}
}

func TestAttributeUsesStoredDefaultModel(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// A 14-day window picks up the touchpoint the fallback 7-day window drops.
	err := f.modelRepo.SetDefaultModel(&models.AttributionModel{
		AccountID:  "acct1",
		ModelType:  models.ModelLinear,
		WindowDays: 14,
	})
	if err != nil {
		t.Fatalf("failed to store default model: %v", err)
	}

	f.seedTouchpoint(t, "acct1", "q-old", orderDate, 10)
	f.seedTouchpoint(t, "acct1", "q-recent", orderDate, 5)

	attributions, err := f.service.Attribute("acct1", "o1", 100, orderDate, "")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}
	if len(attributions) != 2 {
		t.Fatalf("expected 2 attribution rows with the 14-day window, got %d", len(attributions))
	}
	for _, row := range attributions {
		if row.ModelType != models.ModelLinear {
			t.Errorf("row model type = %s, want linear", row.ModelType)
		}
		if math.Abs(row.AttributedRevenue-50) > 1e-9 {
			t.Errorf("linear split revenue = %v, want 50", row.AttributedRevenue)
		}
	}
}

func TestAttributeRevenueSumsToOrderTotal(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	err := f.modelRepo.SetDefaultModel(&models.AttributionModel{
		AccountID:  "acct1",
		ModelType:  models.ModelPositionBased,
		WindowDays: 7,
	})
	if err != nil {
		t.Fatalf("failed to store default model: %v", err)
	}

	for i := 1; i <= 5; i++ {
		f.seedTouchpoint(t, "acct1", "q1", orderDate, i)
	}

	attributions, err := f.service.Attribute("acct1", "o1", 200, orderDate, "")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}

	var weightSum, revenueSum float64
	for _, row := range attributions {
		weightSum += row.AttributionWeight
		revenueSum += row.AttributedRevenue
	}
	if math.Abs(weightSum-1) > 1e-6 {
		t.Errorf("persisted weights sum to %v, want 1", weightSum)
	}
	if math.Abs(revenueSum-200) > 1e-6 {
		t.Errorf("attributed revenue sums to %v, want 200", revenueSum)
	}
}

func TestAttributeSkipsZeroWeightTouchpoints(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Fallback model is last_touch: only the most recent touchpoint gets a row.
	f.seedTouchpoint(t, "acct1", "q-first", orderDate, 3)
	f.seedTouchpoint(t, "acct1", "q-last", orderDate, 1)

	attributions, err := f.service.Attribute("acct1", "o1", 100, orderDate, "")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}
	if len(attributions) != 1 {
		t.Fatalf("expected 1 row under last_touch, got %d", len(attributions))
	}
	if attributions[0].ContentID != "q-last" {
		t.Errorf("credited content = %s, want q-last", attributions[0].ContentID)
	}
}

func TestAttributeCustomerFilter(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	err := f.eventRepo.CreateEvent(&models.AttributionEvent{
		AccountID:  "acct1",
		EventKey:   "evt-c1",
		EventType:  models.EventClick,
		SourceType: models.SourceEmail,
		QuoteID:    "q1",
		CustomerID: "cust1",
		OccurredAt: orderDate.AddDate(0, 0, -2),
	})
	if err != nil {
		t.Fatalf("failed to seed touchpoint: %v", err)
	}
	err = f.eventRepo.CreateEvent(&models.AttributionEvent{
		AccountID:  "acct1",
		EventKey:   "evt-c2",
		EventType:  models.EventClick,
		SourceType: models.SourceEmail,
		QuoteID:    "q2",
		CustomerID: "cust2",
		OccurredAt: orderDate.AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("failed to seed touchpoint: %v", err)
	}

	attributions, err := f.service.Attribute("acct1", "o1", 100, orderDate, "cust1")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}
	if len(attributions) != 1 || attributions[0].ContentID != "q1" {
		t.Errorf("customer-scoped attribution = %+v, want single row for q1", attributions)
	}
}

func TestAttributeExcludesOutcomeEvents(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Checkout and purchase events are outcomes, never attribution inputs.
	for i, eventType := range []string{models.EventCheckout, models.EventPurchase} {
		err := f.eventRepo.CreateEvent(&models.AttributionEvent{
			AccountID:  "acct1",
			EventKey:   "evt-outcome-" + eventType,
			EventType:  eventType,
			SourceType: models.SourceEmail,
			QuoteID:    "q1",
			OccurredAt: orderDate.AddDate(0, 0, -(i + 1)),
		})
		if err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}

	attributions, err := f.service.Attribute("acct1", "o1", 100, orderDate, "")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}
	if len(attributions) != 0 {
		t.Errorf("outcome events were attributed: %+v", attributions)
	}
}

func TestAttributeFallsBackToSourceContent(t *testing.T) {
	f := newAttributionFixture(t)
	orderDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	err := f.eventRepo.CreateEvent(&models.AttributionEvent{
		AccountID:  "acct1",
		EventKey:   "evt-nocontent",
		EventType:  models.EventClick,
		SourceType: models.SourceSocialAd,
		SourceID:   "ad-77",
		OccurredAt: orderDate.AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	attributions, err := f.service.Attribute("acct1", "o1", 100, orderDate, "")
	if err != nil {
		t.Fatalf("attribution failed: %v", err)
	}
	if len(attributions) != 1 {
		t.Fatalf("expected 1 row, got %d", len(attributions))
	}
	if attributions[0].ContentType != models.ContentUnknown || attributions[0].ContentID != "ad-77" {
		t.Errorf("fallback content = %s/%s, want unknown/ad-77",
			attributions[0].ContentType, attributions[0].ContentID)
	}
}
