package workers

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
	"github.com/elenaruiz/attribution-engine/internal/services"
)

func newTestRecorder(t *testing.T) (*services.RecorderService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.AttributionEvent{},
		&models.ContentPerformance{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	recorder := services.NewRecorderService(
		repository.NewEventRepository(db),
		repository.NewPerformanceRepository(db),
	)
	return recorder, db
}

func TestEventWorkersDrainChannel(t *testing.T) {
	recorder, db := newTestRecorder(t)
	eventsChan := make(chan models.TrackedEvent, 8)
	StartEventWorkers(2, eventsChan, recorder)

	for _, eventType := range []string{models.EventImpression, models.EventClick, models.EventSave} {
		eventsChan <- models.TrackedEvent{
			AccountID: "acct1",
			Event: models.EventInput{
				EventType:  eventType,
				SourceType: models.SourceSocialPin,
				QuoteID:    "q1",
			},
		}
	}
	// An invalid event must be logged and skipped, not stall the pool.
	eventsChan <- models.TrackedEvent{
		AccountID: "acct1",
		Event:     models.EventInput{SourceType: models.SourceSocialPin},
	}
	close(eventsChan)

	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		if err := db.Model(&models.AttributionEvent{}).Count(&count).Error; err != nil {
			t.Fatalf("failed to count events: %v", err)
		}
		if count == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("workers recorded %d events before deadline, want 3", count)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
