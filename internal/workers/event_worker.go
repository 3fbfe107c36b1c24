package workers

import (
	"log"

	"github.com/elenaruiz/attribution-engine/internal/metrics"
	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/services"
)

// StartEventWorkers launches a pool of worker goroutines draining the batch
// ingestion channel. Batch-submitted touchpoints go through the same recorder
// service as synchronous ones, so they get identical validation and
// performance-counter handling.
// Parameters:
//   - workerCount: number of concurrent workers to spawn
//   - eventsChan: channel that receives tracked events to be recorded
//   - recorder: service that persists events and updates the daily counters
func StartEventWorkers(workerCount int, eventsChan <-chan models.TrackedEvent, recorder *services.RecorderService) {
	log.Printf("Starting %d event worker(s)...", workerCount)

	for i := 0; i < workerCount; i++ {
		go eventWorker(eventsChan, recorder)
	}
}

// eventWorker is the function executed by each worker goroutine. It processes
// tracked events until the channel is closed, then exits.
func eventWorker(eventsChan <-chan models.TrackedEvent, recorder *services.RecorderService) {
	for tracked := range eventsChan {
		event, err := recorder.Record(tracked.AccountID, tracked.Event)
		if err != nil {
			// Log and keep draining; one bad event must not stall the pool.
			log.Printf("ERROR: Failed to record %s event for account %s: %v",
				tracked.Event.EventType, tracked.AccountID, err)
			continue
		}
		metrics.EventsRecorded.WithLabelValues(event.EventType).Inc()
	}
}
