package monitor

import (
	"log"
	"sync"
	"time"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"github.com/elenaruiz/attribution-engine/internal/repository"
)

// RevenueMonitor periodically re-reads today's aggregated revenue per account
// and logs a notification when a total moves. It is operational visibility
// only; it never writes.
type RevenueMonitor struct {
	perfRepo    repository.PerformanceRepository // Repository to read daily totals from
	interval    time.Duration                    // How often to check totals
	knownTotals map[string]float64               // Cache of previous revenue per account
	mu          sync.Mutex                       // Protects concurrent access to knownTotals
}

// NewRevenueMonitor creates and returns a new instance of RevenueMonitor.
// interval parameter determines how frequently totals will be checked.
func NewRevenueMonitor(perfRepo repository.PerformanceRepository, interval time.Duration) *RevenueMonitor {
	return &RevenueMonitor{
		perfRepo:    perfRepo,
		interval:    interval,
		knownTotals: make(map[string]float64),
	}
}

// Start launches the periodic revenue monitoring loop.
// This is a blocking function that runs indefinitely until the program stops.
func (m *RevenueMonitor) Start() {
	log.Printf("[MONITOR] Starting revenue monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Immediate check on startup before waiting for the first tick
	m.checkTotals()

	for range ticker.C {
		m.checkTotals()
	}
}

// checkTotals reads today's revenue totals per account and compares them with
// the previously observed values.
func (m *RevenueMonitor) checkTotals() {
	today := time.Now().Format(models.PeriodFormat)
	totals, err := m.perfRepo.DailyTotals(today)
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving daily totals: %v", err)
		return
	}

	for _, total := range totals {
		m.mu.Lock()
		previous, exists := m.knownTotals[total.AccountID]
		m.knownTotals[total.AccountID] = total.Revenue
		m.mu.Unlock()

		if !exists {
			log.Printf("[MONITOR] Account %s revenue today: %.2f (%d purchase(s))",
				total.AccountID, total.Revenue, total.Purchases)
			continue
		}

		if total.Revenue != previous {
			log.Printf("[NOTIFICATION] Account %s revenue moved from %.2f to %.2f",
				total.AccountID, previous, total.Revenue)
		}
	}
}
