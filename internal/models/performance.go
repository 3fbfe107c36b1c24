package models

import "time"

// Content types a touchpoint can be associated with, in resolution priority
// order (quote wins over asset, asset over product).
const (
	ContentQuote   = "quote"
	ContentAsset   = "asset"
	ContentProduct = "product"
	ContentUnknown = "unknown"
)

// PeriodDay is the only aggregation period the engine maintains today.
const PeriodDay = "day"

// PeriodFormat is the layout of ContentPerformance.PeriodStart.
const PeriodFormat = "2006-01-02"

// ContentPerformance holds the per-day counters for one piece of content.
// There is at most one row per (account, content_type, content_id, period)
// key; updates are additive deltas applied atomically in the store, never
// read-modify-write in application code.
type ContentPerformance struct {
	ID uint `gorm:"primaryKey"`

	AccountID   string `gorm:"uniqueIndex:idx_perf_key,priority:1;size:64;not null"`
	ContentType string `gorm:"uniqueIndex:idx_perf_key,priority:2;size:16;not null"`
	ContentID   string `gorm:"uniqueIndex:idx_perf_key,priority:3;size:64;not null"`
	PeriodType  string `gorm:"uniqueIndex:idx_perf_key,priority:4;size:8;not null;default:day"`
	PeriodStart string `gorm:"uniqueIndex:idx_perf_key,priority:5;size:10;not null"`

	Impressions int64
	Clicks      int64
	Saves       int64
	AddToCarts  int64
	Checkouts   int64
	Purchases   int64
	Revenue     float64

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// PerformanceDelta is the set of counter increments one event contributes to
// its (content, day) row.
type PerformanceDelta struct {
	Impressions int64
	Clicks      int64
	Saves       int64
	AddToCarts  int64
	Checkouts   int64
	Purchases   int64
	Revenue     float64
}

// DeltaForEvent maps an event type to its counter increments. Purchase events
// additionally add the order total to the revenue counter. Unknown event
// types produce a zero delta.
func DeltaForEvent(eventType string, orderTotal float64) PerformanceDelta {
	switch eventType {
	case EventImpression:
		return PerformanceDelta{Impressions: 1}
	case EventClick:
		return PerformanceDelta{Clicks: 1}
	case EventSave:
		return PerformanceDelta{Saves: 1}
	case EventAddToCart:
		return PerformanceDelta{AddToCarts: 1}
	case EventCheckout:
		return PerformanceDelta{Checkouts: 1}
	case EventPurchase:
		return PerformanceDelta{Purchases: 1, Revenue: orderTotal}
	default:
		return PerformanceDelta{}
	}
}
