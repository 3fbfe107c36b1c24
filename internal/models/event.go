package models

import "time"

// Event types, ordered by funnel depth. Events are not required to occur
// in this order.
const (
	EventImpression = "impression"
	EventClick      = "click"
	EventSave       = "save"
	EventAddToCart  = "add_to_cart"
	EventCheckout   = "checkout"
	EventPurchase   = "purchase"
)

// Common source channels. The source_type column is free-form; these are the
// values the surrounding application emits today.
const (
	SourceSocialPin   = "social-pin"
	SourceSocialAd    = "social-ad"
	SourceEmail       = "email"
	SourceQuiz        = "quiz"
	SourceLandingPage = "landing-page"
	SourceDirect      = "direct"
	SourceOrganic     = "organic"
)

// AttributionEvent is one recorded marketing touchpoint stored in the database.
// Rows are append-only: they are never mutated or deleted after creation.
type AttributionEvent struct {
	ID uint `gorm:"primaryKey"`

	// AccountID scopes every read and write; no query crosses accounts.
	// It leads the unique (account, event_key) index so it also serves
	// as the account lookup index.
	AccountID string `gorm:"uniqueIndex:idx_events_account_key,priority:1;size:64;not null"`

	// EventKey is unique per account. Callers may supply it as an
	// idempotency key; otherwise the recorder assigns a generated one.
	EventKey string `gorm:"uniqueIndex:idx_events_account_key,priority:2;size:64;not null"`

	EventType  string `gorm:"size:32;not null;index"`
	SourceType string `gorm:"size:32;not null"`

	// Optional associations to the content or session that produced the event.
	SourceID   string `gorm:"size:64"`
	QuoteID    string `gorm:"size:64"`
	AssetID    string `gorm:"size:64"`
	ProductID  string `gorm:"size:64"`
	CustomerID string `gorm:"size:64;index"`
	SessionID  string `gorm:"size:64"`

	// Campaign context.
	UtmSource   string `gorm:"size:128"`
	UtmMedium   string `gorm:"size:128"`
	UtmCampaign string `gorm:"size:128"`
	UtmContent  string `gorm:"size:128"`
	UtmTerm     string `gorm:"size:128"`

	// Commerce context, populated only on purchase events.
	OrderID    string  `gorm:"size:64"`
	OrderTotal float64

	// OccurredAt is immutable once written; attribution windows filter on it.
	OccurredAt time.Time `gorm:"index;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// EventInput carries the fields of a touchpoint as reported by the caller,
// before validation and persistence.
type EventInput struct {
	EventType      string
	SourceType     string
	SourceID       string
	QuoteID        string
	AssetID        string
	ProductID      string
	CustomerID     string
	SessionID      string
	UtmSource      string
	UtmMedium      string
	UtmCampaign    string
	UtmContent     string
	UtmTerm        string
	OrderID        string
	OrderTotal     float64
	OccurredAt     time.Time // zero value means "now"
	IdempotencyKey string    // optional caller-generated key for at-most-once recording
}

// TrackedEvent is the lightweight payload passed through the batch ingestion
// channel between the HTTP handler and the worker pool.
type TrackedEvent struct {
	AccountID string
	Event     EventInput
}
