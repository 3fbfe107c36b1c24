package models

import "time"

// Attribution model types. An unrecognized type falls back to linear.
const (
	ModelFirstTouch    = "first_touch"
	ModelLastTouch     = "last_touch"
	ModelLinear        = "linear"
	ModelTimeDecay     = "time_decay"
	ModelPositionBased = "position_based"
)

// Defaults applied when an account has no stored default model.
const (
	DefaultModelType  = ModelLastTouch
	DefaultWindowDays = 7
)

// AttributionModel is the per-account weighting configuration. At most one
// row per account carries IsDefault=true.
type AttributionModel struct {
	ID         uint   `gorm:"primaryKey"`
	AccountID  string `gorm:"index;size:64;not null"`
	Name       string `gorm:"size:64"`
	ModelType  string `gorm:"size:32;not null"`
	WindowDays int    `gorm:"default:7"`
	IsDefault  bool
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// RevenueAttribution is one (order, touchpoint) credit row. For a single
// order the attribution weights across its rows sum to 1. Rows are written
// once, at attribution time, and never updated.
type RevenueAttribution struct {
	ID uint `gorm:"primaryKey"`

	AccountID string `gorm:"index;size:64;not null"`

	OrderID    string    `gorm:"index;size:64;not null"`
	OrderTotal float64
	OrderDate  time.Time `gorm:"index"`
	CustomerID string    `gorm:"size:64"`

	// ModelID is zero when the built-in fallback configuration was used.
	ModelID   uint
	ModelType string `gorm:"size:32"`

	ContentType string `gorm:"size:16;index"`
	ContentID   string `gorm:"size:64"`

	AttributionWeight float64
	AttributedRevenue float64

	TouchpointType string `gorm:"size:32"`
	TouchpointID   uint
	TouchpointAt   time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
