package repository

import (
	"fmt"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRevenue est une ligne agrégée de revenu par compte pour une journée.
type AccountRevenue struct {
	AccountID string
	Revenue   float64
	Purchases int64
}

// PerformanceRepository est une interface qui définit les méthodes d'accès aux données
type PerformanceRepository interface {
	ApplyDelta(accountID, contentType, contentID, periodStart string, delta models.PerformanceDelta) error
	GetByKey(accountID, contentType, contentID, periodStart string) (*models.ContentPerformance, error)
	DailyTotals(periodStart string) ([]AccountRevenue, error)
}

// GormPerformanceRepository est l'implémentation de PerformanceRepository utilisant GORM.
type GormPerformanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository crée et retourne une nouvelle instance de GormPerformanceRepository.
func NewPerformanceRepository(db *gorm.DB) *GormPerformanceRepository {
	return &GormPerformanceRepository{db: db}
}

// ApplyDelta applique les incréments de compteurs d'un événement à la ligne
// (compte, contenu, jour). L'upsert est atomique côté base : insertion si la
// ligne n'existe pas, sinon addition des deltas aux compteurs existants via
// ON CONFLICT. Deux événements concurrents pour la même clé ne peuvent donc
// pas s'écraser mutuellement.
func (r *GormPerformanceRepository) ApplyDelta(accountID, contentType, contentID, periodStart string, delta models.PerformanceDelta) error {
	row := &models.ContentPerformance{
		AccountID:   accountID,
		ContentType: contentType,
		ContentID:   contentID,
		PeriodType:  models.PeriodDay,
		PeriodStart: periodStart,
		Impressions: delta.Impressions,
		Clicks:      delta.Clicks,
		Saves:       delta.Saves,
		AddToCarts:  delta.AddToCarts,
		Checkouts:   delta.Checkouts,
		Purchases:   delta.Purchases,
		Revenue:     delta.Revenue,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"},
			{Name: "content_type"},
			{Name: "content_id"},
			{Name: "period_type"},
			{Name: "period_start"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"impressions":  gorm.Expr("impressions + ?", delta.Impressions),
			"clicks":       gorm.Expr("clicks + ?", delta.Clicks),
			"saves":        gorm.Expr("saves + ?", delta.Saves),
			"add_to_carts": gorm.Expr("add_to_carts + ?", delta.AddToCarts),
			"checkouts":    gorm.Expr("checkouts + ?", delta.Checkouts),
			"purchases":    gorm.Expr("purchases + ?", delta.Purchases),
			"revenue":      gorm.Expr("revenue + ?", delta.Revenue),
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert performance for %s/%s on %s: %w", contentType, contentID, periodStart, err)
	}
	return nil
}

// GetByKey récupère la ligne de performance pour une clé (compte, contenu, jour).
func (r *GormPerformanceRepository) GetByKey(accountID, contentType, contentID, periodStart string) (*models.ContentPerformance, error) {
	var perf models.ContentPerformance
	err := r.db.Where(
		"account_id = ? AND content_type = ? AND content_id = ? AND period_type = ? AND period_start = ?",
		accountID, contentType, contentID, models.PeriodDay, periodStart,
	).First(&perf).Error
	if err != nil {
		return nil, err
	}
	return &perf, nil
}

// DailyTotals agrège revenu et achats par compte pour une journée donnée.
func (r *GormPerformanceRepository) DailyTotals(periodStart string) ([]AccountRevenue, error) {
	var totals []AccountRevenue
	err := r.db.Model(&models.ContentPerformance{}).
		Select("account_id, SUM(revenue) AS revenue, SUM(purchases) AS purchases").
		Where("period_type = ? AND period_start = ?", models.PeriodDay, periodStart).
		Group("account_id").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily totals for %s: %w", periodStart, err)
	}
	return totals, nil
}
