package repository

import (
	"fmt"
	"time"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"gorm.io/gorm"
)

// AttributionFilter porte les filtres optionnels d'une requête de rapport.
type AttributionFilter struct {
	StartDate   *time.Time // order_date >= StartDate
	EndDate     *time.Time // order_date <= EndDate
	ContentType string     // vide signifie "tous les types de contenu"
}

// AttributionRepository est une interface qui définit les méthodes d'accès aux données
type AttributionRepository interface {
	CreateAttribution(row *models.RevenueAttribution) error
	FindAttributions(accountID string, filter AttributionFilter) ([]models.RevenueAttribution, error)
	CountByOrder(accountID, orderID string) (int, error)
}

// GormAttributionRepository est l'implémentation de AttributionRepository utilisant GORM.
type GormAttributionRepository struct {
	db *gorm.DB
}

// NewAttributionRepository crée et retourne une nouvelle instance de GormAttributionRepository.
func NewAttributionRepository(db *gorm.DB) *GormAttributionRepository {
	return &GormAttributionRepository{db: db}
}

// CreateAttribution insère une ligne d'attribution de revenu. Les lignes sont
// immuables après insertion.
func (r *GormAttributionRepository) CreateAttribution(row *models.RevenueAttribution) error {
	if err := r.db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to create revenue attribution for order %s: %w", row.OrderID, err)
	}
	return nil
}

// FindAttributions récupère les lignes d'attribution d'un compte, filtrées par
// plage de dates de commande et type de contenu.
func (r *GormAttributionRepository) FindAttributions(accountID string, filter AttributionFilter) ([]models.RevenueAttribution, error) {
	var rows []models.RevenueAttribution
	query := r.db.Where("account_id = ?", accountID)
	if filter.StartDate != nil {
		query = query.Where("order_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("order_date <= ?", *filter.EndDate)
	}
	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query attributions for account %s: %w", accountID, err)
	}
	return rows, nil
}

// CountByOrder compte les lignes d'attribution existantes pour une commande.
func (r *GormAttributionRepository) CountByOrder(accountID, orderID string) (int, error) {
	var count int64
	err := r.db.Model(&models.RevenueAttribution{}).
		Where("account_id = ? AND order_id = ?", accountID, orderID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count attributions for order %s: %w", orderID, err)
	}
	return int(count), nil
}
