package repository

import (
	"fmt"
	"time"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"gorm.io/gorm"
)

// EventRepository est une interface qui définit les méthodes d'accès aux données
type EventRepository interface {
	CreateEvent(event *models.AttributionEvent) error
	GetEventByKey(accountID, eventKey string) (*models.AttributionEvent, error)
	FindTouchpoints(accountID, customerID string, eventTypes []string, from, to time.Time) ([]models.AttributionEvent, error)
	CountEventsByAccount(accountID string) (int, error)
}

// GormEventRepository est l'implémentation de l'interface EventRepository utilisant GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository crée et retourne une nouvelle instance de GormEventRepository.
func NewEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// CreateEvent insère un nouveau touchpoint dans la base de données.
// Les événements sont append-only : jamais modifiés ni supprimés ensuite.
func (r *GormEventRepository) CreateEvent(event *models.AttributionEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create attribution event: %w", err)
	}
	return nil
}

// GetEventByKey récupère un événement par sa clé d'idempotence pour un compte donné.
func (r *GormEventRepository) GetEventByKey(accountID, eventKey string) (*models.AttributionEvent, error) {
	var event models.AttributionEvent
	if err := r.db.Where("account_id = ? AND event_key = ?", accountID, eventKey).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindTouchpoints récupère les touchpoints d'un compte dans la fenêtre [from, to],
// filtrés par types d'événements et triés par occurred_at croissant.
// customerID est optionnel : vide signifie "tous les clients".
func (r *GormEventRepository) FindTouchpoints(accountID, customerID string, eventTypes []string, from, to time.Time) ([]models.AttributionEvent, error) {
	var events []models.AttributionEvent
	query := r.db.
		Where("account_id = ?", accountID).
		Where("event_type IN ?", eventTypes).
		Where("occurred_at >= ? AND occurred_at <= ?", from, to)
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if err := query.Order("occurred_at ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query touchpoints for account %s: %w", accountID, err)
	}
	return events, nil
}

// CountEventsByAccount compte le nombre total d'événements enregistrés pour un compte.
func (r *GormEventRepository) CountEventsByAccount(accountID string) (int, error) {
	var count int64
	if err := r.db.Model(&models.AttributionEvent{}).Where("account_id = ?", accountID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events for account %s: %w", accountID, err)
	}
	return int(count), nil
}
