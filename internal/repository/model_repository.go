package repository

import (
	"fmt"

	"github.com/elenaruiz/attribution-engine/internal/models"
	"gorm.io/gorm"
)

// ModelRepository est une interface qui définit les méthodes d'accès aux données
type ModelRepository interface {
	GetDefaultModel(accountID string) (*models.AttributionModel, error)
	SetDefaultModel(model *models.AttributionModel) error
}

// GormModelRepository est l'implémentation de ModelRepository utilisant GORM.
type GormModelRepository struct {
	db *gorm.DB
}

// NewModelRepository crée et retourne une nouvelle instance de GormModelRepository.
func NewModelRepository(db *gorm.DB) *GormModelRepository {
	return &GormModelRepository{db: db}
}

// GetDefaultModel récupère le modèle d'attribution par défaut d'un compte.
// Retourne gorm.ErrRecordNotFound si aucun modèle par défaut n'est configuré ;
// l'appelant applique alors le fallback last_touch / 7 jours.
func (r *GormModelRepository) GetDefaultModel(accountID string) (*models.AttributionModel, error) {
	var model models.AttributionModel
	if err := r.db.Where("account_id = ? AND is_default = ?", accountID, true).First(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// SetDefaultModel enregistre un modèle comme défaut du compte. L'invariant
// "au plus un défaut par compte" est garanti en retirant le flag des autres
// modèles dans la même transaction.
func (r *GormModelRepository) SetDefaultModel(model *models.AttributionModel) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AttributionModel{}).
			Where("account_id = ? AND is_default = ?", model.AccountID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		model.IsDefault = true
		return tx.Create(model).Error
	})
	if err != nil {
		return fmt.Errorf("failed to set default model for account %s: %w", model.AccountID, err)
	}
	return nil
}
