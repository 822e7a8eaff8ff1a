package repository

import (
	"github.com/celumarket/celumarket/app/models"
	"gorm.io/gorm"
)

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(evaluation *models.Evaluation) error {
	return r.db.Create(evaluation).Error
}

// GetByUserID returns a page of the user's evaluations, newest first, and their total count.
func (r *evaluationRepository) GetByUserID(userID uint, offset, limit int) ([]models.Evaluation, int64, error) {
	var total int64
	if err := r.db.Model(&models.Evaluation{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var evaluations []models.Evaluation
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&evaluations).Error
	return evaluations, total, err
}
