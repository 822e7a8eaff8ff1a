package repository

import (
	"github.com/celumarket/celumarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new technical report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.TechnicalReport) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) GetByID(id uint) (*models.TechnicalReport, error) {
	var report models.TechnicalReport
	err := r.db.Preload("User").First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports matching filter, unvalidated ones first, newest first within a group.
// Search matches device model, report number and owner name case-insensitively.
func (r *reportRepository) List(filter ReportFilter) ([]models.TechnicalReport, int64, error) {
	var total int64
	if err := r.db.Model(&models.TechnicalReport{}).Scopes(reportFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.TechnicalReport
	err := reportPageQuery(r.db, filter).Preload("User").Find(&reports).Error
	return reports, total, err
}

func reportPageQuery(db *gorm.DB, filter ReportFilter) *gorm.DB {
	page := filter.Pagination.Normalize()
	return db.Scopes(reportFilterScope(filter)).
		Select("technical_reports.*").
		Order("technical_reports.is_validated ASC, technical_reports.created_at DESC").
		Offset(page.Offset()).Limit(page.Limit)
}

func reportFilterScope(filter ReportFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("LEFT JOIN users ON users.id = technical_reports.user_id")
		if filter.ReportType != "" {
			db = db.Where("technical_reports.report_type = ?", filter.ReportType)
		}
		if filter.IsValidated != nil {
			db = db.Where("technical_reports.is_validated = ?", *filter.IsValidated)
		}
		if filter.Status != "" {
			db = db.Where("technical_reports.status = ?", filter.Status)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where(
				"LOWER(technical_reports.device_model) LIKE ? OR LOWER(technical_reports.report_number) LIKE ? OR LOWER(users.name) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

func (r *reportRepository) GetByUserID(userID uint, offset, limit int) ([]models.TechnicalReport, error) {
	var reports []models.TechnicalReport
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}

func (r *reportRepository) Moderate(id uint, fn func(report *models.TechnicalReport) error) (*models.TechnicalReport, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var report models.TechnicalReport
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&report, id).Error; err != nil {
			return err
		}
		if err := fn(&report); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete permanently removes a report. A missing report yields gorm.ErrRecordNotFound.
func (r *reportRepository) Delete(id uint) error {
	result := r.db.Delete(&models.TechnicalReport{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reportRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.TechnicalReport{}).Count(&count).Error
	return count, err
}

func (r *reportRepository) CountUnvalidated() (int64, error) {
	var count int64
	err := r.db.Model(&models.TechnicalReport{}).Where("is_validated = ?", false).Count(&count).Error
	return count, err
}

func (r *reportRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TechnicalReport{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
