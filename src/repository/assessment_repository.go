package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"memetrader/src/database"
	"memetrader/src/model"
)

// AssessmentRepository persists completed assessments for audit and future
// model calibration. Assessments are append-only.
type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{db: database.MainDB}
}

func (r *AssessmentRepository) WithDB(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) Insert(ctx context.Context, assessment *model.Assessment) error {
	if err := r.db.WithContext(ctx).Create(assessment).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "AssessmentRepository",
			"op":      "Insert",
			"address": assessment.Address,
		}).WithError(err).Error("Failed to insert assessment")
		return err
	}

	logger.WithFields(logger.Fields{
		"repo":           "AssessmentRepository",
		"op":             "Insert",
		"address":        assessment.Address,
		"recommendation": assessment.Recommendation,
	}).Debug("Assessment inserted")

	return nil
}

// FindByAddress fetches the latest assessments for one token, newest first.
func (r *AssessmentRepository) FindByAddress(ctx context.Context, address string, limit int) ([]model.Assessment, error) {
	if limit <= 0 {
		limit = 10
	}

	var assessments []model.Assessment
	err := r.db.WithContext(ctx).
		Where("address = ?", address).
		Order("id DESC").
		Limit(limit).
		Find(&assessments).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "AssessmentRepository",
			"op":      "FindByAddress",
			"address": address,
		}).WithError(err).Error("Failed to fetch assessments by address")
		return nil, err
	}

	return assessments, nil
}
