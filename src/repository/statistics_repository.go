package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"memetrader/src/database"
	"memetrader/src/model"
)

type StatisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{db: database.MainDB}
}

func (r *StatisticsRepository) WithDB(db *gorm.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

func (r *StatisticsRepository) Insert(ctx context.Context, snapshot *model.StatisticsSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo": "StatisticsRepository",
			"op":   "Insert",
		}).WithError(err).Error("Failed to insert statistics snapshot")
		return err
	}

	return nil
}

// Latest returns (nil, nil) when no snapshot has been written yet.
func (r *StatisticsRepository) Latest(ctx context.Context) (*model.StatisticsSnapshot, error) {
	var snapshot model.StatisticsSnapshot
	err := r.db.WithContext(ctx).
		Order("id DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(logger.Fields{
			"repo": "StatisticsRepository",
			"op":   "Latest",
		}).WithError(err).Error("Failed to fetch latest statistics snapshot")
		return nil, err
	}

	return &snapshot, nil
}
