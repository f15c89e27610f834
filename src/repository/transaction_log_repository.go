package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"memetrader/src/database"
	"memetrader/src/model"
)

type TransactionLogRepository struct {
	db *gorm.DB
}

func NewTransactionLogRepository() *TransactionLogRepository {
	return &TransactionLogRepository{db: database.MainDB}
}

func (r *TransactionLogRepository) WithDB(db *gorm.DB) *TransactionLogRepository {
	return &TransactionLogRepository{db: db}
}

func (r *TransactionLogRepository) Insert(ctx context.Context, log *model.TransactionLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "TransactionLogRepository",
			"op":      "Insert",
			"address": log.Address,
			"side":    log.Side,
		}).WithError(err).Error("Failed to insert transaction log")
		return err
	}

	return nil
}

func (r *TransactionLogRepository) FindRecent(ctx context.Context, limit int) ([]model.TransactionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []model.TransactionLog
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":  "TransactionLogRepository",
			"op":    "FindRecent",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch transaction logs")
		return nil, err
	}

	return logs, nil
}
