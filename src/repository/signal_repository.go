package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"memetrader/src/database"
	"memetrader/src/model"
)

// SignalRepository persists admitted token signals.
type SignalRepository struct {
	db *gorm.DB
}

func NewSignalRepository() *SignalRepository {
	return &SignalRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *SignalRepository) WithDB(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) Insert(ctx context.Context, signal *model.TokenSignal) error {
	if err := r.db.WithContext(ctx).Create(signal).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "SignalRepository",
			"op":      "Insert",
			"address": signal.Address,
		}).WithError(err).Error("Failed to insert token signal")
		return err
	}

	logger.WithFields(logger.Fields{
		"repo":    "SignalRepository",
		"op":      "Insert",
		"address": signal.Address,
		"source":  signal.Source,
	}).Debug("Token signal inserted")

	return nil
}

// FindRecent fetches the latest admitted signals, newest first.
func (r *SignalRepository) FindRecent(ctx context.Context, limit int) ([]model.TokenSignal, error) {
	if limit <= 0 {
		limit = 20
	}

	var signals []model.TokenSignal
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&signals).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":  "SignalRepository",
			"op":    "FindRecent",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch recent signals")
		return nil, err
	}

	return signals, nil
}
