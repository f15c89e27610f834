package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"memetrader/src/database"
	"memetrader/src/model"
)

// PositionRepository is the durable mirror of the in-memory position ledger.
// Every ledger state transition is written through here; it is never the
// source of truth during a live session.
type PositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Insert(ctx context.Context, position *model.Position) error {
	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "PositionRepository",
			"op":      "Insert",
			"address": position.Address,
		}).WithError(err).Error("Failed to insert position")
		return err
	}

	logger.WithFields(logger.Fields{
		"repo":    "PositionRepository",
		"op":      "Insert",
		"address": position.Address,
		"symbol":  position.Symbol,
	}).Info("Position inserted")

	return nil
}

// UpdateByAddress writes through the mutable fields of a position keyed by
// its token address.
func (r *PositionRepository) UpdateByAddress(ctx context.Context, position *model.Position) error {
	updates := map[string]interface{}{
		"current_price":   position.CurrentPrice,
		"amount_sol":      position.AmountSOL,
		"tokens_held":     position.TokensHeld,
		"status":          position.Status,
		"pnl_percent":     position.PnlPercent,
		"stop_loss_price": position.StopLossPrice,
		"exit_reason":     position.ExitReason,
		"exit_timestamp":  position.ExitTimestamp,
	}

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("address = ?", position.Address).
		Updates(updates).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo":    "PositionRepository",
			"op":      "UpdateByAddress",
			"address": position.Address,
		}).WithError(err).Error("Failed to update position")
		return err
	}

	return nil
}

// FindByAddress returns (nil, nil) when no position exists for the address.
func (r *PositionRepository) FindByAddress(ctx context.Context, address string) (*model.Position, error) {
	var position model.Position
	err := r.db.WithContext(ctx).
		Where("address = ?", address).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(logger.Fields{
			"repo":    "PositionRepository",
			"op":      "FindByAddress",
			"address": address,
		}).WithError(err).Error("Failed to fetch position")
		return nil, err
	}

	return &position, nil
}

// FindLive fetches OPEN and PARTIAL_CLOSE positions for startup recovery.
func (r *PositionRepository) FindLive(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.PositionStatus{
			model.PositionStatusOpen,
			model.PositionStatusPartialClose,
		}).
		Find(&positions).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "PositionRepository",
			"op":   "FindLive",
		}).WithError(err).Error("Failed to fetch live positions")
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"repo":        "PositionRepository",
		"op":          "FindLive",
		"rows_return": len(positions),
	}).Info("Live positions fetched")

	return positions, nil
}

// FindClosedSince fetches positions closed within the last N days, used for
// the win-rate calculation.
func (r *PositionRepository) FindClosedSince(ctx context.Context, days int) ([]model.Position, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var positions []model.Position
	err := r.db.WithContext(ctx).
		Where("status = ? AND exit_timestamp >= ?", model.PositionStatusClosed, since).
		Order("exit_timestamp DESC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "PositionRepository",
			"op":   "FindClosedSince",
			"days": days,
		}).WithError(err).Error("Failed to fetch closed positions")
		return nil, err
	}

	return positions, nil
}
