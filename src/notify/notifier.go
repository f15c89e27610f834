package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"memetrader/src/model"
)

// Level is the notification priority tier. Each tier carries its own minimum
// interval between deliveries; anything arriving sooner is dropped.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

func colorForLevel(level Level) int {
	switch level {
	case LevelCritical:
		return 0xFF0000
	case LevelHigh:
		return 0xFF8C00
	case LevelMedium:
		return 0xFFD700
	default:
		return 0x00CED1
	}
}

// Notification is one delivered (or rate-limited) message, kept in history.
type Notification struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Level     Level                  `json:"level"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Delivered bool                   `json:"delivered"`
}

// Notifier pushes pipeline events to an external webhook. Delivery is
// best-effort: failures are logged and never propagate back into trading.
type Notifier struct {
	config Config
	client *resty.Client
	now    func() time.Time

	mu       sync.Mutex
	lastSent map[Level]time.Time
	history  []Notification
}

func NewNotifier(config Config) *Notifier {
	var client *resty.Client
	if config.Enabled && config.WebhookURL != "" {
		client = resty.New().
			SetBaseURL(config.WebhookURL).
			SetTimeout(config.Timeout)
	}
	return &Notifier{
		config:   config,
		client:   client,
		now:      time.Now,
		lastSent: make(map[Level]time.Time),
	}
}

func (n *Notifier) minInterval(level Level) time.Duration {
	switch level {
	case LevelCritical:
		return n.config.MinIntervalCritical
	case LevelHigh:
		return n.config.MinIntervalHigh
	case LevelMedium:
		return n.config.MinIntervalMedium
	default:
		return n.config.MinIntervalLow
	}
}

// Send delivers one notification, subject to the per-level rate limit.
// Returns false when the message was dropped or delivery failed.
func (n *Notifier) Send(level Level, title, message string, data map[string]interface{}) bool {
	notification := Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Level:     level,
		Data:      data,
		Timestamp: n.now(),
	}

	n.mu.Lock()
	last, seen := n.lastSent[level]
	interval := n.minInterval(level)
	if seen && interval > 0 && notification.Timestamp.Sub(last) < interval {
		n.store(notification)
		n.mu.Unlock()
		logger.WithFields(logger.Fields{
			"component": "Notifier",
			"level":     level,
			"title":     title,
		}).Debug("Notification rate limited")
		return false
	}
	n.lastSent[level] = notification.Timestamp
	n.mu.Unlock()

	delivered := n.deliver(&notification)
	notification.Delivered = delivered

	n.mu.Lock()
	n.store(notification)
	n.mu.Unlock()

	return delivered
}

// store appends to history under the held lock, trimming the oldest entries.
func (n *Notifier) store(notification Notification) {
	n.history = append(n.history, notification)
	if limit := n.config.HistoryLimit; limit > 0 && len(n.history) > limit {
		n.history = n.history[len(n.history)-limit:]
	}
}

func (n *Notifier) deliver(notification *Notification) bool {
	if n.client == nil {
		logger.WithFields(logger.Fields{
			"component": "Notifier",
			"level":     notification.Level,
			"title":     notification.Title,
		}).Info(notification.Message)
		return true
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{{
			"title":       notification.Title,
			"description": notification.Message,
			"color":       colorForLevel(notification.Level),
			"timestamp":   notification.Timestamp.Format(time.RFC3339),
		}},
	}

	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("")
	if err != nil {
		logger.WithFields(logger.Fields{
			"component": "Notifier",
			"title":     notification.Title,
		}).WithError(err).Warn("Webhook delivery failed")
		return false
	}
	if resp.StatusCode() >= 300 {
		logger.WithFields(logger.Fields{
			"component": "Notifier",
			"title":     notification.Title,
			"status":    resp.StatusCode(),
		}).Warn("Webhook delivery rejected")
		return false
	}
	return true
}

// History returns the most recent notifications, newest last.
func (n *Notifier) History(limit int) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if limit <= 0 || limit > len(n.history) {
		limit = len(n.history)
	}
	out := make([]Notification, limit)
	copy(out, n.history[len(n.history)-limit:])
	return out
}

// PositionOpened announces a confirmed buy.
func (n *Notifier) PositionOpened(position *model.Position) {
	n.Send(LevelHigh, "Position Opened",
		fmt.Sprintf("Bought %s: %.4f SOL at %.8f (TP %.8f / SL %.8f)",
			position.Symbol, position.AmountSOL, position.EntryPrice,
			position.TakeProfitPrice, position.StopLossPrice),
		map[string]interface{}{
			"type":    "trade_alert",
			"side":    model.TradeSideBuy,
			"symbol":  position.Symbol,
			"address": position.Address,
		})
}

// PositionClosed announces an exit. Partial exits keep the moonbag open.
func (n *Notifier) PositionClosed(position *model.Position, partial bool) {
	title := "Position Closed"
	if partial {
		title = "Partial Exit"
	}
	level := LevelHigh
	if position.ExitReason == model.ExitReasonStopLoss {
		level = LevelCritical
	}
	n.Send(level, title,
		fmt.Sprintf("Sold %s: %s at %.8f, PnL %.2f%%",
			position.Symbol, position.ExitReason, position.CurrentPrice, position.PnlPercent),
		map[string]interface{}{
			"type":        "trade_alert",
			"side":        model.TradeSideSell,
			"symbol":      position.Symbol,
			"address":     position.Address,
			"exit_reason": position.ExitReason,
			"pnl_percent": position.PnlPercent,
		})
}

// LowSafetyAlert flags a token rejected on its safety score.
func (n *Notifier) LowSafetyAlert(signal *model.TokenSignal, safetyScore int) {
	n.Send(LevelMedium, "Low Safety Score",
		fmt.Sprintf("%s scored %d on safety, skipping", signal.Symbol, safetyScore),
		map[string]interface{}{
			"type":         "analysis_alert",
			"symbol":       signal.Symbol,
			"address":      signal.Address,
			"safety_score": safetyScore,
		})
}

// Discovery announces a newly admitted token signal.
func (n *Notifier) Discovery(signal *model.TokenSignal) {
	n.Send(LevelMedium, "Token Discovered",
		fmt.Sprintf("New token %s from %s (confidence %.2f)",
			signal.Symbol, signal.Source, signal.Confidence),
		map[string]interface{}{
			"type":    "discovery_alert",
			"symbol":  signal.Symbol,
			"address": signal.Address,
			"source":  signal.Source,
		})
}

// ErrorAlert reports a pipeline failure worth human attention.
func (n *Notifier) ErrorAlert(errorType, message string) {
	n.Send(LevelHigh, "Pipeline Error",
		fmt.Sprintf("%s: %s", errorType, message),
		map[string]interface{}{
			"type":       "error_alert",
			"error_type": errorType,
		})
}

// StatusDigest posts the periodic statistics summary.
func (n *Notifier) StatusDigest(stats *model.StatisticsSnapshot) {
	n.Send(LevelLow, "Status Update",
		fmt.Sprintf("Discovered %d, assessed %d, opened %d, closed %d, PnL %.4f SOL, win rate %.1f%%",
			stats.TokensDiscovered, stats.TokensAssessed, stats.PositionsOpened,
			stats.PositionsClosed, stats.TotalPnlSOL, stats.WinRate),
		map[string]interface{}{
			"type": "performance_update",
		})
}
