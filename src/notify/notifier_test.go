package notify

import (
	"fmt"
	"testing"
	"time"

	"memetrader/src/model"
)

func testNotifier(historyLimit int) (*Notifier, *time.Time) {
	config := Config{
		Enabled:             false,
		MinIntervalLow:      5 * time.Minute,
		MinIntervalMedium:   2 * time.Minute,
		MinIntervalHigh:     time.Minute,
		MinIntervalCritical: 0,
		HistoryLimit:        historyLimit,
	}
	n := NewNotifier(config)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }
	return n, &now
}

func TestNotifierRateLimitPerLevel(t *testing.T) {
	n, now := testNotifier(100)

	if !n.Send(LevelHigh, "first", "msg", nil) {
		t.Fatal("first high notification should deliver")
	}
	if n.Send(LevelHigh, "second", "msg", nil) {
		t.Fatal("second high notification within 60s must be dropped")
	}

	// A different level has its own budget.
	if !n.Send(LevelMedium, "other level", "msg", nil) {
		t.Fatal("medium level should be unaffected by the high-level limit")
	}

	*now = now.Add(61 * time.Second)
	if !n.Send(LevelHigh, "third", "msg", nil) {
		t.Fatal("high notification should deliver after the interval")
	}
}

func TestNotifierCriticalIsNeverRateLimited(t *testing.T) {
	n, _ := testNotifier(100)

	for i := 0; i < 5; i++ {
		if !n.Send(LevelCritical, "stop loss", "msg", nil) {
			t.Fatalf("critical notification %d must not be rate limited", i)
		}
	}
}

func TestNotifierHistoryTrimsOldest(t *testing.T) {
	n, _ := testNotifier(3)

	for i := 0; i < 5; i++ {
		n.Send(LevelCritical, fmt.Sprintf("event-%d", i), "msg", nil)
	}

	history := n.History(0)
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
	if history[0].Title != "event-2" || history[2].Title != "event-4" {
		t.Fatalf("expected oldest entries trimmed, got %+v", history)
	}

	if got := n.History(2); len(got) != 2 || got[1].Title != "event-4" {
		t.Fatalf("limited history wrong: %+v", got)
	}
}

func TestNotifierRecordsDroppedNotifications(t *testing.T) {
	n, _ := testNotifier(100)

	n.Send(LevelLow, "digest", "msg", nil)
	n.Send(LevelLow, "digest again", "msg", nil)

	history := n.History(0)
	if len(history) != 2 {
		t.Fatalf("dropped notifications should still be recorded, got %d", len(history))
	}
	if !history[0].Delivered || history[1].Delivered {
		t.Fatalf("delivery flags wrong: %+v", history)
	}
}

func TestNotifierPositionEvents(t *testing.T) {
	n, _ := testNotifier(100)

	n.PositionOpened(&model.Position{Symbol: "MEME", AmountSOL: 1.5, EntryPrice: 1.0, TakeProfitPrice: 10, StopLossPrice: 0.5})

	closed := &model.Position{Symbol: "MEME", ExitReason: model.ExitReasonStopLoss, CurrentPrice: 0.4, PnlPercent: -60}
	n.PositionClosed(closed, false)

	history := n.History(0)
	if len(history) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(history))
	}
	if history[0].Level != LevelHigh {
		t.Fatalf("open should be high priority, got %s", history[0].Level)
	}
	// Stop-loss closes escalate to critical.
	if history[1].Level != LevelCritical {
		t.Fatalf("stop-loss close should be critical, got %s", history[1].Level)
	}
}
