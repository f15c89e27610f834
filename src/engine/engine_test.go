package engine

import (
	"context"
	"testing"
	"time"

	"memetrader/src/model"
	"memetrader/src/notify"
	"memetrader/src/trading"
)

func controlEngine() *Engine {
	notifier := notify.NewNotifier(notify.Config{Enabled: false, HistoryLimit: 10})
	return NewEngine(Config{
		SignalQueueSize:     8,
		BuyQueueSize:        8,
		AssessWorkers:       1,
		StatsInterval:       5 * time.Minute,
		PruneInterval:       10 * time.Minute,
		WinRateLookbackDays: 30,
	}, nil, nil, trading.NewLedger(), nil, nil, nil, notifier)
}

func TestPauseResumeIdempotent(t *testing.T) {
	e := controlEngine()

	ok, reason := e.Pause()
	if !ok || reason != "paused" {
		t.Fatalf("first pause: ok=%v reason=%q", ok, reason)
	}
	if ok, reason = e.Pause(); ok || reason != "already paused" {
		t.Fatalf("second pause must refuse with a reason: ok=%v reason=%q", ok, reason)
	}
	if !e.IsPaused() {
		t.Fatal("pause flag not set")
	}

	if ok, reason = e.Resume(); !ok || reason != "resumed" {
		t.Fatalf("resume: ok=%v reason=%q", ok, reason)
	}
	if ok, reason = e.Resume(); ok || reason != "not paused" {
		t.Fatalf("second resume must refuse with a reason: ok=%v reason=%q", ok, reason)
	}
}

func TestStopWithoutStartRefused(t *testing.T) {
	e := controlEngine()

	ok, reason := e.Stop()
	if ok || reason != "not running" {
		t.Fatalf("stop on idle engine: ok=%v reason=%q", ok, reason)
	}
}

func TestSubmitRequiresRunningPipeline(t *testing.T) {
	e := controlEngine()

	_, err := e.Submit(context.Background(), &model.TokenSignal{
		Symbol:  "MEME",
		Address: "So11111111111111111111111111111111111111112",
	})
	if err == nil {
		t.Fatal("submit on a stopped pipeline must fail")
	}
}

func TestStatusCounters(t *testing.T) {
	e := controlEngine()

	position := &model.Position{Address: "addr-1", Symbol: "MEME", Status: model.PositionStatusOpen}
	e.ledger.Restore(position)

	e.PositionOpened(position)
	e.PositionClosed(position, true)  // partial close does not count
	e.PositionClosed(position, false) // full close does

	status := e.Status()
	if status.Running || status.Paused {
		t.Fatalf("idle engine flags wrong: %+v", status)
	}
	if status.PositionsOpened != 1 {
		t.Fatalf("opened = %d, want 1", status.PositionsOpened)
	}
	if status.PositionsClosed != 1 {
		t.Fatalf("closed = %d, want 1 (partial must not count)", status.PositionsClosed)
	}
	if status.OpenPositions != 1 {
		t.Fatalf("open positions = %d, want 1", status.OpenPositions)
	}
}
