package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/analysis"
	"memetrader/src/gate"
	"memetrader/src/model"
	"memetrader/src/notify"
	"memetrader/src/trading"
)

// ErrQueueFull is returned when a signal cannot be enqueued without blocking.
var ErrQueueFull = errors.New("signal queue full")

// AssessmentStore persists completed assessments.
type AssessmentStore interface {
	Insert(ctx context.Context, assessment *model.Assessment) error
}

// PositionReader supplies startup recovery and win-rate queries.
type PositionReader interface {
	FindLive(ctx context.Context) ([]model.Position, error)
	FindClosedSince(ctx context.Context, days int) ([]model.Position, error)
}

// StatisticsStore persists periodic snapshots.
type StatisticsStore interface {
	Insert(ctx context.Context, snapshot *model.StatisticsSnapshot) error
}

// Status is the control-surface view of the running pipeline.
type Status struct {
	Running          bool  `json:"running"`
	Paused           bool  `json:"paused"`
	TokensDiscovered int64 `json:"tokens_discovered"`
	TokensAssessed   int64 `json:"tokens_assessed"`
	PositionsOpened  int64 `json:"positions_opened"`
	PositionsClosed  int64 `json:"positions_closed"`
	SignalQueueDepth int   `json:"signal_queue_depth"`
	BuyQueueDepth    int   `json:"buy_queue_depth"`
	OpenPositions    int   `json:"open_positions"`
}

// Engine wires the pipeline stages together: signal gate, assessment workers,
// trading gate and the position monitor, each pulling from its own queue.
// Discovery and assessment keep running while paused; only the trading gate
// and the monitor honor the pause flag.
type Engine struct {
	config     Config
	signalGate *gate.SignalGate
	analyzer   *analysis.Engine
	tradeGate  *trading.Gate
	monitor    *trading.Monitor
	ledger     *trading.Ledger

	assessments AssessmentStore
	positions   PositionReader
	statistics  StatisticsStore
	notifier    *notify.Notifier

	signalQueue chan *model.TokenSignal
	buyQueue    chan *model.Assessment

	running atomic.Bool
	paused  atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	discovered int64
	assessed   int64
	opened     int64
	closed     int64
}

func NewEngine(
	config Config,
	signalGate *gate.SignalGate,
	analyzer *analysis.Engine,
	ledger *trading.Ledger,
	assessments AssessmentStore,
	positions PositionReader,
	statistics StatisticsStore,
	notifier *notify.Notifier,
) *Engine {
	return &Engine{
		config:      config,
		signalGate:  signalGate,
		analyzer:    analyzer,
		ledger:      ledger,
		assessments: assessments,
		positions:   positions,
		statistics:  statistics,
		notifier:    notifier,
		signalQueue: make(chan *model.TokenSignal, config.SignalQueueSize),
		buyQueue:    make(chan *model.Assessment, config.BuyQueueSize),
	}
}

// AttachTrading is called after construction because the trading gate and
// monitor need the engine's pause check.
func (e *Engine) AttachTrading(tradeGate *trading.Gate, monitor *trading.Monitor) {
	e.tradeGate = tradeGate
	e.monitor = monitor
}

// IsPaused reports the pause flag honored by trading and monitoring.
func (e *Engine) IsPaused() bool {
	return e.paused.Load()
}

// Start launches the worker pool. Idempotent; a second call is refused with
// a reason rather than an error.
func (e *Engine) Start(ctx context.Context) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running.Load() {
		return false, "already running"
	}

	if err := e.recoverPositions(ctx); err != nil {
		return false, "position recovery failed: " + err.Error()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.running.Store(true)

	for i := 0; i < e.config.AssessWorkers; i++ {
		e.wg.Add(1)
		go e.assessWorker(runCtx)
	}
	e.wg.Add(1)
	go e.buyWorker(runCtx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.monitor.Run(runCtx)
	}()
	e.wg.Add(1)
	go e.statsLoop(runCtx)
	e.wg.Add(1)
	go e.pruneLoop(runCtx)

	logger.WithFields(logger.Fields{
		"component":      "Engine",
		"assess_workers": e.config.AssessWorkers,
	}).Info("Pipeline started")
	return true, "started"
}

// Stop cancels the workers and waits for them to drain. In-flight venue calls
// finish or time out naturally before workers exit.
func (e *Engine) Stop() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.Load() {
		return false, "not running"
	}

	e.cancel()
	e.wg.Wait()
	e.running.Store(false)

	logger.WithField("component", "Engine").Info("Pipeline stopped")
	return true, "stopped"
}

// Pause suspends buying and exit execution. Discovery and assessment continue.
func (e *Engine) Pause() (bool, string) {
	if e.paused.Swap(true) {
		return false, "already paused"
	}
	logger.WithField("component", "Engine").Info("Trading paused")
	return true, "paused"
}

// Resume lifts the pause flag.
func (e *Engine) Resume() (bool, string) {
	if !e.paused.Swap(false) {
		return false, "not paused"
	}
	logger.WithField("component", "Engine").Info("Trading resumed")
	return true, "resumed"
}

// Status snapshots the control-surface counters.
func (e *Engine) Status() Status {
	return Status{
		Running:          e.running.Load(),
		Paused:           e.paused.Load(),
		TokensDiscovered: atomic.LoadInt64(&e.discovered),
		TokensAssessed:   atomic.LoadInt64(&e.assessed),
		PositionsOpened:  atomic.LoadInt64(&e.opened),
		PositionsClosed:  atomic.LoadInt64(&e.closed),
		SignalQueueDepth: len(e.signalQueue),
		BuyQueueDepth:    len(e.buyQueue),
		OpenPositions:    e.ledger.Count(),
	}
}

// Positions exposes the live ledger snapshot for the API layer.
func (e *Engine) Positions() []model.Position {
	return e.ledger.Snapshot()
}

// Submit pushes one signal through the gate. Admitted signals are queued for
// assessment; the verdict is returned either way so callers can report it.
func (e *Engine) Submit(ctx context.Context, signal *model.TokenSignal) (gate.Verdict, error) {
	if !e.running.Load() {
		return "", errors.New("pipeline not running")
	}

	verdict, err := e.signalGate.Accept(ctx, signal)
	if err != nil {
		return "", err
	}
	if verdict != gate.VerdictAdmitted {
		return verdict, nil
	}

	atomic.AddInt64(&e.discovered, 1)
	e.notifier.Discovery(signal)

	select {
	case e.signalQueue <- signal:
		return verdict, nil
	default:
		return verdict, ErrQueueFull
	}
}

// PositionOpened counts opens before forwarding the notification.
func (e *Engine) PositionOpened(position *model.Position) {
	atomic.AddInt64(&e.opened, 1)
	e.notifier.PositionOpened(position)
}

// PositionClosed counts full closes before forwarding the notification.
func (e *Engine) PositionClosed(position *model.Position, partial bool) {
	if !partial {
		atomic.AddInt64(&e.closed, 1)
	}
	e.notifier.PositionClosed(position, partial)
}

func (e *Engine) assessWorker(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case signal := <-e.signalQueue:
			e.processSignal(ctx, signal)
		}
	}
}

// processSignal runs one assessment. A failure here is contained: it never
// stops the worker or affects other signals.
func (e *Engine) processSignal(ctx context.Context, signal *model.TokenSignal) {
	assessment := e.analyzer.Assess(ctx, signal)
	atomic.AddInt64(&e.assessed, 1)

	if err := e.assessments.Insert(ctx, assessment); err != nil {
		logger.WithFields(logger.Fields{
			"component": "Engine",
			"address":   signal.Address,
		}).WithError(err).Error("Failed to persist assessment")
	}

	switch assessment.Recommendation {
	case model.RecommendationBuy:
		select {
		case e.buyQueue <- assessment:
		default:
			logger.WithFields(logger.Fields{
				"component": "Engine",
				"address":   signal.Address,
			}).Warn("Buy queue full, dropping buy candidate")
		}
	case model.RecommendationMonitor:
		logger.WithFields(logger.Fields{
			"component": "Engine",
			"symbol":    signal.Symbol,
			"address":   signal.Address,
			"score":     assessment.CombinedScore,
		}).Info("Token flagged for monitoring")
	}
}

func (e *Engine) buyWorker(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case assessment := <-e.buyQueue:
			_, skip, err := e.tradeGate.Consider(ctx, assessment)
			if err != nil {
				logger.WithFields(logger.Fields{
					"component": "Engine",
					"address":   assessment.Address,
				}).WithError(err).Error("Buy attempt failed")
				e.notifier.ErrorAlert("buy_failed", err.Error())
				continue
			}
			if skip != trading.SkipNone {
				logger.WithFields(logger.Fields{
					"component": "Engine",
					"address":   assessment.Address,
					"reason":    skip,
				}).Info("Buy skipped")
			}
		}
	}
}

func (e *Engine) recoverPositions(ctx context.Context) error {
	live, err := e.positions.FindLive(ctx)
	if err != nil {
		return err
	}
	for i := range live {
		position := live[i]
		e.ledger.Restore(&position)
	}
	if len(live) > 0 {
		logger.WithFields(logger.Fields{
			"component": "Engine",
			"recovered": len(live),
		}).Info("Live positions recovered from storage")
	}
	return nil
}
