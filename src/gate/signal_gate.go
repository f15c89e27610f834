package gate

import (
	"context"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	logger "github.com/sirupsen/logrus"

	"memetrader/src/model"
)

// Verdict classifies the outcome of admitting one signal.
type Verdict string

const (
	VerdictAdmitted      Verdict = "admitted"
	VerdictDuplicate     Verdict = "duplicate"
	VerdictLowConfidence Verdict = "low_confidence"
	VerdictBadAddress    Verdict = "bad_address"
)

// SignalStore is the persistence surface the gate needs. Admitted signals
// are written before being forwarded downstream.
type SignalStore interface {
	Insert(ctx context.Context, signal *model.TokenSignal) error
}

// SignalGate deduplicates incoming signals per token address over a rolling
// window and drops signals below the confidence floor.
type SignalGate struct {
	config Config
	store  SignalStore
	now    func() time.Time

	mu       sync.Mutex
	admitted map[string]time.Time // address -> last admission
}

func NewSignalGate(config Config, store SignalStore) *SignalGate {
	return &SignalGate{
		config:   config,
		store:    store,
		now:      time.Now,
		admitted: make(map[string]time.Time),
	}
}

// Accept decides whether a signal enters the pipeline. On admission the
// signal is persisted first; a persistence failure does not consume the
// dedup slot, so a fresh mention can retry.
func (g *SignalGate) Accept(ctx context.Context, signal *model.TokenSignal) (Verdict, error) {
	log := logger.WithFields(logger.Fields{
		"component": "SignalGate",
		"symbol":    signal.Symbol,
		"address":   signal.Address,
		"source":    signal.Source,
	})

	if !validAddress(signal.Address) {
		log.Debug("Signal dropped, malformed token address")
		return VerdictBadAddress, nil
	}

	if signal.Confidence < g.config.MinConfidence {
		log.WithField("confidence", signal.Confidence).Debug("Signal dropped, low confidence")
		return VerdictLowConfidence, nil
	}

	g.mu.Lock()
	last, seen := g.admitted[signal.Address]
	if seen && g.now().Sub(last) < g.config.DedupWindow {
		g.mu.Unlock()
		log.Debug("Signal dropped, duplicate within dedup window")
		return VerdictDuplicate, nil
	}
	g.admitted[signal.Address] = g.now()
	g.mu.Unlock()

	if err := g.store.Insert(ctx, signal); err != nil {
		g.mu.Lock()
		delete(g.admitted, signal.Address)
		g.mu.Unlock()
		return "", err
	}

	log.WithField("confidence", signal.Confidence).Info("Signal admitted")
	return VerdictAdmitted, nil
}

// Prune drops dedup entries older than the window. Called periodically so the
// map does not grow without bound.
func (g *SignalGate) Prune() int {
	cutoff := g.now().Add(-g.config.DedupWindow)

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for address, at := range g.admitted {
		if at.Before(cutoff) {
			delete(g.admitted, address)
			removed++
		}
	}
	return removed
}

// validAddress checks that the address is base58 and decodes to a 32-byte
// public key, as Solana mint addresses do.
func validAddress(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(raw) == 32
}
