package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"memetrader/src/engine"
	"memetrader/src/gate"
	"memetrader/src/model"
)

// SignalReader serves the recent-discoveries query.
type SignalReader interface {
	FindRecent(ctx context.Context, limit int) ([]model.TokenSignal, error)
}

// Handlers exposes the pipeline over HTTP: signal ingest, status, positions
// and the start/stop/pause/resume control surface.
type Handlers struct {
	config  Config
	engine  *engine.Engine
	signals SignalReader
}

func NewHandlers(config Config, eng *engine.Engine, signals SignalReader) *Handlers {
	return &Handlers{config: config, engine: eng, signals: signals}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// PostSignal ingests one signal and reports the gate verdict.
func (h *Handlers) PostSignal(w http.ResponseWriter, r *http.Request) {
	var signal model.TokenSignal
	if err := json.NewDecoder(r.Body).Decode(&signal); err != nil {
		writeError(w, http.StatusBadRequest, "invalid signal payload")
		return
	}
	if signal.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if signal.Timestamp.IsZero() {
		signal.Timestamp = time.Now()
	}

	verdict, err := h.engine.Submit(r.Context(), &signal)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	status := http.StatusAccepted
	if verdict != gate.VerdictAdmitted {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]interface{}{
		"verdict": verdict,
		"symbol":  signal.Symbol,
		"address": signal.Address,
	})
}

// GetStatus returns the control-surface snapshot.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// GetPositions returns the live ledger snapshot.
func (h *Handlers) GetPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Positions())
}

// GetDiscoveries returns the most recently admitted signals.
func (h *Handlers) GetDiscoveries(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signals.FindRecent(r.Context(), h.config.DiscoveriesLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch discoveries")
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

// Control dispatches the idempotent start/stop/pause/resume actions. The
// response always carries a reason string, including on refusals.
func (h *Handlers) Control(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	var ok bool
	var reason string
	switch action {
	case "start":
		ok, reason = h.engine.Start(r.Context())
	case "stop":
		ok, reason = h.engine.Stop()
	case "pause":
		ok, reason = h.engine.Pause()
	case "resume":
		ok, reason = h.engine.Resume()
	default:
		writeError(w, http.StatusNotFound, "unknown control action")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"action":  action,
		"success": ok,
		"reason":  reason,
	})
}
