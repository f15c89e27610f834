package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"memetrader/src/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type signalAck struct {
	Verdict string `json:"verdict"`
	Address string `json:"address"`
	Error   string `json:"error,omitempty"`
}

// StreamSignals upgrades to a websocket and accepts a stream of signals from
// a collector. Each message is one TokenSignal; each gets an ack with the
// gate verdict. The connection closes when the collector hangs up.
func (h *Handlers) StreamSignals(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := logger.WithFields(logger.Fields{
		"component": "SignalStream",
		"remote":    conn.RemoteAddr().String(),
	})
	log.Info("Collector connected")

	for {
		var signal model.TokenSignal
		if err := conn.ReadJSON(&signal); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Collector connection dropped")
			} else {
				log.Info("Collector disconnected")
			}
			return
		}

		if signal.Timestamp.IsZero() {
			signal.Timestamp = time.Now()
		}

		ack := signalAck{Address: signal.Address}
		verdict, err := h.engine.Submit(r.Context(), &signal)
		if err != nil {
			ack.Error = err.Error()
		}
		ack.Verdict = string(verdict)

		if err := conn.WriteJSON(ack); err != nil {
			log.WithError(err).Warn("Failed to ack signal")
			return
		}
	}
}
