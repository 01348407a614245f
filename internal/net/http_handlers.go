package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"city-bomber/internal/net/ws"
	"city-bomber/internal/session"
	"city-bomber/internal/telemetry"
	"city-bomber/logging"
)

type HTTPHandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Counters  *telemetry.Counters
	// LogStats reports router throughput on /diagnostics when set.
	LogStats func() logging.RouterStats
	WS       ws.HandlerConfig
}

func NewHTTPHandler(reg *session.Registry, cfg HTTPHandlerConfig) nethttp.Handler {
	if cfg.WS.Logger == nil {
		cfg.WS.Logger = cfg.Logger
	}
	if cfg.WS.Publisher == nil {
		cfg.WS.Publisher = cfg.Publisher
	}
	wsHandler := ws.NewHandler(reg, cfg.WS)

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/ws", wsHandler.Handle)

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status      string                 `json:"status"`
			ServerTime  int64                  `json:"serverTime"`
			Connections int                    `json:"connections"`
			Rooms       []session.RoomSnapshot `json:"rooms"`
			Respawns    int                    `json:"pendingRespawns"`
			Telemetry   map[string]uint64      `json:"telemetry"`
			Logging     *logging.RouterStats   `json:"logging,omitempty"`
		}{
			Status:      "ok",
			ServerTime:  time.Now().UnixMilli(),
			Connections: reg.Connections(),
			Rooms:       reg.Rooms(),
			Respawns:    reg.PendingRespawns(),
			Telemetry:   cfg.Counters.Snapshot(),
		}
		if cfg.LogStats != nil {
			stats := cfg.LogStats()
			payload.Logging = &stats
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
