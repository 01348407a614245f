package ws

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"city-bomber/internal/session"
	"city-bomber/internal/telemetry"
	"city-bomber/logging"
	"city-bomber/logging/lifecycle"
)

const tracerName = "city-bomber/internal/net/ws"

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Tracer    trace.Tracer

	// Propagator extracts the caller's trace context from the upgrade
	// request. Defaults to the global propagator.
	Propagator propagation.TextMapPropagator

	SendBuffer int
	ReadLimit  int64
	WriteWait  time.Duration
	PongWait   time.Duration
}

// Handler upgrades HTTP requests into relay participants.
type Handler struct {
	reg      *session.Registry
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewHandler(reg *session.Registry, cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = defaultReadLimit
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaultWriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}

	return &Handler{
		reg: reg,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle serves one participant for the lifetime of its websocket.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	ctx := h.cfg.Propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	traceID := uuid.NewString()
	conn := newConn(socket, h.cfg.SendBuffer, h.cfg.WriteWait)
	participantID := h.reg.Connect(conn)
	actor := logging.Participant(participantID)

	lifecycle.ParticipantConnected(ctx, h.cfg.Publisher, actor, traceID, lifecycle.ConnectedPayload{
		RemoteAddr: r.RemoteAddr,
	})

	go conn.writePump(h.cfg.PongWait * 9 / 10)

	reason := h.readLoop(ctx, socket, participantID, traceID)

	h.reg.Disconnect(ctx, participantID)
	lifecycle.ParticipantDisconnected(ctx, h.cfg.Publisher, actor, traceID, lifecycle.DisconnectedPayload{
		Reason: reason,
	})
}

func (h *Handler) readLoop(ctx context.Context, socket *websocket.Conn, participantID, traceID string) string {
	socket.SetReadLimit(h.cfg.ReadLimit)
	_ = socket.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		messageType, payload, err := socket.ReadMessage()
		if err != nil {
			return h.closeReason(participantID, err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		_ = socket.SetReadDeadline(time.Now().Add(h.cfg.PongWait))

		msgCtx, span := h.cfg.Tracer.Start(ctx, "relay.envelope",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("connection.id", traceID),
				attribute.Int("envelope.size", len(payload)),
			),
		)
		h.reg.Handle(msgCtx, participantID, payload)
		span.End()
	}
}

func (h *Handler) closeReason(participantID string, err error) string {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			h.cfg.Logger.Printf("unexpected close from %s: %v", participantID, err)
		}
		return closeErr.Error()
	}
	h.cfg.Logger.Printf("read failed for %s: %v", participantID, err)
	return err.Error()
}
