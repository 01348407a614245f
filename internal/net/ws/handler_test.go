package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"city-bomber/internal/protocol"
	"city-bomber/internal/session"
	"city-bomber/logging/lifecycle"
	"city-bomber/logging/sinks"
)

func newTestServer(t *testing.T) (*session.Registry, *sinks.MemorySink, string) {
	t.Helper()
	events := sinks.NewMemorySink()
	cfg := session.DefaultConfig()
	cfg.SingleRoom = true
	cfg.Publisher = events
	reg := session.NewRegistry(cfg)

	handler := NewHandler(reg, HandlerConfig{Publisher: events})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return reg, events, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func send(t *testing.T, conn *websocket.Conn, env protocol.Envelope) {
	t.Helper()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", env.Type, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to write %s: %v", env.Type, err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	env, err := protocol.Decode(payload)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", payload, err)
	}
	return env
}

func expectType(t *testing.T, conn *websocket.Conn, want protocol.Type) protocol.Envelope {
	t.Helper()
	env := readEnvelope(t, conn)
	if env.Type != want {
		t.Fatalf("expected %s, got %+v", want, env)
	}
	return env
}

func TestHandleRelaysBetweenTwoParticipants(t *testing.T) {
	_, _, url := newTestServer(t)
	host := dial(t, url)
	guest := dial(t, url)

	send(t, host, protocol.CreateRoom())
	created := expectType(t, host, protocol.TypeRoomCreated)
	if created.RoomID != session.DefaultFixedRoomID || created.PlayerNumber != protocol.SlotHost {
		t.Fatalf("unexpected room_created: %+v", created)
	}

	send(t, guest, protocol.JoinRoom(created.RoomID))
	joined := expectType(t, guest, protocol.TypeRoomJoined)
	if joined.PlayerNumber != protocol.SlotGuest {
		t.Fatalf("expected slot 2, got %d", joined.PlayerNumber)
	}
	expectType(t, guest, protocol.TypeGameStart)
	notice := expectType(t, host, protocol.TypePlayerJoined)
	if notice.PlayerID != joined.PlayerID {
		t.Fatalf("expected player_joined for %s, got %s", joined.PlayerID, notice.PlayerID)
	}
	expectType(t, host, protocol.TypeGameStart)

	pose := protocol.Pose{Position: protocol.Vec3{X: 1, Y: 40, Z: 2}, Rotation: 1.2, Speed: 30}
	send(t, host, protocol.PlayerUpdate(pose))
	state := expectType(t, guest, protocol.TypePlayerState)
	got, err := protocol.DecodeData[protocol.Pose](state)
	if err != nil || got != pose {
		t.Fatalf("expected pose %+v, got %+v (%v)", pose, got, err)
	}
	if state.PlayerID != created.PlayerID {
		t.Fatalf("expected sender %s on player_state, got %s", created.PlayerID, state.PlayerID)
	}
}

func TestHandleSkipsMalformedMessages(t *testing.T) {
	_, _, url := newTestServer(t)
	host := dial(t, url)

	if err := host.WriteMessage(websocket.TextMessage, []byte("{broken")); err != nil {
		t.Fatalf("failed to write malformed frame: %v", err)
	}
	send(t, host, protocol.CreateRoom())
	expectType(t, host, protocol.TypeRoomCreated)
}

func TestHandleDisconnectNotifiesOpponent(t *testing.T) {
	reg, events, url := newTestServer(t)
	host := dial(t, url)
	guest := dial(t, url)

	send(t, host, protocol.CreateRoom())
	created := expectType(t, host, protocol.TypeRoomCreated)
	send(t, guest, protocol.JoinRoom(created.RoomID))
	joined := expectType(t, guest, protocol.TypeRoomJoined)
	expectType(t, host, protocol.TypePlayerJoined)
	expectType(t, host, protocol.TypeGameStart)

	guest.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	guest.Close()

	left := expectType(t, host, protocol.TypePlayerLeft)
	if left.PlayerID != joined.PlayerID {
		t.Fatalf("expected player_left for %s, got %s", joined.PlayerID, left.PlayerID)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reg.Connections() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected one remaining connection, got %d", reg.Connections())
		}
		time.Sleep(10 * time.Millisecond)
	}
	connected := events.OfType(lifecycle.EventParticipantConnected)
	if len(connected) != 2 || connected[0].TraceID == "" {
		t.Fatalf("expected two connected events with trace ids, got %+v", connected)
	}
}

func TestHandleContinuesCallerTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	reg := session.NewRegistry(session.DefaultConfig())
	handler := NewHandler(reg, HandlerConfig{
		Tracer:     provider.Tracer("test"),
		Propagator: propagation.TraceContext{},
	})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	header := http.Header{}
	header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		resp.Body.Close()
	})

	send(t, conn, protocol.CreateRoom())
	expectType(t, conn, protocol.TypeRoomCreated)

	deadline := time.Now().Add(2 * time.Second)
	for len(recorder.Ended()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	spans := recorder.Ended()
	if len(spans) == 0 {
		t.Fatalf("expected an envelope span")
	}
	if got := spans[0].SpanContext().TraceID().String(); got != traceID {
		t.Fatalf("expected span in trace %s, got %s", traceID, got)
	}
	if !spans[0].Parent().IsRemote() {
		t.Fatalf("expected span parent to come from the upgrade request")
	}
}

func TestConnSendBacklogClosesConnection(t *testing.T) {
	c := newConn(nil, 1, time.Second)
	if err := c.Send([]byte("a")); err != nil {
		t.Fatalf("expected first send to queue, got %v", err)
	}
	if err := c.Send([]byte("b")); err != ErrBacklog {
		t.Fatalf("expected ErrBacklog, got %v", err)
	}
	select {
	case <-c.done:
	default:
		t.Fatalf("expected backlog to close the connection")
	}
	if err := c.Send([]byte("c")); err != ErrClosed {
		t.Fatalf("expected ErrClosed after backlog, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected repeated close to succeed, got %v", err)
	}
}
