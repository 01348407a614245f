package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"city-bomber/internal/net/ws"
	"city-bomber/internal/protocol"
	"city-bomber/internal/session"
)

func newRelay(t *testing.T) string {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.SingleRoom = true
	handler := ws.NewHandler(session.NewRegistry(cfg), ws.HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func connect(t *testing.T, url string) *Manager {
	t.Helper()
	m := NewManager(Config{URL: url})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { m.Disconnect() })
	return m
}

// pump dispatches until cond holds or the deadline passes.
func pump(t *testing.T, m *Manager, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for condition")
		}
		m.DispatchPending()
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerTracksRoomState(t *testing.T) {
	url := newRelay(t)
	host := connect(t, url)
	guest := connect(t, url)

	var hostEvents, guestEvents []protocol.Type
	record := func(list *[]protocol.Type) Handler {
		return func(env protocol.Envelope) { *list = append(*list, env.Type) }
	}
	for _, typ := range []protocol.Type{protocol.TypeRoomCreated, protocol.TypePlayerJoined, protocol.TypeGameStart} {
		host.On(typ, record(&hostEvents))
	}
	for _, typ := range []protocol.Type{protocol.TypeRoomJoined, protocol.TypeGameStart} {
		guest.On(typ, record(&guestEvents))
	}

	if err := host.CreateRoom(); err != nil {
		t.Fatalf("create room: %v", err)
	}
	pump(t, host, func() bool { return host.RoomID() != "" })
	if host.RoomID() != session.DefaultFixedRoomID || host.Slot() != 1 || !host.IsHost() {
		t.Fatalf("unexpected host state room=%q slot=%d host=%v", host.RoomID(), host.Slot(), host.IsHost())
	}

	if err := guest.JoinRoom(host.RoomID()); err != nil {
		t.Fatalf("join room: %v", err)
	}
	pump(t, guest, func() bool { return len(guestEvents) == 2 })
	pump(t, host, func() bool { return len(hostEvents) == 3 })

	if guest.Slot() != 2 || guest.IsHost() || guest.ParticipantID() == host.ParticipantID() {
		t.Fatalf("unexpected guest state slot=%d host=%v id=%q", guest.Slot(), guest.IsHost(), guest.ParticipantID())
	}
	if hostEvents[2] != protocol.TypeGameStart || guestEvents[1] != protocol.TypeGameStart {
		t.Fatalf("expected game_start last, host=%v guest=%v", hostEvents, guestEvents)
	}
}

func TestManagerEmitsDisconnectedOnce(t *testing.T) {
	url := newRelay(t)
	m := connect(t, url)

	count := 0
	m.On(protocol.TypeDisconnected, func(protocol.Envelope) { count++ })

	if err := m.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := m.Disconnect(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected on second disconnect, got %v", err)
	}
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected Done to close")
	}
	m.DispatchPending()
	m.DispatchPending()

	if count != 1 {
		t.Fatalf("expected one disconnected event, got %d", count)
	}
	if m.Connected() {
		t.Fatalf("expected manager to report disconnected")
	}
	if err := m.CreateRoom(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after disconnect, got %v", err)
	}
}

func TestManagerConnectFailureIsNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	m := NewManager(Config{URL: url})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := m.Connect(ctx); err == nil {
		t.Fatal("expected connect to fail")
	}
	if err := m.Connect(ctx); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
	if err := m.SendPlayerUpdate(protocol.Pose{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestManagerSendsBeforeConnect(t *testing.T) {
	m := NewManager(Config{URL: "ws://127.0.0.1:1/ws"})
	if err := m.SendPlayerHit("player_2"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
