package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"city-bomber/internal/config"
	"city-bomber/internal/protocol"
	"city-bomber/internal/telemetry"
)

func TestRunServesUntilCancelled(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	jsonPath := filepath.Join(t.TempDir(), "relay.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Logger:   telemetry.LoggerFunc(func(string, ...any) {}),
			Relay:    config.Relay{SingleRoom: true, LogJSONPath: jsonPath},
			Listener: listener,
		})
	}()

	base := "http://" + listener.Addr().String()
	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("expected ok, got %q", body)
	}

	conn, wsResp, err := websocket.DefaultDialer.Dial("ws://"+listener.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	if wsResp != nil {
		wsResp.Body.Close()
	}
	data, _ := protocol.Encode(protocol.CreateRoom())
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write create_room: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read room_created: %v", err)
	}
	env, err := protocol.Decode(payload)
	if err != nil || env.Type != protocol.TypeRoomCreated || env.RoomID != "1111" {
		t.Fatalf("unexpected reply %s (%v)", payload, err)
	}
	conn.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}

	logged, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json log: %v", err)
	}
	if !strings.Contains(string(logged), "session.room_created") {
		t.Fatalf("expected room_created event in json log, got %s", logged)
	}
}
