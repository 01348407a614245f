package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"city-bomber/internal/protocol"
	"city-bomber/internal/telemetry"
)

var (
	// ErrNotConnected is returned by senders before Connect succeeds or after
	// the transport closed.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by a second Connect. A manager owns at
	// most one transport for its lifetime.
	ErrAlreadyConnected = errors.New("connect already attempted")
)

const (
	defaultInboxSize = 256
	writeWait        = 5 * time.Second
)

type Config struct {
	URL       string
	Dialer    *websocket.Dialer
	Logger    telemetry.Logger
	InboxSize int
}

// Manager owns one relay connection. A background goroutine reads envelopes
// into an inbox; DispatchPending hands them to subscribers on the caller's
// goroutine, so handlers run between frames of the game loop and never
// concurrently with it.
type Manager struct {
	cfg Config
	bus *Bus

	inbox chan protocol.Envelope
	done  chan struct{}

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu            sync.Mutex
	attempted     bool
	connected     bool
	participantID string
	roomID        string
	slot          int
	isHost        bool

	disconnectOnce sync.Once
	disconnected   atomic.Bool
	notified       atomic.Bool
}

func NewManager(cfg Config) *Manager {
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = defaultInboxSize
	}
	return &Manager{
		cfg:   cfg,
		bus:   NewBus(),
		inbox: make(chan protocol.Envelope, cfg.InboxSize),
		done:  make(chan struct{}),
	}
}

// On subscribes fn to envelopes of type t, including the local
// protocol.TypeDisconnected event.
func (m *Manager) On(t protocol.Type, fn Handler) Subscription {
	return m.bus.On(t, fn)
}

func (m *Manager) Off(sub Subscription) bool {
	return m.bus.Off(sub)
}

// Connect dials the relay once. A failed attempt is returned to the caller
// and never retried; reconnecting needs a new Manager.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.attempted {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	m.attempted = true
	m.mu.Unlock()

	conn, resp, err := m.cfg.Dialer.DialContext(ctx, m.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		close(m.done)
		return fmt.Errorf("connect %s: %w", m.cfg.URL, err)
	}

	m.mu.Lock()
	m.conn = conn
	m.connected = true
	m.mu.Unlock()

	go m.readLoop(conn)
	return nil
}

// Done is closed once the transport is gone or the connect attempt failed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.cfg.Logger.Printf("relay connection lost: %v", err)
			}
			m.markDisconnected()
			return
		}
		env, err := protocol.Decode(payload)
		if err != nil {
			m.cfg.Logger.Printf("discarding malformed message from relay: %v", err)
			continue
		}
		select {
		case m.inbox <- env:
		case <-m.done:
			return
		}
	}
}

func (m *Manager) markDisconnected() {
	m.disconnectOnce.Do(func() {
		m.mu.Lock()
		m.connected = false
		conn := m.conn
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		m.disconnected.Store(true)
		close(m.done)
	})
}

// DispatchPending delivers every queued envelope to subscribers and returns
// how many were delivered. It never blocks. Once the transport is gone and
// the inbox is drained, subscribers receive protocol.TypeDisconnected exactly
// once.
func (m *Manager) DispatchPending() int {
	n := 0
	for {
		select {
		case env := <-m.inbox:
			m.dispatch(env)
			n++
		default:
			if m.disconnected.Load() && m.notified.CompareAndSwap(false, true) {
				m.bus.Emit(protocol.Envelope{Type: protocol.TypeDisconnected})
				n++
			}
			return n
		}
	}
}

func (m *Manager) dispatch(env protocol.Envelope) {
	m.mu.Lock()
	switch env.Type {
	case protocol.TypeRoomCreated:
		m.roomID = env.RoomID
		m.participantID = env.PlayerID
		m.slot = env.PlayerNumber
		m.isHost = true
	case protocol.TypeRoomJoined:
		m.roomID = env.RoomID
		m.participantID = env.PlayerID
		m.slot = env.PlayerNumber
		m.isHost = false
	}
	m.mu.Unlock()

	m.bus.Emit(env)
}

// Disconnect closes the transport. Subscribers see a single
// protocol.TypeDisconnected on the next DispatchPending.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	conn := m.conn
	connected := m.connected
	m.mu.Unlock()
	if conn == nil || !connected {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	m.writeMu.Unlock()

	m.markDisconnected()
	return nil
}

func (m *Manager) send(env protocol.Envelope) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.connected
	m.mu.Unlock()
	if conn == nil || !connected {
		return ErrNotConnected
	}

	data, err := protocol.Encode(env)
	if err != nil {
		return err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", env.Type, err)
	}
	return nil
}

func (m *Manager) CreateRoom() error {
	return m.send(protocol.CreateRoom())
}

func (m *Manager) JoinRoom(roomID string) error {
	return m.send(protocol.JoinRoom(roomID))
}

func (m *Manager) SendPlayerUpdate(pose protocol.Pose) error {
	return m.send(protocol.PlayerUpdate(pose))
}

func (m *Manager) SendBulletFired(data protocol.BulletData) error {
	return m.send(protocol.FireBullet(data))
}

func (m *Manager) SendBombDropped(data protocol.BombData) error {
	return m.send(protocol.DropBomb(data))
}

// SendPlayerHit claims a hit on the opponent. The relay resolves the target
// from the room; targetID is informational.
func (m *Manager) SendPlayerHit(targetID string) error {
	return m.send(protocol.PlayerHit(targetID))
}

func (m *Manager) SendBuildingDestroyed(data protocol.BuildingData) error {
	return m.send(protocol.BuildingDestroyed(data))
}

func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Manager) ParticipantID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.participantID
}

func (m *Manager) RoomID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomID
}

func (m *Manager) Slot() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot
}

func (m *Manager) IsHost() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isHost
}
