package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"city-bomber/internal/protocol"
	"city-bomber/internal/telemetry"
	"city-bomber/logging"
	networklog "city-bomber/logging/network"
	sessionlog "city-bomber/logging/session"
)

// Conn is the registry's view of one participant's transport.
type Conn interface {
	// Send queues b for delivery and must not block. It returns an error once
	// the transport is closed.
	Send(b []byte) error
	Close() error
}

// Admission describes a successful create or join.
type Admission struct {
	RoomID        string
	ParticipantID string
	Slot          int
	Health        int
}

type member struct {
	id     string
	conn   Conn
	roomID string
}

type respawnTicket struct {
	roomID string
	deaths uint64
}

type handlerFunc func(ctx context.Context, m *member, route protocol.Route, env protocol.Envelope)

// Registry owns every room and participant of the relay. All mutation
// happens under one mutex, so each inbound envelope is applied completely
// before the next one is looked at.
type Registry struct {
	cfg      Config
	handlers map[protocol.Type]handlerFunc
	nextID   atomic.Uint64

	mu       sync.Mutex
	seq      uint64
	rooms    map[string]*Room
	members  map[string]*member
	respawns map[string]respawnTicket

	// failed holds participants whose transport refused a frame; they are
	// disconnected before the lock is released.
	failed []string
}

func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		cfg:      cfg.normalized(),
		rooms:    make(map[string]*Room),
		members:  make(map[string]*member),
		respawns: make(map[string]respawnTicket),
	}
	r.handlers = map[protocol.Type]handlerFunc{
		protocol.TypeCreateRoom:        r.handleCreateRoom,
		protocol.TypeJoinRoom:          r.handleJoinRoom,
		protocol.TypePlayerUpdate:      r.handlePlayerUpdate,
		protocol.TypeFireBullet:        forwardAs[protocol.BulletData](r),
		protocol.TypeDropBomb:          forwardAs[protocol.BombData](r),
		protocol.TypePlayerHit:         r.handlePlayerHit,
		protocol.TypeBuildingDestroyed: r.handleBuildingDestroyed,
	}
	return r
}

// Connect registers a transport and assigns it a participant id. The
// connection holds no slot until it creates or joins a room.
func (r *Registry) Connect(conn Conn) string {
	id := fmt.Sprintf("player_%d", r.nextID.Add(1))
	r.mu.Lock()
	r.members[id] = &member{id: id, conn: conn}
	r.mu.Unlock()
	return id
}

// Handle decodes and applies one inbound message from participantID.
// Malformed messages are logged and dropped; unknown types are ignored.
func (r *Registry) Handle(ctx context.Context, participantID string, payload []byte) {
	env, decodeErr := protocol.Decode(payload)

	r.mu.Lock()
	defer r.unlock(ctx)

	r.seq++
	r.cfg.Metrics.Add(telemetry.EnvelopesReceived, 1)

	m, ok := r.members[participantID]
	if !ok {
		return
	}
	if decodeErr != nil {
		r.malformedLocked(ctx, m, "", len(payload), decodeErr)
		return
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("envelope.type", string(env.Type)),
		attribute.String("participant.id", participantID),
	)

	route, ok := protocol.Lookup(env.Type)
	if !ok {
		return
	}
	if route.RoomScoped {
		room := r.rooms[m.roomID]
		if room == nil || (env.RoomID != "" && env.RoomID != room.ID) {
			networklog.DroppedOutsideRoom(ctx, r.cfg.Publisher, r.seq, logging.Participant(m.id), networklog.DroppedPayload{Type: string(env.Type)})
			return
		}
		span.SetAttributes(attribute.String("room.id", room.ID))
	}
	r.handlers[env.Type](ctx, m, route, env)
}

// CreateRoom allocates a room with participantID in slot 1 and replies
// room_created to it.
func (r *Registry) CreateRoom(ctx context.Context, participantID string) (Admission, error) {
	r.mu.Lock()
	defer r.unlock(ctx)
	m, ok := r.members[participantID]
	if !ok {
		return Admission{}, ErrUnknownParticipant
	}
	return r.createRoomLocked(ctx, m)
}

// JoinRoom adds participantID to roomID. When the room becomes full it is
// marked started and every participant receives game_start.
func (r *Registry) JoinRoom(ctx context.Context, participantID, roomID string) (Admission, error) {
	r.mu.Lock()
	defer r.unlock(ctx)
	m, ok := r.members[participantID]
	if !ok {
		return Admission{}, ErrUnknownParticipant
	}
	return r.joinRoomLocked(ctx, m, roomID)
}

// Relay sends env to every participant of roomID except excludeID.
func (r *Registry) Relay(ctx context.Context, roomID string, env protocol.Envelope, excludeID string) error {
	r.mu.Lock()
	defer r.unlock(ctx)
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	return r.relayLocked(ctx, room, env, excludeID)
}

// Disconnect removes participantID from the registry and its room, tells the
// remaining participant, and destroys the room once it is empty. Unknown ids
// are ignored, so repeated calls are harmless.
func (r *Registry) Disconnect(ctx context.Context, participantID string) {
	r.mu.Lock()
	defer r.unlock(ctx)
	r.disconnectLocked(ctx, participantID)
}

func (r *Registry) disconnectLocked(ctx context.Context, participantID string) {
	m, ok := r.members[participantID]
	if !ok {
		return
	}
	delete(r.members, participantID)
	delete(r.respawns, participantID)
	r.leaveRoomLocked(ctx, m)
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

// unlock disconnects every participant whose transport failed while the lock
// was held, then releases it. Leaving can fail further sends, so it drains
// until nothing is left.
func (r *Registry) unlock(ctx context.Context) {
	for len(r.failed) > 0 {
		id := r.failed[0]
		r.failed = r.failed[1:]
		r.disconnectLocked(ctx, id)
	}
	r.mu.Unlock()
}

func (r *Registry) leaveRoomLocked(ctx context.Context, m *member) {
	room, ok := r.rooms[m.roomID]
	m.roomID = ""
	if !ok {
		return
	}
	p := room.remove(m.id)
	if p == nil {
		return
	}
	if !room.full() {
		room.Started = false
	}
	sessionlog.RoomLeft(ctx, r.cfg.Publisher, r.seq, room.ID, logging.Participant(m.id), sessionlog.SlotPayload{Slot: p.Slot})
	_ = r.relayLocked(ctx, room, protocol.PlayerLeft(m.id), "")
	if len(room.participants) == 0 {
		delete(r.rooms, room.ID)
		sessionlog.RoomDestroyed(ctx, r.cfg.Publisher, r.seq, room.ID)
	}
}

func (r *Registry) createRoomLocked(ctx context.Context, m *member) (Admission, error) {
	if m.roomID != "" {
		return Admission{}, ErrAlreadyInRoom
	}
	roomID, err := r.allocateRoomIDLocked()
	if err != nil {
		return Admission{}, err
	}
	p := newParticipant(m.id, protocol.SlotHost, r.cfg.MaxHealth)
	room := &Room{ID: roomID, participants: []*Participant{p}}
	r.rooms[roomID] = room
	m.roomID = roomID

	r.sendLocked(ctx, roomID, m, protocol.RoomCreated(roomID, m.id, p.Slot, p.Health))
	sessionlog.RoomCreated(ctx, r.cfg.Publisher, r.seq, roomID, logging.Participant(m.id), sessionlog.SlotPayload{Slot: p.Slot})
	return Admission{RoomID: roomID, ParticipantID: m.id, Slot: p.Slot, Health: p.Health}, nil
}

func (r *Registry) allocateRoomIDLocked() (string, error) {
	if r.cfg.SingleRoom {
		if _, exists := r.rooms[r.cfg.FixedRoomID]; exists {
			return "", ErrRoomExists
		}
		return r.cfg.FixedRoomID, nil
	}
	next := r.cfg.RoomIDs
	if next == nil {
		next = generateRoomID
	}
	for range roomIDAttempts {
		id := next()
		if _, exists := r.rooms[id]; id != "" && !exists {
			return id, nil
		}
	}
	return "", ErrNoRoomID
}

func (r *Registry) joinRoomLocked(ctx context.Context, m *member, roomID string) (Admission, error) {
	if m.roomID != "" {
		return Admission{}, ErrAlreadyInRoom
	}
	room, ok := r.rooms[roomID]
	if !ok {
		return Admission{}, ErrRoomNotFound
	}
	if room.full() {
		return Admission{}, ErrRoomFull
	}
	p := newParticipant(m.id, room.freeSlot(), r.cfg.MaxHealth)
	room.participants = append(room.participants, p)
	m.roomID = room.ID

	r.sendLocked(ctx, room.ID, m, protocol.RoomJoined(room.ID, m.id, p.Slot, p.Health))
	sessionlog.RoomJoined(ctx, r.cfg.Publisher, r.seq, room.ID, logging.Participant(m.id), sessionlog.SlotPayload{Slot: p.Slot})
	_ = r.relayLocked(ctx, room, protocol.PlayerJoined(m.id), m.id)

	if room.full() {
		room.Started = true
		refs := make([]logging.EntityRef, 0, len(room.participants))
		for _, other := range room.participants {
			refs = append(refs, logging.Participant(other.ID))
		}
		// Everyone gets game_start, the joiner included.
		_ = r.relayLocked(ctx, room, protocol.GameStart(), "")
		sessionlog.RoomStarted(ctx, r.cfg.Publisher, r.seq, room.ID, refs)
	}
	return Admission{RoomID: room.ID, ParticipantID: m.id, Slot: p.Slot, Health: p.Health}, nil
}

// rejectLocked answers a failed create or join with an error envelope to the
// requester only.
func (r *Registry) rejectLocked(ctx context.Context, m *member, request protocol.Type, roomID string, err error) {
	r.sendLocked(ctx, roomID, m, protocol.Error(err.Error()))
	sessionlog.JoinRejected(ctx, r.cfg.Publisher, r.seq, roomID, logging.Participant(m.id), sessionlog.RejectedPayload{
		Request: string(request),
		Reason:  err.Error(),
	})
}

func (r *Registry) relayLocked(ctx context.Context, room *Room, env protocol.Envelope, excludeID string) error {
	data, err := protocol.Encode(env)
	if err != nil {
		return err
	}
	for _, p := range room.participants {
		if p.ID == excludeID {
			continue
		}
		if m, ok := r.members[p.ID]; ok {
			r.deliverLocked(ctx, room.ID, m, env.Type, data)
		}
	}
	return nil
}

func (r *Registry) sendLocked(ctx context.Context, roomID string, m *member, env protocol.Envelope) {
	data, err := protocol.Encode(env)
	if err != nil {
		return
	}
	r.deliverLocked(ctx, roomID, m, env.Type, data)
}

func (r *Registry) deliverLocked(ctx context.Context, roomID string, m *member, t protocol.Type, data []byte) {
	if m.conn == nil {
		return
	}
	if err := m.conn.Send(data); err != nil {
		r.cfg.Metrics.Add(telemetry.SendFailures, 1)
		networklog.SendFailed(ctx, r.cfg.Publisher, r.seq, roomID, logging.Participant(m.id), networklog.SendFailedPayload{
			Type:  string(t),
			Error: err.Error(),
		})
		r.failed = append(r.failed, m.id)
		return
	}
	r.cfg.Metrics.Add(telemetry.EnvelopesSent, 1)
	r.cfg.Metrics.Add(telemetry.BytesSent, uint64(len(data)))
}

func (r *Registry) malformedLocked(ctx context.Context, m *member, t protocol.Type, size int, err error) {
	r.cfg.Metrics.Add(telemetry.MalformedDropped, 1)
	networklog.MalformedEnvelope(ctx, r.cfg.Publisher, r.seq, logging.Participant(m.id), networklog.MalformedPayload{
		Type:  string(t),
		Error: err.Error(),
		Size:  size,
	})
}
