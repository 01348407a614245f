package match

import (
	"time"

	"city-bomber/internal/client"
	"city-bomber/internal/protocol"
	"city-bomber/internal/reconcile"
	"city-bomber/internal/telemetry"
)

// Connection is the part of client.Manager a match drives.
type Connection interface {
	On(t protocol.Type, fn client.Handler) client.Subscription
	Off(sub client.Subscription) bool
	ParticipantID() string
	Slot() int

	SendPlayerUpdate(pose protocol.Pose) error
	SendBulletFired(data protocol.BulletData) error
	SendBombDropped(data protocol.BombData) error
	SendPlayerHit(targetID string) error
	SendBuildingDestroyed(data protocol.BuildingData) error
}

// Effects receives the presentation side of match events.
type Effects interface {
	Status(text string)
	Explosion(at protocol.Vec3)
	RemoteBullet(data protocol.BulletData)
	RemoteBomb(data protocol.BombData)
	// LocalRespawn asks the caller to move the local aircraft to pose.
	LocalRespawn(pose protocol.Pose)
}

type Config struct {
	UpdateInterval time.Duration
	MaxHealth      int
	HitBonus       int
	Reconcile      reconcile.Options
	Logger         telemetry.Logger
}

func DefaultConfig() Config {
	return Config{
		UpdateInterval: 50 * time.Millisecond,
		MaxHealth:      10,
		HitBonus:       100,
	}
}

// Match is the client half of a two-player game: it feeds relay events into
// the remote entity and the local health and score, and streams the local
// pose. Not safe for concurrent use; drive it from the game loop together
// with client.Manager.DispatchPending.
type Match struct {
	cfg    Config
	conn   Connection
	fx     Effects
	status *client.Status
	subs   []client.Subscription

	started     bool
	defeated    bool
	health      int
	score       int
	localPose   protocol.Pose
	sinceUpdate time.Duration
	lastStatus  string

	remoteID string
	remote   *reconcile.Entity
}

func New(conn Connection, fx Effects, status *client.Status, cfg Config) *Match {
	def := DefaultConfig()
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = def.UpdateInterval
	}
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = def.MaxHealth
	}
	if cfg.HitBonus < 0 {
		cfg.HitBonus = 0
	}
	if cfg.Reconcile.MaxHealth <= 0 {
		cfg.Reconcile.MaxHealth = cfg.MaxHealth
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if status == nil {
		status = client.NewStatus("en")
	}

	m := &Match{
		cfg:    cfg,
		conn:   conn,
		fx:     fx,
		status: status,
		health: cfg.MaxHealth,
	}
	handlers := map[protocol.Type]client.Handler{
		protocol.TypeRoomCreated:       m.onRoomCreated,
		protocol.TypeRoomJoined:        m.onRoomJoined,
		protocol.TypePlayerJoined:      m.onPlayerJoined,
		protocol.TypeGameStart:         m.onGameStart,
		protocol.TypePlayerState:       m.onPlayerState,
		protocol.TypeBulletFired:       m.onBulletFired,
		protocol.TypeBombDropped:       m.onBombDropped,
		protocol.TypePlayerDamaged:     m.onPlayerDamaged,
		protocol.TypePlayerKilled:      m.onPlayerKilled,
		protocol.TypePlayerRespawn:     m.onPlayerRespawn,
		protocol.TypePlayerLeft:        m.onPlayerLeft,
		protocol.TypeError:             m.onError,
		protocol.TypeDisconnected:      m.onDisconnected,
		protocol.TypeBuildingDestroyed: m.onBuildingDestroyed,
	}
	for _, t := range handledTypes {
		m.subs = append(m.subs, conn.On(t, handlers[t]))
	}
	return m
}

// handledTypes fixes subscription order.
var handledTypes = []protocol.Type{
	protocol.TypeRoomCreated,
	protocol.TypeRoomJoined,
	protocol.TypePlayerJoined,
	protocol.TypeGameStart,
	protocol.TypePlayerState,
	protocol.TypeBulletFired,
	protocol.TypeBombDropped,
	protocol.TypePlayerDamaged,
	protocol.TypePlayerKilled,
	protocol.TypePlayerRespawn,
	protocol.TypePlayerLeft,
	protocol.TypeError,
	protocol.TypeDisconnected,
	protocol.TypeBuildingDestroyed,
}

// Close unsubscribes every handler.
func (m *Match) Close() {
	for _, sub := range m.subs {
		m.conn.Off(sub)
	}
	m.subs = nil
}

// Update advances the remote entity by dt and sends the local pose whenever
// the update interval has elapsed. Nothing is sent while the local aircraft
// waits for its respawn.
func (m *Match) Update(dt time.Duration, local protocol.Pose) error {
	m.localPose = local
	if m.remote != nil {
		m.remote.Tick(dt)
	}
	if !m.started || m.defeated {
		return nil
	}
	m.sinceUpdate += dt
	if m.sinceUpdate < m.cfg.UpdateInterval {
		return nil
	}
	m.sinceUpdate = 0
	return m.conn.SendPlayerUpdate(local)
}

// ReportHit claims a hit on the opponent. Claims against a missing or dead
// opponent, or made while the local aircraft is down, are not sent.
func (m *Match) ReportHit() (bool, error) {
	if m.defeated || m.remote == nil || !m.remote.Alive() {
		return false, nil
	}
	if err := m.conn.SendPlayerHit(m.remoteID); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Match) FireBullet(data protocol.BulletData) error {
	return m.conn.SendBulletFired(data)
}

func (m *Match) DropBomb(data protocol.BombData) error {
	return m.conn.SendBombDropped(data)
}

// DestroyBuilding credits a destroyed building locally and reports it.
func (m *Match) DestroyBuilding(data protocol.BuildingData) error {
	if data.Score > 0 {
		m.score += data.Score
	}
	return m.conn.SendBuildingDestroyed(data)
}

func (m *Match) Started() bool {
	return m.started
}

// Alive reports whether the local aircraft is flying.
func (m *Match) Alive() bool {
	return !m.defeated
}

func (m *Match) Health() int {
	return m.health
}

func (m *Match) Score() int {
	return m.score
}

func (m *Match) LastStatus() string {
	return m.lastStatus
}

// Remote returns the opponent's entity, or nil before game_start and after
// the opponent left.
func (m *Match) Remote() *reconcile.Entity {
	return m.remote
}

func (m *Match) RemoteID() string {
	return m.remoteID
}

func (m *Match) setStatus(key string, args ...any) {
	m.lastStatus = m.status.Text(key, args...)
	if m.fx != nil {
		m.fx.Status(m.lastStatus)
	}
}

func (m *Match) self(id string) bool {
	return id != "" && id == m.conn.ParticipantID()
}

// learnOpponent records the opponent id from any envelope it originated.
func (m *Match) learnOpponent(id string) {
	if id == "" || m.self(id) {
		return
	}
	m.remoteID = id
	if m.remote != nil && m.remote.ID == "" {
		m.remote.ID = id
	}
}
