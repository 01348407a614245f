package reconcile

import (
	"math"
	"time"

	"city-bomber/internal/protocol"
)

const (
	// DefaultLerpFactor is the share of the remaining distance covered per tick.
	DefaultLerpFactor   = 0.15
	DefaultRespawnDelay = 2 * time.Second
	DefaultMaxHealth    = 10
)

type State int

const (
	StateAlive State = iota
	StateDead
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateAlive:
		return "alive"
	case StateDead:
		return "dead"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

type Options struct {
	LerpFactor   float64
	RespawnDelay time.Duration
	MaxHealth    int
}

func (o Options) normalized() Options {
	if o.LerpFactor <= 0 || o.LerpFactor > 1 {
		o.LerpFactor = DefaultLerpFactor
	}
	if o.RespawnDelay <= 0 {
		o.RespawnDelay = DefaultRespawnDelay
	}
	if o.MaxHealth <= 0 {
		o.MaxHealth = DefaultMaxHealth
	}
	return o
}

// Entity is the local rendition of the opponent's aircraft. Network snapshots
// only move the target; Tick eases the rendered pose toward it. Not safe for
// concurrent use; it belongs to the game loop.
type Entity struct {
	ID   string
	Slot int

	opts    Options
	current protocol.Pose
	target  protocol.Pose
	health  int
	state   State
	visible bool

	respawnIn time.Duration
}

// NewEntity places an entity at the spawn pose of slot.
func NewEntity(id string, slot int, opts Options) *Entity {
	opts = opts.normalized()
	spawn := protocol.SpawnPose(slot)
	return &Entity{
		ID:      id,
		Slot:    slot,
		opts:    opts,
		current: spawn,
		target:  spawn,
		health:  opts.MaxHealth,
		state:   StateAlive,
		visible: true,
	}
}

// ApplyState records a reported pose as the new target. The rendered pose is
// left where it is.
func (e *Entity) ApplyState(p protocol.Pose) {
	if e.state == StateDestroyed {
		return
	}
	e.target = p
	e.current.Speed = p.Speed
}

// Tick advances the entity by one frame. While alive the rendered pose moves
// a fixed fraction of the way to the target, so it approaches the target
// monotonically and never overshoots. While dead it counts down to a local
// respawn.
func (e *Entity) Tick(dt time.Duration) {
	switch e.state {
	case StateAlive:
		f := e.opts.LerpFactor
		e.current.Position = lerpVec(e.current.Position, e.target.Position, f)
		e.current.Rotation += (e.target.Rotation - e.current.Rotation) * f
		e.current.Pitch += (e.target.Pitch - e.current.Pitch) * f
	case StateDead:
		e.respawnIn -= dt
		if e.respawnIn <= 0 {
			e.revive(e.opts.MaxHealth)
		}
	}
}

// Kill hides the entity and starts the respawn countdown. It reports false
// when the entity was not alive.
func (e *Entity) Kill() bool {
	if e.state != StateAlive {
		return false
	}
	e.state = StateDead
	e.visible = false
	e.health = 0
	e.respawnIn = e.opts.RespawnDelay
	return true
}

// Respawn applies the relay's respawn notice. An entity whose local countdown
// already revived it only takes the new health.
func (e *Entity) Respawn(health int) {
	switch e.state {
	case StateDead:
		e.revive(health)
	case StateAlive:
		e.SetHealth(health)
	}
}

func (e *Entity) revive(health int) {
	spawn := protocol.SpawnPose(e.Slot)
	e.current = spawn
	e.target = spawn
	e.state = StateAlive
	e.visible = true
	e.respawnIn = 0
	e.SetHealth(health)
}

// Destroy removes the entity for good. Repeated calls are no-ops.
func (e *Entity) Destroy() {
	e.state = StateDestroyed
	e.visible = false
	e.respawnIn = 0
}

// SetHealth stores health clamped to [0, max].
func (e *Entity) SetHealth(health int) {
	e.health = min(max(health, 0), e.opts.MaxHealth)
}

func (e *Entity) Health() int {
	return e.health
}

func (e *Entity) State() State {
	return e.state
}

func (e *Entity) Alive() bool {
	return e.state == StateAlive
}

func (e *Entity) Visible() bool {
	return e.visible
}

func (e *Entity) Pose() protocol.Pose {
	return e.current
}

func (e *Entity) Target() protocol.Pose {
	return e.target
}

func (e *Entity) Position() protocol.Vec3 {
	return e.current.Position
}

// Direction is the unit heading on the horizontal plane.
func (e *Entity) Direction() protocol.Vec3 {
	return protocol.Vec3{
		X: math.Sin(e.current.Rotation),
		Y: 0,
		Z: math.Cos(e.current.Rotation),
	}
}

// Distance is the euclidean distance between the rendered and target
// positions.
func (e *Entity) Distance() float64 {
	return distance(e.current.Position, e.target.Position)
}

func lerpVec(a, b protocol.Vec3, f float64) protocol.Vec3 {
	return protocol.Vec3{
		X: a.X + (b.X-a.X)*f,
		Y: a.Y + (b.Y-a.Y)*f,
		Z: a.Z + (b.Z-a.Z)*f,
	}
}

func distance(a, b protocol.Vec3) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
