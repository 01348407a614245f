package reconcile

import (
	"math"
	"testing"
	"time"

	"city-bomber/internal/protocol"
)

const frame = 16 * time.Millisecond

func TestApplyStateDoesNotSnap(t *testing.T) {
	e := NewEntity("player_1", protocol.SlotHost, Options{})
	start := e.Position()
	target := protocol.Pose{Position: protocol.Vec3{X: 100, Y: 40, Z: 20}, Rotation: 1, Speed: 35}

	e.ApplyState(target)

	if e.Position() != start {
		t.Fatalf("expected rendered position to stay at %+v, got %+v", start, e.Position())
	}
	if e.Target() != target {
		t.Fatalf("expected target %+v, got %+v", target, e.Target())
	}
	if e.Pose().Speed != 35 {
		t.Fatalf("expected speed to follow the snapshot, got %v", e.Pose().Speed)
	}

	e.Tick(frame)
	want := start.X + (100-start.X)*DefaultLerpFactor
	if math.Abs(e.Position().X-want) > 1e-9 {
		t.Fatalf("expected x %.4f after one tick, got %.4f", want, e.Position().X)
	}
}

func TestTickConvergesMonotonically(t *testing.T) {
	e := NewEntity("player_2", protocol.SlotGuest, Options{})
	target := protocol.Pose{Position: protocol.Vec3{X: -80, Y: 55, Z: 30}, Rotation: -2, Pitch: 0.3}
	e.ApplyState(target)

	prevDist := e.Distance()
	prevYawGap := math.Abs(target.Rotation - e.Pose().Rotation)
	for i := 0; i < 150; i++ {
		e.Tick(frame)
		dist := e.Distance()
		yawGap := math.Abs(target.Rotation - e.Pose().Rotation)
		if dist > prevDist || yawGap > prevYawGap {
			t.Fatalf("tick %d: gap grew (dist %.6f -> %.6f, yaw %.6f -> %.6f)", i, prevDist, dist, prevYawGap, yawGap)
		}
		// Never passes the target on any axis.
		if e.Position().X < target.Position.X || e.Pose().Rotation < target.Rotation {
			t.Fatalf("tick %d: overshot target: %+v", i, e.Pose())
		}
		prevDist, prevYawGap = dist, yawGap
	}
	if prevDist > 1e-6 || prevYawGap > 1e-6 {
		t.Fatalf("expected convergence, remaining dist %.8f yaw %.8f", prevDist, prevYawGap)
	}
}

func TestKillHidesAndRespawnsAtSpawn(t *testing.T) {
	e := NewEntity("player_2", protocol.SlotGuest, Options{})
	e.ApplyState(protocol.Pose{Position: protocol.Vec3{X: 10, Y: 10, Z: 10}})
	for i := 0; i < 10; i++ {
		e.Tick(frame)
	}
	moved := e.Position()

	if !e.Kill() {
		t.Fatalf("expected kill to succeed")
	}
	if e.Kill() {
		t.Fatalf("expected second kill to be ignored")
	}
	if e.Visible() || e.Alive() || e.Health() != 0 {
		t.Fatalf("expected hidden dead entity, got state=%s visible=%v health=%d", e.State(), e.Visible(), e.Health())
	}

	e.ApplyState(protocol.Pose{Position: protocol.Vec3{X: 99}})
	e.Tick(time.Second)
	if e.Position() != moved {
		t.Fatalf("expected no interpolation while dead")
	}
	if e.Alive() {
		t.Fatalf("expected entity to stay dead before the delay")
	}

	e.Tick(time.Second)
	if !e.Alive() || !e.Visible() || e.Health() != DefaultMaxHealth {
		t.Fatalf("expected respawn after delay, got state=%s health=%d", e.State(), e.Health())
	}
	if e.Pose() != protocol.SpawnPose(protocol.SlotGuest) {
		t.Fatalf("expected spawn pose, got %+v", e.Pose())
	}
}

func TestRelayRespawnRevivesEarly(t *testing.T) {
	e := NewEntity("player_1", protocol.SlotHost, Options{})
	e.Kill()

	e.Respawn(7)

	if !e.Alive() || e.Health() != 7 || e.Pose() != protocol.SpawnPose(protocol.SlotHost) {
		t.Fatalf("expected relay respawn to revive at spawn with health 7, got %s %d %+v", e.State(), e.Health(), e.Pose())
	}

	// A late notice after the local countdown only refreshes health.
	e.ApplyState(protocol.Pose{Position: protocol.Vec3{X: 5}})
	e.Tick(frame)
	pos := e.Position()
	e.Respawn(10)
	if e.Position() != pos || e.Health() != 10 {
		t.Fatalf("expected pose kept and health 10, got %+v health %d", e.Position(), e.Health())
	}
}

func TestDestroyIsPermanent(t *testing.T) {
	e := NewEntity("player_2", protocol.SlotGuest, Options{})
	e.Destroy()
	e.Destroy()

	e.ApplyState(protocol.Pose{Position: protocol.Vec3{X: 1}})
	e.Respawn(10)
	e.Tick(5 * time.Second)
	if e.State() != StateDestroyed || e.Visible() {
		t.Fatalf("expected destroyed entity to stay destroyed, got %s", e.State())
	}
	if e.Kill() {
		t.Fatalf("expected kill on destroyed entity to be ignored")
	}
}

func TestDirectionFollowsYaw(t *testing.T) {
	guest := NewEntity("player_2", protocol.SlotGuest, Options{})
	dir := guest.Direction()
	if math.Abs(dir.X) > 1e-9 || math.Abs(dir.Z+1) > 1e-9 {
		t.Fatalf("expected guest to face -z, got %+v", dir)
	}
	host := NewEntity("player_1", protocol.SlotHost, Options{})
	if dir := host.Direction(); math.Abs(dir.Z-1) > 1e-9 {
		t.Fatalf("expected host to face +z, got %+v", dir)
	}
}

func TestSetHealthClamps(t *testing.T) {
	e := NewEntity("player_1", protocol.SlotHost, Options{MaxHealth: 5})
	e.SetHealth(-3)
	if e.Health() != 0 {
		t.Fatalf("expected 0, got %d", e.Health())
	}
	e.SetHealth(12)
	if e.Health() != 5 {
		t.Fatalf("expected 5, got %d", e.Health())
	}
}
