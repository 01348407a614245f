package combat

import (
	"context"

	"city-bomber/logging"
)

const (
	// EventDamage is emitted when a hit claim is accepted.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when a participant's health reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
	// EventRespawn is emitted when a defeated participant is restored.
	EventRespawn logging.EventType = "combat.respawn"
	// EventRespawnSkipped is emitted when a scheduled respawn finds its participant gone or already alive.
	EventRespawnSkipped logging.EventType = "combat.respawn_skipped"
	// EventHitIgnored is emitted when a hit claim targets nobody or a defeated participant.
	EventHitIgnored logging.EventType = "combat.hit_ignored"
)

// DamagePayload captures the result of one accepted hit.
type DamagePayload struct {
	Amount        int `json:"amount"`
	TargetHealth  int `json:"targetHealth"`
	AttackerScore int `json:"attackerScore"`
}

// DefeatPayload captures the killer's score after the kill bonus.
type DefeatPayload struct {
	KillerScore int `json:"killerScore"`
}

// RespawnPayload captures the restored health.
type RespawnPayload struct {
	Health int `json:"health"`
}

// SkippedPayload explains why a hit or respawn had no effect.
type SkippedPayload struct {
	Reason string `json:"reason"`
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor, target logging.EntityRef, payload DamagePayload) {
	publish(ctx, pub, logging.Event{Type: EventDamage, Seq: seq, RoomID: roomID, Actor: actor, Targets: []logging.EntityRef{target}, Severity: logging.SeverityInfo, Payload: payload})
}

// Defeat publishes a combat defeat event for the eliminated participant.
func Defeat(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor, target logging.EntityRef, payload DefeatPayload) {
	publish(ctx, pub, logging.Event{Type: EventDefeat, Seq: seq, RoomID: roomID, Actor: actor, Targets: []logging.EntityRef{target}, Severity: logging.SeverityInfo, Payload: payload})
}

// Respawn publishes a respawn event.
func Respawn(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, target logging.EntityRef, payload RespawnPayload) {
	publish(ctx, pub, logging.Event{Type: EventRespawn, Seq: seq, RoomID: roomID, Actor: target, Severity: logging.SeverityInfo, Payload: payload})
}

// RespawnSkipped publishes a debug event for a stale respawn.
func RespawnSkipped(ctx context.Context, pub logging.Publisher, seq uint64, target logging.EntityRef, payload SkippedPayload) {
	publish(ctx, pub, logging.Event{Type: EventRespawnSkipped, Seq: seq, Actor: target, Severity: logging.SeverityDebug, Payload: payload})
}

// HitIgnored publishes a debug event for a hit claim with no effect.
func HitIgnored(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor logging.EntityRef, payload SkippedPayload) {
	publish(ctx, pub, logging.Event{Type: EventHitIgnored, Seq: seq, RoomID: roomID, Actor: actor, Severity: logging.SeverityDebug, Payload: payload})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryCombat
	pub.Publish(ctx, event)
}
