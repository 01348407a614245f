package session

import (
	"context"

	"city-bomber/internal/protocol"
	"city-bomber/internal/telemetry"
	"city-bomber/logging"
	combatlog "city-bomber/logging/combat"
)

// Hit applies a hit claim from attackerID against its room's opponent. The
// claim is trusted; claims are resolved in arrival order.
func (r *Registry) Hit(ctx context.Context, attackerID string) error {
	r.mu.Lock()
	defer r.unlock(ctx)
	m, ok := r.members[attackerID]
	if !ok {
		return ErrUnknownParticipant
	}
	return r.hitLocked(ctx, m)
}

func (r *Registry) hitLocked(ctx context.Context, m *member) error {
	room, ok := r.rooms[m.roomID]
	if !ok {
		return ErrNotInRoom
	}
	attacker := room.participant(m.id)
	target := room.opponent(m.id)
	if attacker == nil {
		return ErrNotInRoom
	}
	actor := logging.Participant(attacker.ID)
	if target == nil {
		combatlog.HitIgnored(ctx, r.cfg.Publisher, r.seq, room.ID, actor, combatlog.SkippedPayload{Reason: "no opponent"})
		return nil
	}
	if !target.Alive {
		// Health is already zero and the defeat was handled.
		combatlog.HitIgnored(ctx, r.cfg.Publisher, r.seq, room.ID, actor, combatlog.SkippedPayload{Reason: "target defeated"})
		return nil
	}

	target.Health = max(0, target.Health-r.cfg.HitDamage)
	attacker.Score += r.cfg.HitBonus
	r.cfg.Metrics.Add(telemetry.HitsAccepted, 1)

	_ = r.relayLocked(ctx, room, protocol.PlayerDamaged(target.ID, target.Health, attacker.ID), "")
	combatlog.Damage(ctx, r.cfg.Publisher, r.seq, room.ID, actor, logging.Participant(target.ID), combatlog.DamagePayload{
		Amount:        r.cfg.HitDamage,
		TargetHealth:  target.Health,
		AttackerScore: attacker.Score,
	})

	if target.Health > 0 {
		return nil
	}

	target.Alive = false
	target.deaths++
	attacker.Score += r.cfg.KillBonus
	r.cfg.Metrics.Add(telemetry.Kills, 1)

	_ = r.relayLocked(ctx, room, protocol.PlayerKilled(target.ID, attacker.ID, attacker.Score), "")
	combatlog.Defeat(ctx, r.cfg.Publisher, r.seq, room.ID, actor, logging.Participant(target.ID), combatlog.DefeatPayload{
		KillerScore: attacker.Score,
	})
	r.scheduleRespawnLocked(room.ID, target)
	return nil
}
