package session

import (
	"context"

	"city-bomber/internal/protocol"
	"city-bomber/logging"
	combatlog "city-bomber/logging/combat"
)

// scheduleRespawnLocked keys a respawn task by participant id. The task only
// applies if the same ticket is still registered when it fires.
func (r *Registry) scheduleRespawnLocked(roomID string, target *Participant) {
	ticket := respawnTicket{roomID: roomID, deaths: target.deaths}
	r.respawns[target.ID] = ticket
	id := target.ID
	r.cfg.Scheduler.AfterFunc(r.cfg.RespawnDelay, func() {
		r.respawn(context.Background(), id, ticket)
	})
}

// respawn restores a defeated participant. It is a no-op when the
// participant left, its room is gone, or the ticket was superseded.
func (r *Registry) respawn(ctx context.Context, participantID string, ticket respawnTicket) {
	r.mu.Lock()
	defer r.unlock(ctx)

	ref := logging.Participant(participantID)
	current, ok := r.respawns[participantID]
	if !ok || current != ticket {
		combatlog.RespawnSkipped(ctx, r.cfg.Publisher, r.seq, ref, combatlog.SkippedPayload{Reason: "stale"})
		return
	}
	delete(r.respawns, participantID)

	room, ok := r.rooms[ticket.roomID]
	if !ok {
		combatlog.RespawnSkipped(ctx, r.cfg.Publisher, r.seq, ref, combatlog.SkippedPayload{Reason: "room gone"})
		return
	}
	p := room.participant(participantID)
	if p == nil {
		combatlog.RespawnSkipped(ctx, r.cfg.Publisher, r.seq, ref, combatlog.SkippedPayload{Reason: "participant left"})
		return
	}
	if p.Alive {
		combatlog.RespawnSkipped(ctx, r.cfg.Publisher, r.seq, ref, combatlog.SkippedPayload{Reason: "already alive"})
		return
	}

	p.Health = r.cfg.MaxHealth
	p.Alive = true
	p.Pose = protocol.SpawnPose(p.Slot)
	_ = r.relayLocked(ctx, room, protocol.PlayerRespawn(p.ID, p.Health), "")
	combatlog.Respawn(ctx, r.cfg.Publisher, r.seq, room.ID, ref, combatlog.RespawnPayload{Health: p.Health})
}
