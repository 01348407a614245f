package session

import (
	"context"

	"city-bomber/internal/protocol"
)

func (r *Registry) handleCreateRoom(ctx context.Context, m *member, _ protocol.Route, env protocol.Envelope) {
	if _, err := r.createRoomLocked(ctx, m); err != nil {
		r.rejectLocked(ctx, m, env.Type, "", err)
	}
}

func (r *Registry) handleJoinRoom(ctx context.Context, m *member, _ protocol.Route, env protocol.Envelope) {
	if _, err := r.joinRoomLocked(ctx, m, env.RoomID); err != nil {
		r.rejectLocked(ctx, m, env.Type, env.RoomID, err)
	}
}

// handlePlayerUpdate records the sender's pose and streams it to the
// opponent as player_state.
func (r *Registry) handlePlayerUpdate(ctx context.Context, m *member, route protocol.Route, env protocol.Envelope) {
	pose, err := protocol.DecodeData[protocol.Pose](env)
	if err != nil {
		r.malformedLocked(ctx, m, env.Type, len(env.Data), err)
		return
	}
	room := r.rooms[m.roomID]
	if p := room.participant(m.id); p != nil {
		p.Pose = pose
	}
	_ = r.relayLocked(ctx, room, protocol.Forward(route.Outbound, m.id, env.Data), m.id)
}

// forwardAs relays a validated payload of type T to the opponent unchanged.
func forwardAs[T any](r *Registry) handlerFunc {
	return func(ctx context.Context, m *member, route protocol.Route, env protocol.Envelope) {
		if _, err := protocol.DecodeData[T](env); err != nil {
			r.malformedLocked(ctx, m, env.Type, len(env.Data), err)
			return
		}
		_ = r.relayLocked(ctx, r.rooms[m.roomID], protocol.Forward(route.Outbound, m.id, env.Data), m.id)
	}
}

func (r *Registry) handlePlayerHit(ctx context.Context, m *member, _ protocol.Route, _ protocol.Envelope) {
	_ = r.hitLocked(ctx, m)
}

// handleBuildingDestroyed credits the reported score to the sender and
// relays the event. Negative scores are not credited.
func (r *Registry) handleBuildingDestroyed(ctx context.Context, m *member, route protocol.Route, env protocol.Envelope) {
	data, err := protocol.DecodeData[protocol.BuildingData](env)
	if err != nil {
		r.malformedLocked(ctx, m, env.Type, len(env.Data), err)
		return
	}
	room := r.rooms[m.roomID]
	if p := room.participant(m.id); p != nil && data.Score > 0 {
		p.Score += data.Score
	}
	_ = r.relayLocked(ctx, room, protocol.Forward(route.Outbound, m.id, env.Data), m.id)
}
