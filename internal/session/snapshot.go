package session

import (
	"sort"

	"city-bomber/internal/protocol"
)

// ParticipantSnapshot is a read-only copy of a participant.
type ParticipantSnapshot struct {
	ID     string        `json:"id"`
	Slot   int           `json:"slot"`
	Health int           `json:"health"`
	Alive  bool          `json:"alive"`
	Score  int           `json:"score"`
	Pose   protocol.Pose `json:"pose"`
}

// RoomSnapshot is a read-only copy of a room, participants in join order.
type RoomSnapshot struct {
	ID           string                `json:"id"`
	Started      bool                  `json:"started"`
	Participants []ParticipantSnapshot `json:"participants"`
}

// Room returns a snapshot of roomID.
func (r *Registry) Room(roomID string) (RoomSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, false
	}
	return snapshotRoom(room), true
}

// Rooms returns every live room ordered by id.
func (r *Registry) Rooms() []RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomSnapshot, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, snapshotRoom(room))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Connections reports how many transports are registered.
func (r *Registry) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// PendingRespawns reports how many respawn tasks are still registered.
func (r *Registry) PendingRespawns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.respawns)
}

func snapshotRoom(room *Room) RoomSnapshot {
	snap := RoomSnapshot{
		ID:           room.ID,
		Started:      room.Started,
		Participants: make([]ParticipantSnapshot, 0, len(room.participants)),
	}
	for _, p := range room.participants {
		snap.Participants = append(snap.Participants, ParticipantSnapshot{
			ID:     p.ID,
			Slot:   p.Slot,
			Health: p.Health,
			Alive:  p.Alive,
			Score:  p.Score,
			Pose:   p.Pose,
		})
	}
	return snap
}
