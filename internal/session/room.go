package session

import "city-bomber/internal/protocol"

// Participant is one occupied slot of a room. Only the Registry mutates it.
type Participant struct {
	ID     string
	Slot   int
	Pose   protocol.Pose
	Health int
	Alive  bool
	Score  int

	// deaths distinguishes successive defeats so a respawn task can tell
	// whether it still applies.
	deaths uint64
}

func newParticipant(id string, slot, health int) *Participant {
	return &Participant{
		ID:     id,
		Slot:   slot,
		Pose:   protocol.SpawnPose(slot),
		Health: health,
		Alive:  true,
	}
}

// Room holds at most protocol.MaxParticipants participants in join order.
type Room struct {
	ID           string
	Started      bool
	participants []*Participant
}

func (r *Room) participant(id string) *Participant {
	for _, p := range r.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// opponent returns the other participant, or nil while the room has one.
func (r *Room) opponent(id string) *Participant {
	for _, p := range r.participants {
		if p.ID != id {
			return p
		}
	}
	return nil
}

func (r *Room) full() bool {
	return len(r.participants) >= protocol.MaxParticipants
}

// freeSlot returns the lowest unoccupied slot number.
func (r *Room) freeSlot() int {
	for slot := protocol.SlotHost; slot <= protocol.MaxParticipants; slot++ {
		taken := false
		for _, p := range r.participants {
			if p.Slot == slot {
				taken = true
				break
			}
		}
		if !taken {
			return slot
		}
	}
	return 0
}

func (r *Room) remove(id string) *Participant {
	for i, p := range r.participants {
		if p.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return p
		}
	}
	return nil
}
