package protocol

import "math"

const (
	// SlotHost is the participant that created the room.
	SlotHost = 1
	// SlotGuest is the participant that joined it.
	SlotGuest = 2
	// MaxParticipants is the capacity of every room.
	MaxParticipants = 2

	spawnAltitude = 40
	spawnOffset   = 50
	spawnSpeed    = 30
)

// SpawnPose returns the starting pose for a slot. The two slots face each
// other across the origin.
func SpawnPose(slot int) Pose {
	if slot == SlotGuest {
		return Pose{
			Position: Vec3{X: spawnOffset, Y: spawnAltitude},
			Rotation: math.Pi,
			Speed:    spawnSpeed,
		}
	}
	return Pose{
		Position: Vec3{X: -spawnOffset, Y: spawnAltitude},
		Speed:    spawnSpeed,
	}
}

// OpponentSlot returns the other slot of a two-participant room.
func OpponentSlot(slot int) int {
	if slot == SlotGuest {
		return SlotHost
	}
	return SlotGuest
}
