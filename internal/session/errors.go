package session

import "errors"

var (
	// ErrRoomNotFound is returned when a join names a room that does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a join targets a room with two participants.
	ErrRoomFull = errors.New("room is full")
	// ErrRoomExists is returned in single-room mode while the fixed room is occupied.
	ErrRoomExists = errors.New("room already exists")
	// ErrAlreadyInRoom is returned when a connection that already holds a slot creates or joins again.
	ErrAlreadyInRoom = errors.New("already in a room")
	// ErrNotInRoom is returned for room-scoped operations from a participant without a room.
	ErrNotInRoom = errors.New("not in a room")
	// ErrUnknownParticipant is returned for operations naming an id the registry never assigned or already removed.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrNoRoomID is returned when no unused room id could be generated.
	ErrNoRoomID = errors.New("no free room id")
)
