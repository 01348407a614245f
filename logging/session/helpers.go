package session

import (
	"context"

	"city-bomber/logging"
)

const (
	EventRoomCreated   logging.EventType = "session.room_created"
	EventRoomJoined    logging.EventType = "session.room_joined"
	EventRoomStarted   logging.EventType = "session.room_started"
	EventRoomLeft      logging.EventType = "session.room_left"
	EventRoomDestroyed logging.EventType = "session.room_destroyed"
	EventJoinRejected  logging.EventType = "session.join_rejected"
)

// SlotPayload records the slot a participant occupies.
type SlotPayload struct {
	Slot int `json:"slot"`
}

// RejectedPayload records why a create or join request failed.
type RejectedPayload struct {
	Request string `json:"request"`
	Reason  string `json:"reason"`
}

func RoomCreated(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor logging.EntityRef, payload SlotPayload) {
	publish(ctx, pub, logging.Event{Type: EventRoomCreated, Seq: seq, RoomID: roomID, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

func RoomJoined(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor logging.EntityRef, payload SlotPayload) {
	publish(ctx, pub, logging.Event{Type: EventRoomJoined, Seq: seq, RoomID: roomID, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

// RoomStarted is published once per started transition, naming both participants.
func RoomStarted(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, participants []logging.EntityRef) {
	publish(ctx, pub, logging.Event{Type: EventRoomStarted, Seq: seq, RoomID: roomID, Actor: logging.Room(roomID), Targets: participants, Severity: logging.SeverityInfo})
}

func RoomLeft(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor logging.EntityRef, payload SlotPayload) {
	publish(ctx, pub, logging.Event{Type: EventRoomLeft, Seq: seq, RoomID: roomID, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

func RoomDestroyed(ctx context.Context, pub logging.Publisher, seq uint64, roomID string) {
	publish(ctx, pub, logging.Event{Type: EventRoomDestroyed, Seq: seq, RoomID: roomID, Actor: logging.Room(roomID), Severity: logging.SeverityInfo})
}

// JoinRejected is a warning: the requester received an error envelope.
func JoinRejected(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, actor logging.EntityRef, payload RejectedPayload) {
	publish(ctx, pub, logging.Event{Type: EventJoinRejected, Seq: seq, RoomID: roomID, Actor: actor, Severity: logging.SeverityWarn, Payload: payload})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategorySession
	pub.Publish(ctx, event)
}
