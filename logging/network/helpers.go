package network

import (
	"context"

	"city-bomber/logging"
)

const (
	// EventMalformedEnvelope is emitted when an inbound message cannot be parsed and is dropped.
	EventMalformedEnvelope logging.EventType = "network.malformed_envelope"
	// EventSendFailed is emitted when an outbound envelope could not be queued on a connection.
	EventSendFailed logging.EventType = "network.send_failed"
	// EventDroppedOutsideRoom is emitted when a room-scoped envelope arrives from a participant without a room.
	EventDroppedOutsideRoom logging.EventType = "network.dropped_outside_room"
)

// MalformedPayload describes a dropped inbound message.
type MalformedPayload struct {
	Type  string `json:"type,omitempty"`
	Error string `json:"error"`
	Size  int    `json:"size"`
}

// SendFailedPayload describes a failed outbound delivery.
type SendFailedPayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// DroppedPayload names the envelope type that was dropped.
type DroppedPayload struct {
	Type string `json:"type"`
}

// MalformedEnvelope publishes a warning for a dropped inbound message.
func MalformedEnvelope(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload MalformedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMalformedEnvelope,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// SendFailed publishes a warning when an envelope could not be delivered.
func SendFailed(ctx context.Context, pub logging.Publisher, seq uint64, roomID string, target logging.EntityRef, payload SendFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSendFailed,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindRelay},
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		RoomID:   roomID,
		Payload:  payload,
	})
}

// DroppedOutsideRoom publishes a debug event for a silently dropped envelope.
func DroppedOutsideRoom(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload DroppedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDroppedOutsideRoom,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
