package lifecycle

import (
	"context"

	"city-bomber/logging"
)

const (
	// EventParticipantConnected is emitted when a transport connection is assigned a participant id.
	EventParticipantConnected logging.EventType = "lifecycle.participant_connected"
	// EventParticipantDisconnected is emitted when a participant's transport closes.
	EventParticipantDisconnected logging.EventType = "lifecycle.participant_disconnected"
)

// ConnectedPayload captures transport metadata for a new connection.
type ConnectedPayload struct {
	RemoteAddr string `json:"remoteAddr,omitempty"`
}

// DisconnectedPayload captures the reason a participant left.
type DisconnectedPayload struct {
	Reason string `json:"reason"`
}

// ParticipantConnected publishes a connection event. traceID correlates the
// event with the transport session.
func ParticipantConnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, traceID string, payload ConnectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventParticipantConnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		TraceID:  traceID,
	})
}

// ParticipantDisconnected publishes a disconnect event.
func ParticipantDisconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, traceID string, payload DisconnectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventParticipantDisconnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		TraceID:  traceID,
	})
}
