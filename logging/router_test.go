package logging_test

import (
	"context"
	"testing"
	"time"

	"city-bomber/logging"
	"city-bomber/logging/sinks"
)

func TestRouterDeliversEventsAboveMinimumSeverity(t *testing.T) {
	memory := sinks.NewMemorySink()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "relay"}
	router := logging.NewRouter(logging.ClockFunc(func() time.Time { return fixed }), cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})

	ctx := context.Background()
	router.Publish(ctx, logging.Event{Type: "test.debug", Severity: logging.SeverityDebug})
	router.Publish(ctx, logging.Event{Type: "test.info", Severity: logging.SeverityInfo, Actor: logging.Participant("player_1")})

	if err := router.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(events), events)
	}
	got := events[0]
	if got.Type != "test.info" {
		t.Fatalf("unexpected event type %q", got.Type)
	}
	if !got.Time.Equal(fixed) {
		t.Fatalf("expected clock time %v, got %v", fixed, got.Time)
	}
	if got.Extra["service"] != "relay" {
		t.Fatalf("expected router fields on event, got %+v", got.Extra)
	}
	if stats := router.Stats(); stats.EventsTotal != 1 {
		t.Fatalf("expected one forwarded event, got %+v", stats)
	}
}

func TestRouterIgnoresPublishAfterClose(t *testing.T) {
	memory := sinks.NewMemorySink()
	router := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{{Name: "memory", Sink: memory}})
	ctx := context.Background()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := router.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
	router.Publish(ctx, logging.Event{Type: "late", Severity: logging.SeverityError})
	if n := len(memory.Events()); n != 0 {
		t.Fatalf("expected no events after close, got %d", n)
	}
	if router.Sink("memory") != memory {
		t.Fatalf("expected Sink lookup to return the memory sink")
	}
}

func TestWithFieldsKeepsEventValues(t *testing.T) {
	var got logging.Event
	pub := logging.WithFields(logging.PublisherFunc(func(_ context.Context, e logging.Event) {
		got = e
	}), map[string]any{"room": "1111", "conn": "abc"})

	event := logging.Event{Type: "x"}.WithExtra("room", "2222")
	pub.Publish(context.Background(), event)

	if got.Extra["room"] != "2222" || got.Extra["conn"] != "abc" {
		t.Fatalf("unexpected extra fields: %+v", got.Extra)
	}
	if event.Extra["conn"] != nil {
		t.Fatalf("WithFields mutated the caller's event")
	}
}
