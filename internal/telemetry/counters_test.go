package telemetry

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"
)

func TestCountersConcurrentAdd(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Add(EnvelopesReceived, 1)
			}
		}()
	}
	wg.Wait()
	if got := c.Load(EnvelopesReceived); got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
	snap := c.Snapshot()
	if snap[EnvelopesReceived] != 800 || len(snap) != 1 {
		t.Fatalf("unexpected snapshot: %v", snap)
	}
}

func TestNilCountersAreSafe(t *testing.T) {
	var c *Counters
	c.Add(Kills, 1)
	if c.Load(Kills) != 0 || len(c.Snapshot()) != 0 {
		t.Fatalf("expected nil counters to read as zero")
	}
}

func TestWrapLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WrapLogger(log.New(&buf, "", 0))
	logger.Printf("relay listening on %s", ":9899")
	if !strings.Contains(buf.String(), "relay listening on :9899") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	var fn LoggerFunc
	fn.Printf("nil funcs are ignored")
}
