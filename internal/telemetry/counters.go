package telemetry

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counter keys recorded by the relay.
const (
	EnvelopesReceived = "envelopes_received"
	EnvelopesSent     = "envelopes_sent"
	BytesSent         = "bytes_sent"
	MalformedDropped  = "malformed_dropped"
	SendFailures      = "send_failures"
	HitsAccepted      = "hits_accepted"
	Kills             = "kills"
)

// Counters is a concurrency-safe set of named monotonic counters.
type Counters struct {
	mu     sync.RWMutex
	values map[string]*atomic.Uint64
}

func NewCounters() *Counters {
	return &Counters{values: make(map[string]*atomic.Uint64)}
}

func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	c.counter(key).Add(delta)
}

func (c *Counters) Load(key string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if !ok {
		return 0
	}
	return v.Load()
}

func (c *Counters) counter(key string) *atomic.Uint64 {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok = c.values[key]; !ok {
		v = new(atomic.Uint64)
		c.values[key] = v
	}
	return v
}

// Snapshot returns the current values keyed by counter name.
func (c *Counters) Snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	if c == nil {
		return out
	}
	c.mu.RLock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = c.Load(k)
	}
	return out
}
