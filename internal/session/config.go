package session

import (
	"time"

	"city-bomber/internal/telemetry"
	"city-bomber/logging"
)

// DefaultFixedRoomID is the id every room receives in single-room mode.
const DefaultFixedRoomID = "1111"

// Scheduler runs f once after d without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(d time.Duration, f func())

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) {
	fn(d, f)
}

// TimerScheduler schedules with time.AfterFunc.
func TimerScheduler() Scheduler {
	return SchedulerFunc(func(d time.Duration, f func()) {
		time.AfterFunc(d, f)
	})
}

// Config tunes a Registry. Zero values fall back to DefaultConfig.
type Config struct {
	// SingleRoom reproduces the deployed behaviour where every created room
	// is assigned FixedRoomID.
	SingleRoom   bool
	FixedRoomID  string
	MaxHealth    int
	HitDamage    int
	HitBonus     int
	KillBonus    int
	RespawnDelay time.Duration

	Scheduler Scheduler
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	// RoomIDs overrides room id generation outside single-room mode.
	RoomIDs func() string
}

func DefaultConfig() Config {
	return Config{
		FixedRoomID:  DefaultFixedRoomID,
		MaxHealth:    10,
		HitDamage:    1,
		HitBonus:     100,
		KillBonus:    1000,
		RespawnDelay: 2 * time.Second,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.FixedRoomID == "" {
		c.FixedRoomID = def.FixedRoomID
	}
	if c.MaxHealth <= 0 {
		c.MaxHealth = def.MaxHealth
	}
	if c.HitDamage <= 0 {
		c.HitDamage = def.HitDamage
	}
	if c.HitBonus < 0 {
		c.HitBonus = 0
	}
	if c.KillBonus < 0 {
		c.KillBonus = 0
	}
	if c.RespawnDelay <= 0 {
		c.RespawnDelay = def.RespawnDelay
	}
	if c.Scheduler == nil {
		c.Scheduler = TimerScheduler()
	}
	if c.Publisher == nil {
		c.Publisher = logging.NopPublisher()
	}
	if c.Metrics == nil {
		c.Metrics = telemetry.NopMetrics()
	}
	return c
}
