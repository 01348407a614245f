package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"city-bomber/internal/session"
)

// Relay configures the relay process.
type Relay struct {
	Host         string        `env:"RELAY_HOST"`
	Port         int           `env:"RELAY_PORT" envDefault:"9899"`
	SingleRoom   bool          `env:"RELAY_SINGLE_ROOM" envDefault:"false"`
	MaxHealth    int           `env:"RELAY_MAX_HEALTH" envDefault:"10"`
	HitDamage    int           `env:"RELAY_HIT_DAMAGE" envDefault:"1"`
	HitBonus     int           `env:"RELAY_HIT_BONUS" envDefault:"100"`
	KillBonus    int           `env:"RELAY_KILL_BONUS" envDefault:"1000"`
	RespawnDelay time.Duration `env:"RELAY_RESPAWN_DELAY" envDefault:"2s"`
	LogJSONPath  string        `env:"RELAY_LOG_JSON_PATH"`
	OTelEndpoint string        `env:"RELAY_OTEL_ENDPOINT"`
}

// Addr is the listen address.
func (r Relay) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Session maps the relay settings onto a registry configuration.
func (r Relay) Session() session.Config {
	cfg := session.DefaultConfig()
	cfg.SingleRoom = r.SingleRoom
	cfg.MaxHealth = r.MaxHealth
	cfg.HitDamage = r.HitDamage
	cfg.HitBonus = r.HitBonus
	cfg.KillBonus = r.KillBonus
	cfg.RespawnDelay = r.RespawnDelay
	return cfg
}

// Client configures the headless client.
type Client struct {
	ServerURL      string        `env:"BOMBER_SERVER_URL" envDefault:"ws://localhost:9899/ws"`
	Lang           string        `env:"BOMBER_LANG" envDefault:"en"`
	UpdateInterval time.Duration `env:"BOMBER_UPDATE_INTERVAL" envDefault:"50ms"`
}

// LoadDotEnv applies the given .env files, or ./.env when none are named.
// Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadRelay() (Relay, error) {
	var cfg Relay
	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("RELAY_PORT out of range: %d", cfg.Port)
	}
	return cfg, nil
}

func LoadClient() (Client, error) {
	var cfg Client
	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.UpdateInterval <= 0 {
		return cfg, fmt.Errorf("BOMBER_UPDATE_INTERVAL must be positive: %s", cfg.UpdateInterval)
	}
	return cfg, nil
}
