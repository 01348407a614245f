package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadRelayDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadRelay()
	if err != nil {
		t.Fatalf("load relay: %v", err)
	}
	if cfg.Addr() != ":9899" {
		t.Fatalf("expected :9899, got %q", cfg.Addr())
	}
	if cfg.SingleRoom || cfg.MaxHealth != 10 || cfg.RespawnDelay != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	sess := cfg.Session()
	if sess.HitBonus != 100 || sess.KillBonus != 1000 || sess.HitDamage != 1 {
		t.Fatalf("unexpected session config: %+v", sess)
	}
}

func TestLoadRelayFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RELAY_PORT", "7000")
	t.Setenv("RELAY_SINGLE_ROOM", "true")
	t.Setenv("RELAY_RESPAWN_DELAY", "500ms")

	cfg, err := LoadRelay()
	if err != nil {
		t.Fatalf("load relay: %v", err)
	}
	if cfg.Port != 7000 || !cfg.SingleRoom || cfg.RespawnDelay != 500*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRelayRejectsBadPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RELAY_PORT", "not-a-port")

	_, err := LoadRelay()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}

	t.Setenv("RELAY_PORT", "70000")
	if _, err := LoadRelay(); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestLoadClientReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	contents := "BOMBER_SERVER_URL=ws://relay.test:9899/ws\nBOMBER_LANG=zh\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(contents), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv writes straight into the process environment.
	t.Setenv("BOMBER_SERVER_URL", "")
	os.Unsetenv("BOMBER_SERVER_URL")
	t.Setenv("BOMBER_LANG", "")
	os.Unsetenv("BOMBER_LANG")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.ServerURL != "ws://relay.test:9899/ws" || cfg.Lang != "zh" {
		t.Fatalf("unexpected client config: %+v", cfg)
	}
	if cfg.UpdateInterval != 50*time.Millisecond {
		t.Fatalf("expected 50ms update interval, got %s", cfg.UpdateInterval)
	}
}
