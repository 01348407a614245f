package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"city-bomber/internal/protocol"
)

// wirePayloads names every data shape carried in an envelope, keyed by the
// inbound type that introduces it.
type wirePayloads struct {
	Envelope          protocol.Envelope     `json:"envelope"`
	PlayerUpdate      protocol.Pose         `json:"player_update"`
	FireBullet        protocol.BulletData   `json:"fire_bullet"`
	DropBomb          protocol.BombData     `json:"drop_bomb"`
	PlayerHit         protocol.HitData      `json:"player_hit"`
	PlayerDamaged     protocol.DamagedData  `json:"player_damaged"`
	PlayerKilled      protocol.KilledData   `json:"player_killed"`
	PlayerRespawn     protocol.RespawnData  `json:"player_respawn"`
	BuildingDestroyed protocol.BuildingData `json:"building_destroyed"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(wirePayloads))
	schema.Title = "City Bomber relay protocol"
	schema.Description = "Envelope and payload shapes exchanged between clients and the relay"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
