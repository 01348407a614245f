package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSchemaCoversPayloads(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "protocol.schema.json")
	if err := writeSchema(out, buildSchema()); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	text := string(data)
	for _, want := range []string{"City Bomber relay protocol", "Pose", "KilledData", "killerId", "playerNumber"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected schema to mention %q", want)
		}
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err=%v", err)
	}
}
