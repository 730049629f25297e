package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"hark/internal/config"
)

func TestLoad_MissingFileWritesDefault(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("cfg = %+v, want default", cfg)
	}
	// The default must have been persisted.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}

	again, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load (second): %v", err)
	}
	if again != cfg {
		t.Errorf("reloaded cfg = %+v, want %+v", again, cfg)
	}
}

func TestLoad_MalformedFileResetsToDefault(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("cfg = %+v, want default", cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) == "{not json" {
		t.Error("malformed file was not replaced with a fresh default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")

	want := config.Config{
		WorkingDirectory: "/tmp/scratch",
		AssistantName:    "Hark",
		CompanionName:    "Sam",
	}
	if err := config.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoad_EmptyWorkingDirectoryDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"assistant_name":"Hark"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkingDirectory != config.Default().WorkingDirectory {
		t.Errorf("WorkingDirectory = %q, want default", cfg.WorkingDirectory)
	}
	if cfg.AssistantName != "Hark" {
		t.Errorf("AssistantName = %q, want Hark", cfg.AssistantName)
	}
}
