// Package config persists the assistant's settings as a small JSON document.
// The document is replaced wholesale on every save; there are no incremental
// updates. A missing or unreadable file is treated as absent: a default
// document is written and returned.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	log "log/slog"
)

// Config is the persisted assistant configuration. The value is loaded once
// at startup and threaded explicitly to the workflows that need it; the
// configure workflow rewrites the file and the in-memory copy together.
type Config struct {
	// WorkingDirectory is where generated files (example code, notes) land.
	WorkingDirectory string `json:"working_directory"`

	// AssistantName is the persona name used in prompts and the activation
	// phrase default.
	AssistantName string `json:"assistant_name,omitempty"`

	// CompanionName is how the assistant addresses its human in prompts.
	CompanionName string `json:"companion_name,omitempty"`
}

// Default returns the configuration written when no file exists yet.
func Default() Config {
	return Config{
		WorkingDirectory: ".",
		AssistantName:    "Ada",
		CompanionName:    "friend",
	}
}

// Load reads the configuration at path. When the file is missing or does not
// parse, the default document is persisted at path and returned; startup
// never fails on configuration.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		log.Info("no configuration found, writing default", "path", path)
		cfg := Default()
		return cfg, Save(path, cfg)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn("malformed configuration, resetting to default", "path", path, "err", err)
		cfg = Default()
		return cfg, Save(path, cfg)
	}
	if cfg.WorkingDirectory == "" {
		cfg.WorkingDirectory = Default().WorkingDirectory
	}
	return cfg, nil
}

// Save replaces the document at path with cfg.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
