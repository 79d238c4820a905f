package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config carries the service settings. Secrets (Groq and GitHub tokens) are
// never read from the file; they come from the environment or, in Lambda
// mode, from SSM.
type Config struct {
	Port         int      `toml:"port"`
	MaxFileSize  int64    `toml:"max_file_size"`
	CloneBaseDir string   `toml:"clone_base_dir"`
	GroqModel    string   `toml:"groq_model"`
	TrustCache   string   `toml:"trust_cache"`
	ExcludeGlobs []string `toml:"exclude_globs"`
}

func DefaultConfig() Config {
	return Config{
		Port:         8000,
		MaxFileSize:  1 * 1024 * 1024, // 1 MB limit
		CloneBaseDir: "/tmp/gitsec-scanner",
		GroqModel:    "llama-3.3-70b-versatile",
		TrustCache:   "trust_cache.db",
	}
}

// LoadConfig overlays the toml file at path onto the defaults. A missing file
// is not an error; the defaults stand.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return cfg, nil
}
