// Package config loads the mount's configuration: a TOML file overlaid with
// FFS_-prefixed environment variables, the Go port of main.rs's
// config::Config::builder() layering (file then env).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config mirrors the original's FfsConfig struct.
type Config struct {
	MagicFile    string   `toml:"magic_file"`
	DBURL        string   `toml:"db_url"`
	StoreDir     string   `toml:"store_dir"`
	DelegateDirs []string `toml:"delegate_dirs"`
}

const envPrefix = "FFS_"

// Load reads configFile (if it exists; a missing file is not an error, same
// as the original's config::File::with_name(...).required(false)), then
// applies FFS_-prefixed environment overrides on top.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if _, err := toml.DecodeFile(configFile, &cfg); err != nil {
				return nil, errors.Wrapf(err, "error parsing %s", configFile)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "error reading %s", configFile)
		}
	}

	applyEnv(&cfg)

	if cfg.DBURL == "" {
		return nil, errors.New("config: db_url is required (set it in the config file or FFS_DB_URL)")
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envPrefix + "MAGIC_FILE"); ok {
		cfg.MagicFile = v
	}
	if v, ok := os.LookupEnv(envPrefix + "DB_URL"); ok {
		cfg.DBURL = v
	}
	if v, ok := os.LookupEnv(envPrefix + "STORE_DIR"); ok {
		cfg.StoreDir = v
	}
	if v, ok := os.LookupEnv(envPrefix + "DELEGATE_DIRS"); ok {
		cfg.DelegateDirs = splitNonEmpty(v, ',')
	}
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
