package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "TYPESPRINT_"
	envConfigPath = "TYPESPRINT_SERVER_CONFIG"
)

// ServerConfig configures the scoring service.
type ServerConfig struct {
	// Addr is the HTTP listen address, e.g. ":8077".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file holding best scores.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ReadTimeoutMS and WriteTimeoutMS bound request handling.
	ReadTimeoutMS  int `koanf:"read_timeout_ms"`
	WriteTimeoutMS int `koanf:"write_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// NewServerConfig returns the defaults.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:              ":8077",
		DBPath:            DefaultDBPath(),
		LogLevel:          "info",
		ReadTimeoutMS:     5000,
		WriteTimeoutMS:    5000,
		ShutdownTimeoutMS: 5000,
	}
}

// LoadServer layers configuration, lowest precedence first:
//  1. defaults (NewServerConfig)
//  2. YAML file at path, or at $TYPESPRINT_SERVER_CONFIG when path is empty
//  3. env (prefix TYPESPRINT_)
func LoadServer(_ context.Context, path string) (*ServerConfig, error) {
	base := NewServerConfig()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// TYPESPRINT_DB_PATH -> db_path
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("addr must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, errors.New("db_path must not be empty")
	}
	return &cfg, nil
}
