// Package config loads the runtime configuration of the meetup command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/meetup-psi/meetup/internal/params"
)

var ErrInvalid = errors.New("config: invalid value")

// Gate circuit backends.
const (
	BackendTFHE  = "tfhe"
	BackendClear = "clear"
)

// Config is the configuration of the meetup command.
type Config struct {
	Paillier PaillierConfig `toml:"paillier"`
	Token    TokenConfig    `toml:"token"`
	Circuit  CircuitConfig  `toml:"circuit"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	// Workers is the size of the worker pool, 0 meaning one per CPU.
	Workers int `toml:"workers"`
}

// PaillierConfig holds the parameters of PaillierPSI.
type PaillierConfig struct {
	KeyBits int  `toml:"key_bits"`
	Mask    bool `toml:"mask"`
}

// CircuitConfig holds the parameters of GateCircuitPSI.
type CircuitConfig struct {
	// Backend is BackendTFHE or BackendClear, which does not encrypt.
	Backend string `toml:"backend"`
}

// TokenConfig holds the answer encoding.
type TokenConfig struct {
	Base uint64 `toml:"base"`
}

// StorageConfig holds storage paths.
type StorageConfig struct {
	StatePath string `toml:"state_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Paillier: PaillierConfig{
			KeyBits: params.BitsPaillier,
			Mask:    true,
		},
		Token: TokenConfig{
			Base: params.TokenBase,
		},
		Circuit: CircuitConfig{
			Backend: BackendTFHE,
		},
		Storage: StorageConfig{
			StatePath: "meetup.state",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err = toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if cfg.Storage.StatePath, err = ExpandPath(cfg.Storage.StatePath); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every value is usable.
func (c *Config) Validate() error {
	if c.Paillier.KeyBits < params.MinBitsPaillier || c.Paillier.KeyBits%2 != 0 {
		return fmt.Errorf("%w: paillier.key_bits must be even and at least %d, got %d", ErrInvalid, params.MinBitsPaillier, c.Paillier.KeyBits)
	}
	if c.Token.Base < 2 {
		return fmt.Errorf("%w: token.base must be at least 2, got %d", ErrInvalid, c.Token.Base)
	}
	if c.Circuit.Backend != BackendTFHE && c.Circuit.Backend != BackendClear {
		return fmt.Errorf("%w: circuit.backend must be %q or %q, got %q", ErrInvalid, BackendTFHE, BackendClear, c.Circuit.Backend)
	}
	if c.Storage.StatePath == "" {
		return fmt.Errorf("%w: storage.state_path is empty", ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return level, nil
}
