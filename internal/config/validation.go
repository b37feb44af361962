package config

import (
	"errors"
	"fmt"

	"github.com/eigerco/levelbridge/pkg/log"
)

var ErrNoPath = errors.New("database path is required")

// Validate checks a loaded configuration. The path is checked separately by
// RequirePath since not every command opens a database.
func Validate(config *Config) error {
	switch config.Engine {
	case EngineGoLevelDB, EnginePebble, EngineLibLevelDB:
	default:
		return fmt.Errorf("unknown engine %q (supported: %s, %s, %s)",
			config.Engine, EngineGoLevelDB, EnginePebble, EngineLibLevelDB)
	}
	if config.Library != "" && config.Engine != EngineLibLevelDB {
		return fmt.Errorf("library is only used by the %s engine", EngineLibLevelDB)
	}

	if _, err := log.ParseLogLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := log.ParseLoggerType(config.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}

	return config.Options.Validate()
}

func (c *Config) RequirePath() error {
	if c.Path == "" {
		return ErrNoPath
	}
	return nil
}

func (o *OptionsConfig) Validate() error {
	switch o.Compression {
	case "none", "snappy":
	default:
		return fmt.Errorf("options.compression must be none or snappy, got %q", o.Compression)
	}

	sizes := []struct {
		key   string
		value int
	}{
		{"write_buffer_size", o.WriteBufferSize},
		{"max_open_files", o.MaxOpenFiles},
		{"block_size", o.BlockSize},
		{"block_restart_interval", o.BlockRestartInterval},
		{"max_file_size", o.MaxFileSize},
		{"cache_capacity", o.CacheCapacity},
		{"bloom_bits_per_key", o.BloomBitsPerKey},
	}
	for _, s := range sizes {
		if s.value < 0 {
			return fmt.Errorf("options.%s cannot be negative", s.key)
		}
	}
	return nil
}
