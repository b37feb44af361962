// Package config loads the command line configuration with viper.
package config

import (
	"github.com/rs/zerolog"

	"github.com/eigerco/levelbridge/pkg/leveldb"
	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Engine names accepted by the engine key.
const (
	EngineGoLevelDB  = "goleveldb"
	EnginePebble     = "pebble"
	EngineLibLevelDB = "libleveldb"
)

// Config is the complete configuration of a command invocation.
type Config struct {
	// Path of the database directory
	Path string `mapstructure:"path"`
	// Engine selects the storage engine
	Engine string `mapstructure:"engine"`
	// Library overrides the shared library path of the libleveldb engine
	Library string `mapstructure:"library"`
	// Sync makes every write durable before it returns
	Sync bool `mapstructure:"sync"`

	Log     LogConfig     `mapstructure:"log"`
	Options OptionsConfig `mapstructure:"options"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OptionsConfig mirrors leveldb.Options.
type OptionsConfig struct {
	CreateIfMissing      bool   `mapstructure:"create_if_missing"`
	ErrorIfExists        bool   `mapstructure:"error_if_exists"`
	ParanoidChecks       bool   `mapstructure:"paranoid_checks"`
	WriteBufferSize      int    `mapstructure:"write_buffer_size"`
	MaxOpenFiles         int    `mapstructure:"max_open_files"`
	BlockSize            int    `mapstructure:"block_size"`
	BlockRestartInterval int    `mapstructure:"block_restart_interval"`
	MaxFileSize          int    `mapstructure:"max_file_size"`
	Compression          string `mapstructure:"compression"`
	CacheCapacity        int    `mapstructure:"cache_capacity"`
	BloomBitsPerKey      int    `mapstructure:"bloom_bits_per_key"`
}

// ClientOptions converts the options section for lib.
func (c *Config) ClientOptions(lib *native.Lib) *leveldb.Options {
	o := c.Options
	compression := leveldb.NoCompression
	if o.Compression == "snappy" {
		compression = leveldb.SnappyCompression
	}
	return &leveldb.Options{
		CreateIfMissing:      o.CreateIfMissing,
		ErrorIfExists:        o.ErrorIfExists,
		ParanoidChecks:       o.ParanoidChecks,
		WriteBufferSize:      o.WriteBufferSize,
		MaxOpenFiles:         o.MaxOpenFiles,
		BlockSize:            o.BlockSize,
		BlockRestartInterval: o.BlockRestartInterval,
		MaxFileSize:          o.MaxFileSize,
		Compression:          compression,
		CacheCapacity:        o.CacheCapacity,
		BloomBitsPerKey:      o.BloomBitsPerKey,
		Lib:                  lib,
	}
}

// LogOptions converts the log section. Validate has already checked it.
func (c *Config) LogOptions() log.Options {
	level, err := log.ParseLogLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	format, err := log.ParseLoggerType(c.Log.Format)
	if err != nil {
		format = log.ConsoleLogger
	}
	return log.Options{LogLevel: level, Type: format}
}
