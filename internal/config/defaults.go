package config

import "github.com/spf13/viper"

// setDefaults registers every key, which also lets AutomaticEnv see them
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "")
	v.SetDefault("engine", EngineGoLevelDB)
	v.SetDefault("library", "")
	v.SetDefault("sync", false)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	// Zero sizes keep the engine defaults
	v.SetDefault("options.create_if_missing", true)
	v.SetDefault("options.error_if_exists", false)
	v.SetDefault("options.paranoid_checks", false)
	v.SetDefault("options.write_buffer_size", 0)
	v.SetDefault("options.max_open_files", 0)
	v.SetDefault("options.block_size", 0)
	v.SetDefault("options.block_restart_interval", 0)
	v.SetDefault("options.max_file_size", 0)
	v.SetDefault("options.compression", "snappy")
	v.SetDefault("options.cache_capacity", 8<<20)
	v.SetDefault("options.bloom_bits_per_key", 10)
}
