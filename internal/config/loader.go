package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LEVELBRIDGE_OPTIONS_BLOCK_SIZE.
const EnvPrefix = "LEVELBRIDGE"

// Load builds the configuration from, in increasing priority:
// 1. Default values
// 2. The configuration file, when file is not empty
// 3. Environment variables (LEVELBRIDGE_ prefix)
// 4. overrides, normally the flags set on the command line
func Load(file string, overrides map[string]any) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if file != "" {
		if err := loadFile(v, file); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func loadFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", path)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}
