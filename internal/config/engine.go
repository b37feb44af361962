package config

import (
	"fmt"

	"github.com/eigerco/levelbridge/pkg/engine/goleveldb"
	"github.com/eigerco/levelbridge/pkg/engine/pebble"
	"github.com/eigerco/levelbridge/pkg/native"
	"github.com/eigerco/levelbridge/pkg/native/libleveldb"
)

// Lib resolves the configured engine.
func (c *Config) Lib() (*native.Lib, error) {
	switch c.Engine {
	case EngineGoLevelDB:
		return goleveldb.New().Lib(), nil
	case EnginePebble:
		return pebble.New().Lib(), nil
	case EngineLibLevelDB:
		if c.Library != "" {
			return libleveldb.Load(c.Library)
		}
		return libleveldb.Open()
	}
	return nil, fmt.Errorf("unknown engine %q", c.Engine)
}
