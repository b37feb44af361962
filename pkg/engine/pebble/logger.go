package pebble

import (
	"fmt"

	"github.com/eigerco/levelbridge/pkg/log"
)

// logger routes pebble's event log to the engine logger.
type logger struct{}

func (logger) Infof(format string, args ...interface{}) {
	log.Engine.Debug().Str("engine", Name).Msg(fmt.Sprintf(format, args...))
}

func (logger) Errorf(format string, args ...interface{}) {
	log.Engine.Error().Str("engine", Name).Msg(fmt.Sprintf(format, args...))
}

func (logger) Fatalf(format string, args ...interface{}) {
	log.Engine.Fatal().Str("engine", Name).Msg(fmt.Sprintf(format, args...))
}
