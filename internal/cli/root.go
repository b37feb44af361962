// Package cli implements the levelbridge command line.
package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eigerco/levelbridge/internal/config"
	kvstore "github.com/eigerco/levelbridge/pkg/db/leveldb"
	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Version of the command line tool.
const Version = "0.1.0-dev"

// flagKeys maps persistent flags to configuration keys. Only flags set on
// the command line override the configuration.
var flagKeys = map[string]string{
	"path":       "path",
	"engine":     "engine",
	"library":    "library",
	"sync":       "sync",
	"log-level":  "log.level",
	"log-format": "log.format",
	"create":     "options.create_if_missing",
	"paranoid":   "options.paranoid_checks",
}

type app struct {
	configFile string
	hex        bool

	cfg *config.Config
	lib *native.Lib
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "levelbridge",
		Short: "Inspect and edit LevelDB databases",
		Long: `levelbridge reads and writes LevelDB databases through the same client
library applications use. The engine is selectable: goleveldb and pebble run
in process, libleveldb loads the shared C library.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (toml, yaml or json)")
	flags.StringP("path", "p", "", "database directory")
	flags.String("engine", config.EngineGoLevelDB, "storage engine: goleveldb, pebble or libleveldb")
	flags.String("library", "", "path of the libleveldb shared library")
	flags.Bool("sync", false, "sync every write to disk")
	flags.String("log-level", "warn", "log level")
	flags.String("log-format", "console", "log format: console or json")
	flags.Bool("create", true, "create the database if it is missing")
	flags.Bool("paranoid", false, "enable paranoid checks")
	flags.BoolVar(&a.hex, "hex", false, "keys and values are hex encoded")

	root.AddCommand(
		a.getCommand(),
		a.putCommand(),
		a.deleteCommand(),
		a.batchCommand(),
		a.scanCommand(),
		a.loadCommand(),
		a.compactCommand(),
		a.sizeCommand(),
		a.propertyCommand(),
		a.repairCommand(),
		a.destroyCommand(),
		a.diffCommand(),
		a.versionCommand(),
	)
	return root
}

// Execute runs the command line and exits on failure.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]any)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	cfg, err := config.Load(a.configFile, overrides)
	if err != nil {
		return err
	}
	logOpts := cfg.LogOptions()
	logOpts.Output = cmd.ErrOrStderr()
	log.Init(logOpts)

	lib, err := cfg.Lib()
	if err != nil {
		return fmt.Errorf("engine %s: %w", cfg.Engine, err)
	}
	log.CLI.Debug().Str("engine", lib.Name).Str("path", cfg.Path).Msg("configured")

	a.cfg = cfg
	a.lib = lib
	return nil
}

func (a *app) openStore() (*kvstore.KVStore, error) {
	if err := a.cfg.RequirePath(); err != nil {
		return nil, err
	}
	return kvstore.NewKVStore(a.cfg.Path, a.cfg.ClientOptions(a.lib), a.cfg.Sync)
}

func (a *app) decode(arg string) ([]byte, error) {
	if !a.hex {
		return []byte(arg), nil
	}
	b, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", arg, err)
	}
	return b, nil
}

func (a *app) format(b []byte) string {
	if a.hex {
		return hex.EncodeToString(b)
	}
	return string(b)
}

// closeStore folds the close error into err.
func closeStore(store interface{ Close() error }, err *error) {
	if cerr := store.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
