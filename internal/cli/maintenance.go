package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eigerco/levelbridge/pkg/leveldb"
	"github.com/eigerco/levelbridge/pkg/log"
)

// optionalKey decodes the flag when it was set and returns nil otherwise.
func (a *app) optionalKey(cmd *cobra.Command, name string) ([]byte, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	return a.decode(v)
}

func (a *app) compactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Compact a key range, or the whole database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			start, err := a.optionalKey(cmd, "from")
			if err != nil {
				return err
			}
			limit, err := a.optionalKey(cmd, "to")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			db := store.Database()
			if start == nil && limit == nil {
				return db.CompactAll()
			}
			return db.CompactRange(start, limit)
		},
	}
	cmd.Flags().String("from", "", "first key of the range")
	cmd.Flags().String("to", "", "last key of the range")
	return cmd
}

func (a *app) sizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Estimate the disk space used by [from, to)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			start, err := a.optionalKey(cmd, "from")
			if err != nil {
				return err
			}
			limit, err := a.optionalKey(cmd, "to")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			size, err := store.Database().ApproximateSize(start, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), size)
			return nil
		},
	}
	cmd.Flags().String("from", "", "first key of the range")
	cmd.Flags().String("to", "", "key after the range")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) propertyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "property <name>",
		Short: "Print an engine property such as leveldb.stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			value, ok, err := store.Database().Property(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unknown property %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func (a *app) repairCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Salvage a damaged database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequirePath(); err != nil {
				return err
			}
			if err := leveldb.Repair(a.cfg.Path, a.cfg.ClientOptions(a.lib)); err != nil {
				return err
			}
			log.CLI.Info().Str("path", a.cfg.Path).Msg("repaired")
			return nil
		},
	}
}

func (a *app) destroyCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the database files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequirePath(); err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("refusing to destroy %s without --force", a.cfg.Path)
			}
			if err := leveldb.Destroy(a.cfg.Path, a.cfg.ClientOptions(a.lib)); err != nil {
				return err
			}
			log.CLI.Info().Str("path", a.cfg.Path).Msg("destroyed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool and engine versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			major, minor := leveldb.Version(a.lib)
			fmt.Fprintf(cmd.OutOrStdout(), "levelbridge %s\nengine %s %d.%d\n", Version, a.lib.Name, major, minor)
			return nil
		},
	}
}
