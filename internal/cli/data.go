package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	kvstore "github.com/eigerco/levelbridge/pkg/db/leveldb"
	"github.com/eigerco/levelbridge/pkg/log"
)

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			key, err := a.decode(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			value, err := store.Get(key)
			if errors.Is(err, kvstore.ErrNotFound) {
				return fmt.Errorf("key %q not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.format(value))
			return nil
		},
	}
}

func (a *app) putCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			key, err := a.decode(args[0])
			if err != nil {
				return err
			}
			value, err := a.decode(args[1])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			return store.Put(key, value)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			key, err := a.decode(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			return store.Delete(key)
		},
	}
}

func (a *app) batchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [file]",
		Short: "Apply put and delete lines atomically",
		Long: `batch reads one operation per line from file, or from standard input when
file is missing or "-":

  put <key> <value>
  delete <key>

Empty lines and lines starting with # are skipped. Either every operation is
committed or none is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close() //nolint:errcheck
				in = f
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			batch := store.NewBatch()
			defer batch.Close() //nolint:errcheck

			n, err := a.readBatch(in, batch)
			if err != nil {
				return err
			}
			if err := batch.Commit(); err != nil {
				return err
			}
			log.CLI.Info().Int("operations", n).Msg("batch committed")
			fmt.Fprintf(cmd.OutOrStdout(), "%d operations committed\n", n)
			return nil
		},
	}
}

type batchWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

func (a *app) readBatch(in io.Reader, batch batchWriter) (int, error) {
	scanner := bufio.NewScanner(in)
	n, line := 0, 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := a.applyLine(batch, strings.Fields(text)); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, scanner.Err()
}

func (a *app) applyLine(batch batchWriter, fields []string) error {
	switch {
	case fields[0] == "put" && len(fields) == 3:
		key, err := a.decode(fields[1])
		if err != nil {
			return err
		}
		value, err := a.decode(fields[2])
		if err != nil {
			return err
		}
		return batch.Put(key, value)
	case fields[0] == "delete" && len(fields) == 2:
		key, err := a.decode(fields[1])
		if err != nil {
			return err
		}
		return batch.Delete(key)
	}
	return fmt.Errorf("expected \"put <key> <value>\" or \"delete <key>\", got %q", strings.Join(fields, " "))
}
