package cli

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/eigerco/levelbridge/pkg/db"
	kvstore "github.com/eigerco/levelbridge/pkg/db/leveldb"
)

func (a *app) diffCommand() *cobra.Command {
	var context int
	cmd := &cobra.Command{
		Use:   "diff <other-path>",
		Short: "Print a unified diff of two databases",
		Long: `diff compares the database at --path with the one at other-path, which
must exist and is opened with the same engine and options. Each entry is one
"key<TAB>value" line. Nothing is printed when both hold the same entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			opts := a.cfg.ClientOptions(a.lib)
			opts.CreateIfMissing = false
			other, err := kvstore.NewKVStore(args[0], opts, false)
			if err != nil {
				return err
			}
			defer closeStore(other, &err)

			left, err := a.dump(store)
			if err != nil {
				return err
			}
			right, err := a.dump(other)
			if err != nil {
				return err
			}

			diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(left),
				B:        difflib.SplitLines(right),
				FromFile: a.cfg.Path,
				ToFile:   args[0],
				Context:  context,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}
	cmd.Flags().IntVarP(&context, "context", "U", 1, "lines of context")
	return cmd
}

func (a *app) dump(store db.KVStore) (string, error) {
	iter, err := store.NewIterator(nil, nil)
	if err != nil {
		return "", err
	}
	defer iter.Close() //nolint:errcheck

	var sb strings.Builder
	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s\t%s\n", a.format(iter.Key()), a.format(value))
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
