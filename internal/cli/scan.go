package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eigerco/levelbridge/pkg/leveldb"
)

type scanOptions struct {
	from, to string
	reverse  bool
	limit    int
	keysOnly bool
	snapshot bool
}

func (a *app) scanCommand() *cobra.Command {
	o := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List keys and values in order",
		Long: `scan prints one "key<TAB>value" line per entry. Bounds given with --from
and --to are inclusive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.scan(cmd, o)
		},
	}
	cmd.Flags().StringVar(&o.from, "from", "", "first key (inclusive)")
	cmd.Flags().StringVar(&o.to, "to", "", "last key (inclusive)")
	cmd.Flags().BoolVarP(&o.reverse, "reverse", "r", false, "iterate from the last key backwards")
	cmd.Flags().IntVarP(&o.limit, "limit", "n", 0, "stop after this many entries (0 means no limit)")
	cmd.Flags().BoolVar(&o.keysOnly, "keys-only", false, "print keys only")
	cmd.Flags().BoolVar(&o.snapshot, "snapshot", false, "read from a snapshot taken before the scan")
	return cmd
}

func (a *app) scan(cmd *cobra.Command, o *scanOptions) (err error) {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(store, &err)
	db := store.Database()

	ro := &leveldb.ReadOptions{DontFillCache: true}
	if o.snapshot {
		snap, err := db.Snapshot()
		if err != nil {
			return err
		}
		defer snap.Release() //nolint:errcheck
		ro.Snapshot = snap
	}

	it, err := db.NewIterator(ro)
	if err != nil {
		return err
	}
	defer it.Close() //nolint:errcheck

	if cmd.Flags().Changed("from") {
		from, err := a.decode(o.from)
		if err != nil {
			return err
		}
		it.From(from)
	}
	if cmd.Flags().Changed("to") {
		to, err := a.decode(o.to)
		if err != nil {
			return err
		}
		it.To(to)
	}
	if o.reverse {
		it.Reverse()
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush() //nolint:errcheck

	n := 0
	for key, value := range it.All() {
		if o.limit > 0 && n == o.limit {
			break
		}
		n++
		if o.keysOnly {
			fmt.Fprintln(out, a.format(key))
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", a.format(key), a.format(value))
	}
	return it.Err()
}
