package cli

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eigerco/levelbridge/pkg/db"
	"github.com/eigerco/levelbridge/pkg/log"
)

type loadOptions struct {
	count     int
	workers   int
	batchSize int
	prefix    string
	valueSize int
}

func (a *app) loadCommand() *cobra.Command {
	o := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Write generated keys concurrently",
		Long: `load writes --count keys named <prefix><index> with values of --value-size
bytes. Each worker owns the indexes equal to its number modulo --workers and
commits them in batches of --batch-size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, o)
		},
	}
	cmd.Flags().IntVar(&o.count, "count", 1000, "number of keys to write")
	cmd.Flags().IntVar(&o.workers, "workers", 4, "number of concurrent writers")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", 100, "operations per committed batch")
	cmd.Flags().StringVar(&o.prefix, "prefix", "key-", "key prefix")
	cmd.Flags().IntVar(&o.valueSize, "value-size", 32, "value size in bytes")
	return cmd
}

func (a *app) load(cmd *cobra.Command, o *loadOptions) (err error) {
	if o.count < 0 || o.workers < 1 || o.batchSize < 1 || o.valueSize < 0 {
		return fmt.Errorf("count and value-size must not be negative, workers and batch-size must be positive")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(store, &err)

	start := time.Now()
	g, ctx := errgroup.WithContext(cmd.Context())
	for w := 0; w < o.workers; w++ {
		g.Go(func() error {
			if err := loadWorker(ctx, store, o, w); err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	log.CLI.Info().Int("keys", o.count).Int("workers", o.workers).Dur("elapsed", elapsed).Msg("load finished")
	fmt.Fprintf(cmd.OutOrStdout(), "%d keys written by %d workers in %s\n", o.count, o.workers, elapsed.Round(time.Millisecond))
	return nil
}

func loadWorker(ctx context.Context, store db.KVStore, o *loadOptions, w int) error {
	batch := store.NewBatch()
	defer func() { batch.Close() }() //nolint:errcheck

	pending := 0
	for i := w; i < o.count; i += o.workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := fmt.Sprintf("%s%08d", o.prefix, i)
		if err := batch.Put([]byte(key), bytes.Repeat([]byte{byte('a' + i%26)}, o.valueSize)); err != nil {
			return err
		}
		pending++
		if pending == o.batchSize {
			if err := batch.Commit(); err != nil {
				return err
			}
			batch, pending = store.NewBatch(), 0
		}
	}
	if pending == 0 {
		return nil
	}
	return batch.Commit()
}
