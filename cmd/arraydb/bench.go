package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bietkhonhungvandi212/array-db/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/array-db/internal/storage/file"
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type benchConfig struct {
	pages      int
	workers    int
	ops        int
	writeRatio float64
	seed       int64
}

type benchResult struct {
	reads    uint64
	writes   uint64
	retries  uint64
	elapsed  time.Duration
	stats    buffer.Stats
	mismatch uint64
}

func newBenchCmd(configPath *string) *cobra.Command {
	var (
		cfg      benchConfig
		backend  string
		policy   string
		poolSize int
		path     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run concurrent guarded reads and writes against a buffer pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				opts.Backend = util.Backend(backend)
			}
			if cmd.Flags().Changed("policy") {
				opts.ReplacerPolicy = util.ReplacerPolicy(policy)
			}
			if cmd.Flags().Changed("pool-size") {
				opts.BufferPoolSize = poolSize
			}
			if cmd.Flags().Changed("path") {
				opts.Path = path
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			opts.Logger = opts.Log()

			store, err := file.Open(opts)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					opts.Logger.WithError(err).Error("close store")
				}
			}()

			bp, err := buffer.New(opts, store, nil)
			if err != nil {
				return err
			}

			res, err := runBench(bp, cfg)
			if err != nil {
				return err
			}
			if err := store.Sync(); err != nil {
				return err
			}

			opts.Logger.WithFields(logrus.Fields{
				"backend":   opts.Backend,
				"policy":    opts.ReplacerPolicy,
				"pool_size": opts.BufferPoolSize,
			}).Info("bench finished")
			printResult(cmd, res)
			if res.mismatch > 0 {
				return fmt.Errorf("%d reads saw a page image that does not match its id", res.mismatch)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.pages, "pages", 256, "Number of distinct pages")
	cmd.Flags().IntVar(&cfg.workers, "workers", 8, "Concurrent workers")
	cmd.Flags().IntVar(&cfg.ops, "ops", 10000, "Operations per worker")
	cmd.Flags().Float64Var(&cfg.writeRatio, "write-ratio", 0.2, "Fraction of operations taking the write latch")
	cmd.Flags().Int64Var(&cfg.seed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&backend, "backend", "", "Override storage.backend (mmap, leveldb, memory)")
	cmd.Flags().StringVar(&policy, "policy", "", "Override buffer.policy (lru-k, lru, clock)")
	cmd.Flags().IntVar(&poolSize, "pool-size", 0, "Override buffer.pool_size")
	cmd.Flags().StringVar(&path, "path", "", "Override storage.path")
	return cmd
}

// runBench creates cfg.pages pages stamped with their own id, then lets
// the workers read and update them at random.
func runBench(bp *buffer.BufferPool, cfg benchConfig) (benchResult, error) {
	var res benchResult
	if cfg.pages <= 0 || cfg.workers <= 0 {
		return res, fmt.Errorf("pages and workers must be positive")
	}

	ids := make([]util.PageID, 0, cfg.pages)
	for i := 0; i < cfg.pages; i++ {
		g, err := bp.NewPageGuarded()
		if err != nil {
			return res, err
		}
		binary.LittleEndian.PutUint64(g.GetDataMut(), uint64(g.PageID()))
		ids = append(ids, g.PageID())
		g.Drop()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	start := time.Now()
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			local, err := benchWorker(bp, ids, cfg, seed)

			mu.Lock()
			defer mu.Unlock()
			res.reads += local.reads
			res.writes += local.writes
			res.retries += local.retries
			res.mismatch += local.mismatch
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}(cfg.seed + int64(w))
	}
	wg.Wait()
	res.elapsed = time.Since(start)

	bp.FlushAllPages()
	res.stats = bp.Stats()
	return res, firstErr
}

func benchWorker(bp *buffer.BufferPool, ids []util.PageID, cfg benchConfig, seed int64) (benchResult, error) {
	var res benchResult
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < cfg.ops; i++ {
		id := ids[rng.Intn(len(ids))]

		if rng.Float64() < cfg.writeRatio {
			g, err := bp.FetchPageWrite(id)
			if errors.Is(err, util.ErrNoFreeFrame) {
				res.retries++
				continue
			}
			if err != nil {
				return res, err
			}
			data := g.GetDataMut()
			counter := binary.LittleEndian.Uint64(data[8:])
			binary.LittleEndian.PutUint64(data[8:], counter+1)
			g.Drop()
			res.writes++
			continue
		}

		g, err := bp.FetchPageRead(id)
		if errors.Is(err, util.ErrNoFreeFrame) {
			res.retries++
			continue
		}
		if err != nil {
			return res, err
		}
		if util.PageID(binary.LittleEndian.Uint64(g.GetData())) != id {
			res.mismatch++
		}
		g.Drop()
		res.reads++
	}
	return res, nil
}

func printResult(cmd *cobra.Command, res benchResult) {
	out := cmd.OutOrStdout()
	total := res.reads + res.writes
	fmt.Fprintf(out, "operations:  %d (%d reads, %d writes, %d retries)\n", total, res.reads, res.writes, res.retries)
	fmt.Fprintf(out, "elapsed:     %v\n", res.elapsed)
	if secs := res.elapsed.Seconds(); secs > 0 {
		fmt.Fprintf(out, "throughput:  %.0f ops/s\n", float64(total)/secs)
	}
	fmt.Fprintf(out, "hit ratio:   %.2f%% (%d hits, %d misses)\n", res.stats.HitRatio()*100, res.stats.Hits, res.stats.Misses)
	fmt.Fprintf(out, "evictions:   %d (%d dirty write-backs)\n", res.stats.Evictions, res.stats.WriteBacks)
	fmt.Fprintf(out, "flushes:     %d\n", res.stats.Flushes)
}
