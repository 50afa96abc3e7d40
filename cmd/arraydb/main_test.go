package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bietkhonhungvandi212/array-db/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/array-db/internal/storage/file"
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		out, err := execute(t, "config")
		require.NoError(t, err)
		assert.Contains(t, out, `policy = "lru-k"`)
		assert.Contains(t, out, "pool_size = 1000")
	})

	t.Run("FromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arraydb.toml")
		body := "[buffer]\npool_size = 64\npolicy = \"clock\"\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		out, err := execute(t, "config", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, `policy = "clock"`)
		assert.Contains(t, out, "pool_size = 64")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := execute(t, "config", "-c", filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestBenchCommand(t *testing.T) {
	for _, backend := range []string{"memory", "mmap", "leveldb"} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bench")
			out, err := execute(t, "bench",
				"--backend", backend,
				"--path", path,
				"--pool-size", "8",
				"--pages", "32",
				"--workers", "4",
				"--ops", "200",
			)
			require.NoError(t, err, out)
			assert.Contains(t, out, "hit ratio:")
		})
	}

	t.Run("InvalidPolicy", func(t *testing.T) {
		_, err := execute(t, "bench", "--backend", "memory", "--policy", "fifo")
		assert.ErrorIs(t, err, util.ErrUnknownPolicy)
	})
}

func TestRunBenchCounters(t *testing.T) {
	opts := util.DefaultOptions()
	opts.Backend = util.BackendMemory
	opts.BufferPoolSize = 4
	opts.Logger = util.NewDiscardLogger()

	bp, err := buffer.New(opts, file.NewMemoryManager(), nil)
	require.NoError(t, err)

	res, err := runBench(bp, benchConfig{pages: 16, workers: 3, ops: 100, writeRatio: 0.5, seed: 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(300), res.reads+res.writes+res.retries)
	assert.Zero(t, res.mismatch)
	assert.Equal(t, res.stats.Hits+res.stats.Misses, res.reads+res.writes)
}
