package file

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary test file
func createTempFile(t *testing.T) (string, func()) {
	t.Helper()
	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "test_db.dat")

	cleanup := func() {
		os.Remove(tempFile)
	}

	return tempFile, cleanup
}

// Helper function to create a test page image
func createTestImage(data string) []byte {
	buf := make([]byte, util.PageSize)
	copy(buf, data)
	return buf
}

func TestNewFileManager(t *testing.T) {
	tests := []struct {
		name          string
		initialPages  int
		expectedError error
		shouldSucceed bool
	}{
		{
			name:          "Valid creation with 1 page",
			initialPages:  1,
			shouldSucceed: true,
		},
		{
			name:          "Valid creation with 10 pages",
			initialPages:  10,
			shouldSucceed: true,
		},
		{
			name:          "Invalid negative pages",
			initialPages:  -1,
			expectedError: util.ErrInvalidInitialPages,
		},
		{
			name:          "Zero pages (edge case)",
			initialPages:  0,
			expectedError: util.ErrInvalidInitialPages,
		},
		{
			name:          "Large but valid page count",
			initialPages:  1000,
			shouldSucceed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempFile, cleanup := createTempFile(t)
			defer cleanup()

			fm, err := NewFileManager(tempFile, tt.initialPages)

			if !tt.shouldSucceed {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, fm)
				return
			}

			require.NoError(t, err)
			defer fm.Close()

			expectedSize := int64(tt.initialPages) * int64(util.PageSize)
			assert.Equal(t, expectedSize, fm.Size, "mapped size")

			stat, err := os.Stat(tempFile)
			require.NoError(t, err, "file should exist")
			assert.Equal(t, expectedSize, stat.Size(), "file size")
		})
	}
}

func TestFileManagerReadWrite(t *testing.T) {
	path, cleanup := createTempFile(t)
	defer cleanup()

	fm, err := NewFileManager(path, 2)
	require.NoError(t, err)
	defer fm.Close()

	t.Run("RoundTrip", func(t *testing.T) {
		in := createTestImage("Page 1 test data")
		require.NoError(t, fm.WritePage(1, in))

		out := make([]byte, util.PageSize)
		require.NoError(t, fm.ReadPage(1, out))
		assert.Equal(t, in, out)
	})

	t.Run("NeverWrittenReadsZero", func(t *testing.T) {
		out := createTestImage("garbage")
		require.NoError(t, fm.ReadPage(500, out))
		assert.Equal(t, make([]byte, util.PageSize), out)
	})

	t.Run("GrowOnWrite", func(t *testing.T) {
		in := createTestImage("far away")
		require.NoError(t, fm.WritePage(9, in))
		assert.GreaterOrEqual(t, fm.Size, int64(10*util.PageSize))

		out := make([]byte, util.PageSize)
		require.NoError(t, fm.ReadPage(9, out))
		assert.Equal(t, in, out)

		// earlier pages survive the remap
		require.NoError(t, fm.ReadPage(1, out))
		assert.Equal(t, createTestImage("Page 1 test data"), out)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		assert.ErrorIs(t, fm.ReadPage(-1, make([]byte, util.PageSize)), util.ErrInvalidPageId)
		assert.ErrorIs(t, fm.WritePage(0, make([]byte, 10)), util.ErrInvalidPageSize)
	})

	t.Run("IdBeyondMappingLimit", func(t *testing.T) {
		zero := createTestImage("page-zero")
		require.NoError(t, fm.WritePage(0, zero))

		// offsets of these ids overflow int64 or exceed MaxMapSize
		for _, id := range []util.PageID{maxMappedPages, 1 << 51, 1 << 52, 1<<63 - 1} {
			out := make([]byte, util.PageSize)
			assert.ErrorIs(t, fm.ReadPage(id, out), util.ErrInvalidPageId, "read %d", id)
			assert.Equal(t, make([]byte, util.PageSize), out, "read %d left buf untouched", id)
			assert.ErrorIs(t, fm.WritePage(id, createTestImage("clobbered")), util.ErrInvalidPageId, "write %d", id)
		}

		out := make([]byte, util.PageSize)
		require.NoError(t, fm.ReadPage(0, out))
		assert.Equal(t, zero, out, "page 0 not aliased")
	})

	t.Run("Sync", func(t *testing.T) {
		assert.NoError(t, fm.Sync())
	})
}

func TestFileManagerReopen(t *testing.T) {
	path, cleanup := createTempFile(t)
	defer cleanup()

	fm, err := NewFileManager(path, 1)
	require.NoError(t, err)
	for i := util.PageID(0); i < 4; i++ {
		require.NoError(t, fm.WritePage(i, createTestImage(fmt.Sprintf("Page %d test data", i))))
	}
	require.NoError(t, fm.Close())
	assert.NoError(t, fm.Close(), "close is idempotent")

	fm, err = NewFileManager(path, 1)
	require.NoError(t, err)
	defer fm.Close()

	out := make([]byte, util.PageSize)
	for i := util.PageID(0); i < 4; i++ {
		require.NoError(t, fm.ReadPage(i, out))
		assert.Equal(t, createTestImage(fmt.Sprintf("Page %d test data", i)), out, "page %d", i)
	}
}

func TestClosedFileManager(t *testing.T) {
	path, cleanup := createTempFile(t)
	defer cleanup()

	fm, err := NewFileManager(path, 1)
	require.NoError(t, err)
	require.NoError(t, fm.Close())

	assert.ErrorIs(t, fm.ReadPage(0, make([]byte, util.PageSize)), util.ErrFileClosed)
	assert.ErrorIs(t, fm.WritePage(0, make([]byte, util.PageSize)), util.ErrFileClosed)
}
