package file

import (
	"sync"
	"sync/atomic"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

// MemoryManager keeps every page in a map and never runs out of space.
// It counts reads and writes so tests can observe disk traffic.
type MemoryManager struct {
	mu     sync.RWMutex
	pages  map[util.PageID][]byte
	reads  atomic.Int64
	writes atomic.Int64
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		pages: make(map[util.PageID][]byte),
	}
}

func (mm *MemoryManager) ReadPage(pageId util.PageID, buf []byte) error {
	if err := checkPageArgs(pageId, buf); err != nil {
		return err
	}

	mm.mu.RLock()
	defer mm.mu.RUnlock()
	mm.reads.Add(1)

	data, ok := mm.pages[pageId]
	if !ok {
		clear(buf)
		return nil
	}
	copy(buf, data)
	return nil
}

func (mm *MemoryManager) WritePage(pageId util.PageID, buf []byte) error {
	if err := checkPageArgs(pageId, buf); err != nil {
		return err
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.writes.Add(1)

	mm.pages[pageId] = append([]byte(nil), buf...)
	return nil
}

// Page returns a copy of the stored image and whether it was ever written.
func (mm *MemoryManager) Page(pageId util.PageID) ([]byte, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	data, ok := mm.pages[pageId]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (mm *MemoryManager) Reads() int64  { return mm.reads.Load() }
func (mm *MemoryManager) Writes() int64 { return mm.writes.Load() }

func (mm *MemoryManager) Sync() error  { return nil }
func (mm *MemoryManager) Close() error { return nil }
