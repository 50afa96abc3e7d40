package buffer

import (
	"fmt"
	"sync"

	"github.com/bietkhonhungvandi212/array-db/internal/storage/file"
	"github.com/bietkhonhungvandi212/array-db/internal/storage/page"
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/sirupsen/logrus"
)

// LogManager is the write-ahead log handle of the engine. The pool keeps
// it for the layers above and never calls it.
type LogManager = any

// BufferPool maps page ids to a fixed set of frames. Every exported
// method takes mu for its whole duration, disk I/O included; unexported
// methods assume mu is held.
type BufferPool struct {
	mu         sync.Mutex
	frames     []page.Page // Holds page.Page (4KB)
	table      *frameTable
	replacer   Replacer
	fm         file.DiskManager
	logManager LogManager
	log        *logrus.Entry
	nextPageID util.PageID
	poolSize   int // Total frames
	stats      poolStats
}

// NewBufferPool creates a pool of size frames evicting with LRU-K.
func NewBufferPool(size int, disk file.DiskManager, k int, logManager LogManager) *BufferPool {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	return newBufferPool(size, disk, NewLRUKReplacer(size, k), logManager, util.NewLogger("info"))
}

// New creates a pool from options, honouring the replacer policy and
// logger they carry.
func New(opts util.Options, disk file.DiskManager, logManager LogManager) (*BufferPool, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	replacer, err := NewReplacer(opts.ReplacerPolicy, opts.BufferPoolSize, opts.ReplacerK)
	if err != nil {
		return nil, err
	}
	return newBufferPool(opts.BufferPoolSize, disk, replacer, logManager, opts.Log()), nil
}

func newBufferPool(size int, disk file.DiskManager, replacer Replacer, logManager LogManager, logger *logrus.Logger) *BufferPool {
	if disk == nil {
		panic(util.ErrFileManagerNil)
	}

	bp := &BufferPool{
		frames:     make([]page.Page, size),
		table:      newFrameTable(size),
		replacer:   replacer,
		fm:         disk,
		logManager: logManager,
		log:        logger.WithField("component", "buffer"),
		poolSize:   size,
	}
	for i := range bp.frames {
		bp.frames[i].Header.PageID = util.InvalidPageID
	}
	return bp
}

/* NEW PAGE */

// NewPage allocates a fresh page id and pins it in a frame. The id is
// available through GetPageId on the returned page. Returns
// util.ErrNoFreeFrame when every frame is pinned.
func (bp *BufferPool) NewPage() (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.table.full() && bp.replacer.Size() == 0 {
		return nil, util.ErrNoFreeFrame
	}

	frameIdx, err := bp.acquireFrame()
	if err != nil {
		return nil, err
	}

	pageId := bp.allocatePage()
	frame := &bp.frames[frameIdx]
	frame.Header.PageID = pageId
	frame.SetPinCount(1)
	bp.table.insert(pageId, frameIdx)

	bp.replacer.RecordAccess(frameIdx)
	bp.replacer.SetEvictable(frameIdx, false)

	bp.log.WithFields(logrus.Fields{"page": pageId, "frame": frameIdx}).Debug("new page")
	return frame, nil
}

/* FETCH PAGE */

// FetchPage pins pageId, reading it from disk on a miss. Only a load
// records an access with the replacer; a hit just pins.
func (bp *BufferPool) FetchPage(pageId util.PageID) (*page.Page, error) {
	if pageId < 0 {
		return nil, util.ErrInvalidPageId
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameIdx, ok := bp.table.lookup(pageId); ok {
		frame := &bp.frames[frameIdx]
		frame.Pin()
		bp.replacer.SetEvictable(frameIdx, false)
		bp.stats.hits.Add(1)
		return frame, nil
	}

	if bp.table.full() && bp.replacer.Size() == 0 {
		return nil, util.ErrNoFreeFrame
	}

	frameIdx, err := bp.acquireFrame()
	if err != nil {
		return nil, err
	}

	frame := &bp.frames[frameIdx]
	if err := bp.fm.ReadPage(pageId, frame.GetData()); err != nil {
		frame.Reset()
		bp.table.returnFrameToFree(frameIdx)
		bp.log.WithError(err).WithField("page", pageId).Error("read page failed")
		return nil, fmt.Errorf("[pool] [FetchPage] read page %d: %w", pageId, err)
	}
	bp.stats.misses.Add(1)

	frame.Header.PageID = pageId
	frame.SetPinCount(1)
	bp.table.insert(pageId, frameIdx)

	bp.replacer.RecordAccess(frameIdx)
	bp.replacer.SetEvictable(frameIdx, false)

	bp.log.WithFields(logrus.Fields{"page": pageId, "frame": frameIdx}).Debug("page loaded")
	return frame, nil
}

/* UNPIN PAGE */

// UnpinPage drops one pin. isDirty is OR-ed into the dirty flag; only a
// flush clears it. Returns false if the page is not resident or not pinned.
func (bp *BufferPool) UnpinPage(pageId util.PageID, isDirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameIdx, ok := bp.table.lookup(pageId)
	if !ok {
		return false
	}

	frame := &bp.frames[frameIdx]
	if frame.GetPinCount() <= 0 {
		return false
	}

	if frame.Unpin() == 0 {
		bp.replacer.SetEvictable(frameIdx, true)
	}
	if isDirty {
		frame.Header.SetDirtyFlag()
	}
	return true
}

/* FLUSH */

// FlushPage writes the page to disk whatever its pin count and clears
// the dirty flag. Returns false if the page is not resident or the
// write failed.
func (bp *BufferPool) FlushPage(pageId util.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	return bp.flushPage(pageId)
}

// FlushAllPages flushes every resident page. A failing page does not
// stop the others.
func (bp *BufferPool) FlushAllPages() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for pageId := range bp.table.pageToIdx {
		bp.flushPage(pageId)
	}
}

func (bp *BufferPool) flushPage(pageId util.PageID) bool {
	frameIdx, ok := bp.table.lookup(pageId)
	if !ok {
		return false
	}

	frame := &bp.frames[frameIdx]
	if err := bp.fm.WritePage(pageId, frame.GetData()); err != nil {
		bp.log.WithError(err).WithField("page", pageId).Error("flush page failed")
		return false
	}
	frame.Header.ClearDirtyFlag()
	bp.stats.flushes.Add(1)
	return true
}

/* DELETE PAGE */

// DeletePage drops an unpinned page from the pool without writing it
// back. Returns false only when the page is resident and pinned.
func (bp *BufferPool) DeletePage(pageId util.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameIdx, ok := bp.table.lookup(pageId)
	if !ok {
		return true
	}

	frame := &bp.frames[frameIdx]
	if frame.GetPinCount() > 0 {
		return false
	}

	bp.replacer.Remove(frameIdx)
	frame.Reset()
	bp.table.removePageMapping(pageId)
	bp.table.returnFrameToFree(frameIdx)
	bp.deallocatePage(pageId)
	return true
}

/* GUARDED ACCESS */

func (bp *BufferPool) FetchPageBasic(pageId util.PageID) (*BasicPageGuard, error) {
	frame, err := bp.FetchPage(pageId)
	if err != nil {
		return nil, err
	}
	return newBasicPageGuard(bp, frame), nil
}

func (bp *BufferPool) FetchPageRead(pageId util.PageID) (*ReadPageGuard, error) {
	frame, err := bp.FetchPage(pageId)
	if err != nil {
		return nil, err
	}
	frame.RLatch()
	return newReadPageGuard(bp, frame), nil
}

func (bp *BufferPool) FetchPageWrite(pageId util.PageID) (*WritePageGuard, error) {
	frame, err := bp.FetchPage(pageId)
	if err != nil {
		return nil, err
	}
	frame.WLatch()
	return newWritePageGuard(bp, frame), nil
}

func (bp *BufferPool) NewPageGuarded() (*BasicPageGuard, error) {
	frame, err := bp.NewPage()
	if err != nil {
		return nil, err
	}
	return newBasicPageGuard(bp, frame), nil
}

/* INTROSPECTION */

func (bp *BufferPool) PoolSize() int {
	return bp.poolSize
}

func (bp *BufferPool) FreeFrameCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.table.free()
}

func (bp *BufferPool) ResidentCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.table.resident()
}

func (bp *BufferPool) LogManager() LogManager {
	return bp.logManager
}

// ===================== HELPER FUNCTION =====================

// acquireFrame returns an empty frame, taking it from the free list or
// evicting a victim. The caller has already checked that one exists.
func (bp *BufferPool) acquireFrame() (util.FrameID, error) {
	if freeIdx := bp.table.allocFromFree(); freeIdx != -1 {
		return freeIdx, nil
	}

	victimIdx, ok := bp.replacer.Evict()
	if !ok {
		panic(fmt.Errorf("[pool] [acquireFrame] free list empty and replacer has no victim: %w", util.ErrInvalidEviction))
	}

	victim := &bp.frames[victimIdx]
	oldPageId := victim.GetPageId()
	if victim.IsDirty() {
		if err := bp.fm.WritePage(oldPageId, victim.GetData()); err != nil {
			// put the victim back so the page is not lost. Evict dropped
			// its history, so it rejoins as the newest frame.
			bp.replacer.RecordAccess(victimIdx)
			bp.replacer.SetEvictable(victimIdx, true)
			bp.log.WithError(err).WithField("page", oldPageId).Error("write back failed")
			return -1, fmt.Errorf("[pool] [acquireFrame] write back page %d: %w: %w", oldPageId, util.ErrFlushFailed, err)
		}
		bp.stats.writeBacks.Add(1)
	}

	bp.table.removePageMapping(oldPageId)
	victim.Reset()
	bp.stats.evictions.Add(1)

	bp.log.WithFields(logrus.Fields{"page": oldPageId, "frame": victimIdx}).Debug("evicted")
	return victimIdx, nil
}

func (bp *BufferPool) allocatePage() util.PageID {
	pageId := bp.nextPageID
	bp.nextPageID++
	return pageId
}

// deallocatePage forgets pageId. Disk space is not reclaimed.
func (bp *BufferPool) deallocatePage(pageId util.PageID) {
	bp.log.WithField("page", pageId).Debug("page deleted")
}
