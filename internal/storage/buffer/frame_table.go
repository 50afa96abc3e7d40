package buffer

import (
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

// frameTable holds the page table and the free list. A frame index is
// either on the free list or a value of pageToIdx, never both. The
// caller serializes access.
type frameTable struct {
	pageToIdx map[util.PageID]util.FrameID // Map PageID to frame index
	nextFree  []int                        // Free list links
	freeHead  int                          // Head of free list (next to allocate)
	freeTail  int                          // Tail of free list (last returned)
	freeCount int
	poolSize  int // Total frames
}

func newFrameTable(size int) *frameTable {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	ft := &frameTable{
		pageToIdx: make(map[util.PageID]util.FrameID, size),
		nextFree:  make([]int, size),
		freeHead:  0,
		freeTail:  size - 1,
		freeCount: size,
		poolSize:  size,
	}
	for i := 0; i < size; i++ {
		ft.nextFree[i] = i + 1
	}
	ft.nextFree[size-1] = -1
	return ft
}

// allocFromFree pops the head of the free list, or -1 when empty.
func (ft *frameTable) allocFromFree() int {
	if ft.freeHead == -1 {
		return -1
	}
	freeIdx := ft.freeHead
	ft.freeHead = ft.nextFree[freeIdx]
	ft.nextFree[freeIdx] = -1
	if ft.freeHead == -1 {
		ft.freeTail = -1
	}
	ft.freeCount--
	return freeIdx
}

// returnFrameToFree appends a frame to the tail of the free list.
func (ft *frameTable) returnFrameToFree(frameIdx int) {
	ft.nextFree[frameIdx] = -1
	if ft.freeTail == -1 {
		ft.freeHead = frameIdx
	} else {
		ft.nextFree[ft.freeTail] = frameIdx
	}
	ft.freeTail = frameIdx
	ft.freeCount++
}

func (ft *frameTable) lookup(pageId util.PageID) (util.FrameID, bool) {
	idx, ok := ft.pageToIdx[pageId]
	return idx, ok
}

func (ft *frameTable) insert(pageId util.PageID, frameIdx util.FrameID) {
	ft.pageToIdx[pageId] = frameIdx
}

// removePageMapping removes a page from the pageToIdx map.
func (ft *frameTable) removePageMapping(pageId util.PageID) {
	delete(ft.pageToIdx, pageId)
}

func (ft *frameTable) full() bool {
	return len(ft.pageToIdx) == ft.poolSize
}

func (ft *frameTable) resident() int {
	return len(ft.pageToIdx)
}

func (ft *frameTable) free() int {
	return ft.freeCount
}
