package buffer

import (
	"sync"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// LRUReplacer evicts the evictable frame that was least recently
// accessed. Pinned frames are kept out of the list entirely.
type LRUReplacer struct {
	mu        sync.Mutex
	lru       *simplelru.LRU[util.FrameID, struct{}]
	tracked   map[util.FrameID]bool // frame -> evictable
	numFrames int
}

func NewLRUReplacer(numFrames int) *LRUReplacer {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}

	lru, err := simplelru.NewLRU[util.FrameID, struct{}](numFrames, nil)
	if err != nil {
		panic(err)
	}

	return &LRUReplacer{
		lru:       lru,
		tracked:   make(map[util.FrameID]bool, numFrames),
		numFrames: numFrames,
	}
}

func (lr *LRUReplacer) RecordAccess(frameIdx util.FrameID) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	checkFrameBound("RecordAccess", frameIdx, lr.numFrames)

	evictable, ok := lr.tracked[frameIdx]
	if !ok {
		lr.tracked[frameIdx] = false
		return
	}
	if evictable {
		// Get bumps the entry to most recently used
		lr.lru.Get(frameIdx)
	}
}

func (lr *LRUReplacer) SetEvictable(frameIdx util.FrameID, evictable bool) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	current, ok := lr.tracked[frameIdx]
	if !ok || current == evictable {
		return
	}

	lr.tracked[frameIdx] = evictable
	if evictable {
		lr.lru.Add(frameIdx, struct{}{})
	} else {
		lr.lru.Remove(frameIdx)
	}
}

func (lr *LRUReplacer) Evict() (util.FrameID, bool) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	frameIdx, _, ok := lr.lru.RemoveOldest()
	if !ok {
		return -1, false
	}
	delete(lr.tracked, frameIdx)
	return frameIdx, true
}

func (lr *LRUReplacer) Remove(frameIdx util.FrameID) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if evictable, ok := lr.tracked[frameIdx]; !ok || !evictable {
		return
	}
	lr.lru.Remove(frameIdx)
	delete(lr.tracked, frameIdx)
}

func (lr *LRUReplacer) Size() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.lru.Len()
}
