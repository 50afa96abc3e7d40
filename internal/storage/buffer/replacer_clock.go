package buffer

import (
	"fmt"
	"sync"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

type ClockDesc struct {
	tracked    bool
	evictable  bool
	referenced bool
}

// ClockReplacer is a second-chance clock. RecordAccess sets the
// reference bit; the hand clears it once before evicting the frame.
type ClockReplacer struct {
	mu            sync.Mutex
	frames        []ClockDesc
	nextVictimIdx int
	size          int
}

func NewClockReplacer(numFrames int) *ClockReplacer {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	return &ClockReplacer{
		frames: make([]ClockDesc, numFrames),
	}
}

func (this *ClockReplacer) RecordAccess(frameIdx util.FrameID) {
	this.mu.Lock()
	defer this.mu.Unlock()

	checkFrameBound("RecordAccess", frameIdx, len(this.frames))

	desc := &this.frames[frameIdx]
	desc.tracked = true
	desc.referenced = true
}

func (this *ClockReplacer) SetEvictable(frameIdx util.FrameID, evictable bool) {
	this.mu.Lock()
	defer this.mu.Unlock()

	if frameIdx < 0 || frameIdx >= len(this.frames) {
		return
	}
	desc := &this.frames[frameIdx]
	if !desc.tracked || desc.evictable == evictable {
		return
	}

	desc.evictable = evictable
	if evictable {
		this.size++
	} else {
		this.size--
	}
}

func (this *ClockReplacer) Evict() (util.FrameID, bool) {
	this.mu.Lock()
	defer this.mu.Unlock()

	if this.size == 0 {
		return -1, false
	}

	// at most two sweeps: the first clears reference bits
	poolSize := len(this.frames)
	for sweep := 0; sweep < 2*poolSize; sweep++ {
		victimIdx := this.nextVictimIdx
		this.nextVictimIdx = (this.nextVictimIdx + 1) % poolSize

		desc := &this.frames[victimIdx]
		if !desc.tracked || !desc.evictable {
			continue
		}
		if desc.referenced {
			desc.referenced = false
			continue
		}

		*desc = ClockDesc{}
		this.size--
		return victimIdx, true
	}

	panic(fmt.Errorf("[clock] [Evict] evictable frame not found within two sweeps: %w", util.ErrInvalidEviction))
}

func (this *ClockReplacer) Remove(frameIdx util.FrameID) {
	this.mu.Lock()
	defer this.mu.Unlock()

	if frameIdx < 0 || frameIdx >= len(this.frames) {
		return
	}
	desc := &this.frames[frameIdx]
	if !desc.tracked || !desc.evictable {
		return
	}
	*desc = ClockDesc{}
	this.size--
}

func (this *ClockReplacer) Size() int {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.size
}
