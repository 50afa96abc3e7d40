package buffer

import (
	"fmt"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

// Replacer defines the contract for page replacement policies. It only
// sees frame indexes; pins, pages and disk are the pool's business.
// Implementations are safe for concurrent use.
type Replacer interface {
	// RecordAccess notes that frameIdx was accessed now. Panics when
	// frameIdx is outside the frame range.
	RecordAccess(frameIdx util.FrameID)
	// SetEvictable toggles whether frameIdx may be chosen by Evict.
	// Unknown frames are ignored.
	SetEvictable(frameIdx util.FrameID, evictable bool)
	// Evict removes and returns the victim frame, forgetting its history.
	Evict() (util.FrameID, bool)
	// Remove drops an evictable frame and its history. Non-evictable
	// frames are left untouched.
	Remove(frameIdx util.FrameID)
	// Size returns the number of evictable frames.
	Size() int
}

// NewReplacer builds the replacer named by policy for numFrames frames.
func NewReplacer(policy util.ReplacerPolicy, numFrames, k int) (Replacer, error) {
	if numFrames <= 0 {
		return nil, util.ErrInvalidPoolSize
	}
	switch policy {
	case util.PolicyLRUK:
		if k <= 0 {
			return nil, util.ErrInvalidReplacerK
		}
		return NewLRUKReplacer(numFrames, k), nil
	case util.PolicyLRU:
		return NewLRUReplacer(numFrames), nil
	case util.PolicyClock:
		return NewClockReplacer(numFrames), nil
	default:
		return nil, fmt.Errorf("[replacer] %q: %w", policy, util.ErrUnknownPolicy)
	}
}

func checkFrameBound(op string, frameIdx util.FrameID, numFrames int) {
	if frameIdx < 0 || frameIdx >= numFrames {
		panic(fmt.Errorf("[replacer] [%s] frame %d (frames %d): %w", op, frameIdx, numFrames, util.ErrOutBoundOfFrame))
	}
}
