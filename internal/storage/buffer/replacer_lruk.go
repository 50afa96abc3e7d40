package buffer

import (
	"sync"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/emirpasic/gods/trees/redblacktree"
	godsutils "github.com/emirpasic/gods/utils"
)

type lrukNode struct {
	history   []uint64 // oldest first, at most k entries
	evictable bool
}

// victimKey orders evictable frames so the leftmost key is the next
// victim: frames with fewer than k accesses first, then by the oldest
// timestamp still in the history.
type victimKey struct {
	finite bool
	oldest uint64
	frame  util.FrameID
}

func victimComparator(a, b interface{}) int {
	x := a.(victimKey)
	y := b.(victimKey)
	if x.finite != y.finite {
		if !x.finite {
			return -1
		}
		return 1
	}
	switch {
	case x.oldest < y.oldest:
		return -1
	case x.oldest > y.oldest:
		return 1
	}
	return godsutils.IntComparator(x.frame, y.frame)
}

// LRUKReplacer evicts the frame with the largest backward k-distance.
// A frame with fewer than k recorded accesses has infinite distance;
// ties are broken by the earliest timestamp kept in the frame history.
type LRUKReplacer struct {
	mu        sync.Mutex
	nodes     map[util.FrameID]*lrukNode
	victims   *redblacktree.Tree
	numFrames int
	k         int
	now       uint64
}

func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	if k <= 0 {
		panic(util.ErrInvalidReplacerK)
	}

	return &LRUKReplacer{
		nodes:     make(map[util.FrameID]*lrukNode, numFrames),
		victims:   redblacktree.NewWith(victimComparator),
		numFrames: numFrames,
		k:         k,
	}
}

func (r *LRUKReplacer) RecordAccess(frameIdx util.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	checkFrameBound("RecordAccess", frameIdx, r.numFrames)

	node, ok := r.nodes[frameIdx]
	if !ok {
		node = &lrukNode{history: make([]uint64, 0, r.k)}
		r.nodes[frameIdx] = node
	} else if node.evictable {
		r.victims.Remove(r.keyOf(frameIdx, node))
	}

	r.now++
	if len(node.history) == r.k {
		copy(node.history, node.history[1:])
		node.history[r.k-1] = r.now
	} else {
		node.history = append(node.history, r.now)
	}

	if node.evictable {
		r.victims.Put(r.keyOf(frameIdx, node), nil)
	}
}

func (r *LRUKReplacer) SetEvictable(frameIdx util.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameIdx]
	if !ok || node.evictable == evictable {
		return
	}

	node.evictable = evictable
	if evictable {
		r.victims.Put(r.keyOf(frameIdx, node), nil)
	} else {
		r.victims.Remove(r.keyOf(frameIdx, node))
	}
}

func (r *LRUKReplacer) Evict() (util.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := r.victims.Left()
	if left == nil {
		return -1, false
	}

	key := left.Key.(victimKey)
	r.victims.Remove(key)
	delete(r.nodes, key.frame)
	return key.frame, true
}

// Remove ignores frames that are still pinned; their node stays.
func (r *LRUKReplacer) Remove(frameIdx util.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameIdx]
	if !ok || !node.evictable {
		return
	}

	r.victims.Remove(r.keyOf(frameIdx, node))
	delete(r.nodes, frameIdx)
}

func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.victims.Size()
}

func (r *LRUKReplacer) keyOf(frameIdx util.FrameID, node *lrukNode) victimKey {
	return victimKey{
		finite: len(node.history) >= r.k,
		oldest: node.history[0],
		frame:  frameIdx,
	}
}
