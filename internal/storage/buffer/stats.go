package buffer

import "sync/atomic"

type poolStats struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	evictions  atomic.Uint64
	writeBacks atomic.Uint64
	flushes    atomic.Uint64
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	Hits       uint64 // FetchPage found the page resident
	Misses     uint64 // FetchPage read the page from disk
	Evictions  uint64
	WriteBacks uint64 // dirty victims written before reuse
	Flushes    uint64 // explicit FlushPage / FlushAllPages writes
}

func (bp *BufferPool) Stats() Stats {
	return Stats{
		Hits:       bp.stats.hits.Load(),
		Misses:     bp.stats.misses.Load(),
		Evictions:  bp.stats.evictions.Load(),
		WriteBacks: bp.stats.writeBacks.Load(),
		Flushes:    bp.stats.flushes.Load(),
	}
}

// HitRatio returns the cache hit ratio
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
