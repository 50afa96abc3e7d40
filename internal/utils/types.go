package util

// PageID represents a unique page identifier
type PageID int64

// InvalidPageID marks a frame that holds no page.
const InvalidPageID PageID = -1

// FrameID is the index of a frame slot inside the buffer pool.
type FrameID = int

// PageSize represents the standard page size (4KB)
const PageSize = 4096

// MaxMapSize bounds the mmap region of a data file (1GB).
const MaxMapSize = 1 << 30

// ReplacerPolicy names an eviction policy.
type ReplacerPolicy string

const (
	PolicyLRUK  ReplacerPolicy = "lru-k"
	PolicyLRU   ReplacerPolicy = "lru"
	PolicyClock ReplacerPolicy = "clock"
)

// Backend names a disk backend.
type Backend string

const (
	BackendMmap    Backend = "mmap"
	BackendLevelDB Backend = "leveldb"
	BackendMemory  Backend = "memory"
)
