package page

import (
	"sync"
	"sync/atomic"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

const (
	FlagDirty uint16 = 1 << iota
)

// Page is a frame slot of the buffer pool. Data holds exactly one page
// image; the header is in-memory metadata owned by the buffer pool.
type Page struct {
	Header PageHeader
	Data   [util.PageSize]byte

	latch sync.RWMutex
}

type PageHeader struct {
	PageID   util.PageID
	PinCount int32
	Flags    uint16
}

// GetData returns the page image. Callers hold the latch that matches
// their access.
func (p *Page) GetData() []byte {
	return p.Data[:]
}

func (p *Page) GetPageId() util.PageID {
	return p.Header.PageID
}

func (p *Page) GetPinCount() int32 {
	return atomic.LoadInt32(&p.Header.PinCount)
}

func (p *Page) IsDirty() bool {
	return p.Header.IsDirty()
}

/* LATCH */
func (p *Page) RLatch()   { p.latch.RLock() }
func (p *Page) RUnlatch() { p.latch.RUnlock() }
func (p *Page) WLatch()   { p.latch.Lock() }
func (p *Page) WUnlatch() { p.latch.Unlock() }

func (p *Page) TryRLatch() bool { return p.latch.TryRLock() }
func (p *Page) TryWLatch() bool { return p.latch.TryLock() }

// Pin increments the pin count and returns the new value.
func (p *Page) Pin() int32 {
	return atomic.AddInt32(&p.Header.PinCount, 1)
}

// Unpin decrements the pin count and returns the new value. The caller
// checks for a positive count first.
func (p *Page) Unpin() int32 {
	return atomic.AddInt32(&p.Header.PinCount, -1)
}

func (p *Page) SetPinCount(n int32) {
	atomic.StoreInt32(&p.Header.PinCount, n)
}

// ResetMemory zeroes the page image.
func (p *Page) ResetMemory() {
	clear(p.Data[:])
}

// Reset returns the slot to its unoccupied state.
func (p *Page) Reset() {
	p.ResetMemory()
	p.Header.PageID = util.InvalidPageID
	p.SetPinCount(0)
	p.Header.Flags = 0
}

/* FLAGS */
func (h *PageHeader) IsDirty() bool {
	return h.Flags&FlagDirty != 0
}

func (h *PageHeader) SetDirtyFlag() {
	h.Flags |= FlagDirty
}

func (h *PageHeader) ClearDirtyFlag() {
	h.Flags &^= FlagDirty
}
