package buffer

import (
	"github.com/bietkhonhungvandi212/array-db/internal/storage/page"
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

// noCopy lets `go vet` flag guards copied by value. A copied guard
// would unpin twice.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// BasicPageGuard owns one pin on a page. Drop releases it exactly once;
// use `defer g.Drop()` right after obtaining the guard. Methods are
// safe on a nil or dropped guard.
type BasicPageGuard struct {
	_     noCopy
	bpm   *BufferPool
	page  *page.Page
	dirty bool
}

func newBasicPageGuard(bpm *BufferPool, p *page.Page) *BasicPageGuard {
	return &BasicPageGuard{bpm: bpm, page: p}
}

// PageID returns the guarded page id, or InvalidPageID once released.
func (g *BasicPageGuard) PageID() util.PageID {
	if g == nil || g.page == nil {
		return util.InvalidPageID
	}
	return g.page.GetPageId()
}

func (g *BasicPageGuard) GetData() []byte {
	if g == nil || g.page == nil {
		return nil
	}
	return g.page.GetData()
}

// GetDataMut returns the page image for writing and marks the page dirty.
func (g *BasicPageGuard) GetDataMut() []byte {
	if g == nil || g.page == nil {
		return nil
	}
	g.dirty = true
	return g.page.GetData()
}

func (g *BasicPageGuard) MarkDirty() {
	if g == nil || g.page == nil {
		return
	}
	g.dirty = true
}

func (g *BasicPageGuard) IsEmpty() bool {
	return g == nil || g.page == nil
}

// Drop unpins the page. Calling it again is a no-op.
func (g *BasicPageGuard) Drop() {
	if g == nil {
		return
	}
	if g.bpm != nil && g.page != nil {
		g.bpm.UnpinPage(g.page.GetPageId(), g.dirty)
	}
	g.clear()
}

// Move hands the pin to a new guard and leaves g empty.
func (g *BasicPageGuard) Move() *BasicPageGuard {
	moved := &BasicPageGuard{}
	moved.take(g)
	return moved
}

// Assign releases what g holds, then takes over that's pin.
func (g *BasicPageGuard) Assign(that *BasicPageGuard) {
	if g == nil || g == that {
		return
	}
	g.Drop()
	g.take(that)
}

func (g *BasicPageGuard) take(that *BasicPageGuard) {
	if that == nil {
		return
	}
	g.bpm = that.bpm
	g.page = that.page
	g.dirty = that.dirty
	that.clear()
}

func (g *BasicPageGuard) clear() {
	g.bpm = nil
	g.page = nil
	g.dirty = false
}

// ReadPageGuard owns a pin and the shared latch of a page.
type ReadPageGuard struct {
	_     noCopy
	guard BasicPageGuard
}

// newReadPageGuard expects p to be pinned and read-latched already.
func newReadPageGuard(bpm *BufferPool, p *page.Page) *ReadPageGuard {
	g := &ReadPageGuard{}
	g.guard.bpm = bpm
	g.guard.page = p
	return g
}

func (g *ReadPageGuard) PageID() util.PageID {
	if g == nil {
		return util.InvalidPageID
	}
	return g.guard.PageID()
}

// GetData returns the page image. It must not be modified.
func (g *ReadPageGuard) GetData() []byte {
	if g == nil {
		return nil
	}
	return g.guard.GetData()
}

func (g *ReadPageGuard) IsEmpty() bool {
	return g == nil || g.guard.IsEmpty()
}

// Drop releases the latch, then the pin.
func (g *ReadPageGuard) Drop() {
	if g == nil || g.guard.page == nil {
		return
	}
	g.guard.page.RUnlatch()
	g.guard.Drop()
}

func (g *ReadPageGuard) Move() *ReadPageGuard {
	moved := &ReadPageGuard{}
	if g != nil {
		moved.guard.take(&g.guard)
	}
	return moved
}

func (g *ReadPageGuard) Assign(that *ReadPageGuard) {
	if g == nil || g == that {
		return
	}
	g.Drop()
	if that != nil {
		g.guard.take(&that.guard)
	}
}

// WritePageGuard owns a pin and the exclusive latch of a page. The page
// is always unpinned dirty.
type WritePageGuard struct {
	_     noCopy
	guard BasicPageGuard
}

// newWritePageGuard expects p to be pinned and write-latched already.
func newWritePageGuard(bpm *BufferPool, p *page.Page) *WritePageGuard {
	g := &WritePageGuard{}
	g.guard.bpm = bpm
	g.guard.page = p
	return g
}

func (g *WritePageGuard) PageID() util.PageID {
	if g == nil {
		return util.InvalidPageID
	}
	return g.guard.PageID()
}

func (g *WritePageGuard) GetData() []byte {
	if g == nil {
		return nil
	}
	return g.guard.GetData()
}

func (g *WritePageGuard) GetDataMut() []byte {
	if g == nil {
		return nil
	}
	return g.guard.GetDataMut()
}

func (g *WritePageGuard) IsEmpty() bool {
	return g == nil || g.guard.IsEmpty()
}

// Drop releases the latch, then unpins the page as dirty.
func (g *WritePageGuard) Drop() {
	if g == nil || g.guard.page == nil {
		return
	}
	g.guard.page.WUnlatch()
	g.guard.dirty = true
	g.guard.Drop()
}

func (g *WritePageGuard) Move() *WritePageGuard {
	moved := &WritePageGuard{}
	if g != nil {
		moved.guard.take(&g.guard)
	}
	return moved
}

func (g *WritePageGuard) Assign(that *WritePageGuard) {
	if g == nil || g == that {
		return
	}
	g.Drop()
	if that != nil {
		g.guard.take(&that.guard)
	}
}
