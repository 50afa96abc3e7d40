package buffer

import (
	"testing"
	"time"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPageGuard(t *testing.T) {
	t.Run("DropUnpins", func(t *testing.T) {
		bp, _ := newTestPool(t, 5, 2)
		p, err := bp.NewPage()
		require.NoError(t, err)

		g := newBasicPageGuard(bp, p)
		assert.Equal(t, p.GetPageId(), g.PageID())
		assert.Equal(t, p.GetData(), g.GetData())
		assert.Equal(t, int32(1), p.GetPinCount())

		g.Drop()
		assert.Equal(t, int32(0), p.GetPinCount())
		assert.True(t, g.IsEmpty())
		assert.Equal(t, util.InvalidPageID, g.PageID())
		assert.Nil(t, g.GetData())
		assert.False(t, p.IsDirty())
	})

	t.Run("DropIsIdempotent", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		p, err := bp.NewPage()
		require.NoError(t, err)
		id := p.GetPageId()

		g, err := bp.FetchPageBasic(id)
		require.NoError(t, err)
		assert.Equal(t, int32(2), p.GetPinCount())

		g.Drop()
		g.Drop()
		assert.Equal(t, int32(1), p.GetPinCount(), "second drop must not release the caller's pin")
	})

	t.Run("GetDataMutMarksDirty", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		g, err := bp.NewPageGuarded()
		require.NoError(t, err)
		p := &bp.frames[0]

		copy(g.GetDataMut(), "mutated")
		g.Drop()
		assert.True(t, p.IsDirty())
		assert.Equal(t, "mutated", string(p.GetData()[:7]))
	})

	t.Run("MarkDirty", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		g, err := bp.NewPageGuarded()
		require.NoError(t, err)
		g.MarkDirty()
		g.Drop()
		assert.True(t, bp.frames[0].IsDirty())
	})

	t.Run("Move", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		g, err := bp.NewPageGuarded()
		require.NoError(t, err)
		g.MarkDirty()
		p := &bp.frames[0]

		moved := g.Move()
		assert.True(t, g.IsEmpty())
		assert.False(t, moved.IsEmpty())
		assert.Equal(t, p.GetPageId(), moved.PageID())

		g.Drop()
		assert.Equal(t, int32(1), p.GetPinCount(), "moved-from guard owns nothing")

		moved.Drop()
		assert.Equal(t, int32(0), p.GetPinCount())
		assert.True(t, p.IsDirty(), "dirty intent moves with the pin")
	})

	t.Run("Assign", func(t *testing.T) {
		bp, _ := newTestPool(t, 3, 2)
		a, err := bp.NewPageGuarded()
		require.NoError(t, err)
		b, err := bp.NewPageGuarded()
		require.NoError(t, err)
		pa, pb := &bp.frames[0], &bp.frames[1]

		a.Assign(b)
		assert.Equal(t, int32(0), pa.GetPinCount(), "destination released first")
		assert.Equal(t, int32(1), pb.GetPinCount())
		assert.True(t, b.IsEmpty())
		assert.Equal(t, pb.GetPageId(), a.PageID())

		a.Assign(a)
		assert.Equal(t, int32(1), pb.GetPinCount(), "self assignment keeps the pin")

		a.Drop()
		assert.Equal(t, int32(0), pb.GetPinCount())
	})

	t.Run("NilGuard", func(t *testing.T) {
		var g *BasicPageGuard
		assert.NotPanics(t, func() {
			g.Drop()
			g.MarkDirty()
			g.Assign(nil)
		})
		assert.True(t, g.IsEmpty())
		assert.Nil(t, g.GetDataMut())
		assert.Equal(t, util.InvalidPageID, g.PageID())
	})

	t.Run("ReleasedFrameCanBeEvicted", func(t *testing.T) {
		bp, _ := newTestPool(t, 1, 2)
		g, err := bp.NewPageGuarded()
		require.NoError(t, err)

		_, err = bp.NewPageGuarded()
		assert.ErrorIs(t, err, util.ErrNoFreeFrame)

		g.Drop()
		g2, err := bp.NewPageGuarded()
		require.NoError(t, err)
		defer g2.Drop()
		assert.Equal(t, util.PageID(1), g2.PageID())
	})
}

func TestReadPageGuard(t *testing.T) {
	t.Run("SharedLatch", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		p, err := bp.NewPage()
		require.NoError(t, err)
		id := p.GetPageId()
		require.True(t, bp.UnpinPage(id, false))

		r1, err := bp.FetchPageRead(id)
		require.NoError(t, err)
		r2, err := bp.FetchPageRead(id)
		require.NoError(t, err)
		assert.Equal(t, int32(2), p.GetPinCount())
		assert.Equal(t, id, r1.PageID())
		assert.Equal(t, p.GetData(), r2.GetData())

		r1.Drop()
		r1.Drop()
		assert.Equal(t, int32(1), p.GetPinCount())
		r2.Drop()
		assert.Equal(t, int32(0), p.GetPinCount())
		assert.False(t, p.IsDirty())

		// both shared latches are gone
		assert.True(t, p.TryWLatch())
		p.WUnlatch()
	})

	t.Run("MoveAndAssign", func(t *testing.T) {
		bp, _ := newTestPool(t, 3, 2)
		for i := 0; i < 2; i++ {
			p, err := bp.NewPage()
			require.NoError(t, err)
			require.True(t, bp.UnpinPage(p.GetPageId(), false))
		}
		p0, p1 := &bp.frames[0], &bp.frames[1]

		r, err := bp.FetchPageRead(0)
		require.NoError(t, err)
		moved := r.Move()
		r.Drop()
		assert.Equal(t, int32(1), p0.GetPinCount())

		other, err := bp.FetchPageRead(1)
		require.NoError(t, err)
		moved.Assign(other)
		assert.Equal(t, int32(0), p0.GetPinCount())
		assert.True(t, p0.TryWLatch(), "assign released the old latch")
		p0.WUnlatch()
		assert.True(t, other.IsEmpty())
		assert.Equal(t, util.PageID(1), moved.PageID())

		moved.Drop()
		assert.Equal(t, int32(0), p1.GetPinCount())
	})

	t.Run("NilGuard", func(t *testing.T) {
		var g *ReadPageGuard
		assert.NotPanics(t, func() { g.Drop() })
		assert.True(t, g.IsEmpty())
		assert.True(t, g.Move().IsEmpty())
	})
}

func TestWritePageGuard(t *testing.T) {
	t.Run("AlwaysUnpinsDirty", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		p, err := bp.NewPage()
		require.NoError(t, err)
		id := p.GetPageId()
		require.True(t, bp.UnpinPage(id, false))

		w, err := bp.FetchPageWrite(id)
		require.NoError(t, err)
		_ = w.GetData()
		w.Drop()

		assert.True(t, p.IsDirty())
		assert.Equal(t, int32(0), p.GetPinCount())

		assert.True(t, bp.FlushPage(id))
		assert.False(t, p.IsDirty())
	})

	t.Run("ExcludesReaders", func(t *testing.T) {
		bp, _ := newTestPool(t, 2, 2)
		g, err := bp.NewPageGuarded()
		require.NoError(t, err)
		id := g.PageID()
		g.Drop()

		w, err := bp.FetchPageWrite(id)
		require.NoError(t, err)
		copy(w.GetDataMut(), "v2")

		done := make(chan string)
		go func() {
			r, err := bp.FetchPageRead(id)
			if err != nil {
				done <- err.Error()
				return
			}
			defer r.Drop()
			done <- string(r.GetData()[:2])
		}()

		select {
		case <-done:
			t.Fatal("reader got in while the write latch was held")
		case <-time.After(50 * time.Millisecond):
		}

		w.Drop()
		select {
		case got := <-done:
			assert.Equal(t, "v2", got)
		case <-time.After(2 * time.Second):
			t.Fatal("reader never acquired the latch")
		}
	})

	t.Run("MoveAndAssign", func(t *testing.T) {
		bp, _ := newTestPool(t, 3, 2)
		for i := 0; i < 2; i++ {
			p, err := bp.NewPage()
			require.NoError(t, err)
			require.True(t, bp.UnpinPage(p.GetPageId(), false))
		}
		p0, p1 := &bp.frames[0], &bp.frames[1]

		w, err := bp.FetchPageWrite(0)
		require.NoError(t, err)
		moved := w.Move()
		w.Drop()
		assert.Equal(t, int32(1), p0.GetPinCount())
		assert.False(t, p0.IsDirty(), "empty guard drop does nothing")

		other, err := bp.FetchPageWrite(1)
		require.NoError(t, err)
		moved.Assign(other)
		assert.Equal(t, int32(0), p0.GetPinCount())
		assert.True(t, p0.IsDirty())
		assert.True(t, p0.TryRLatch(), "assign released the old latch")
		p0.RUnlatch()

		moved.Drop()
		moved.Drop()
		assert.Equal(t, int32(0), p1.GetPinCount())
		assert.True(t, p1.IsDirty())
	})

	t.Run("NilGuard", func(t *testing.T) {
		var g *WritePageGuard
		assert.NotPanics(t, func() {
			g.Drop()
			g.Assign(nil)
		})
		assert.True(t, g.IsEmpty())
		assert.Nil(t, g.GetDataMut())
	})
}
