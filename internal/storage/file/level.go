package file

import (
	"encoding/binary"
	"sync"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelManager stores each page as one LevelDB value keyed by the
// big-endian page id.
type LevelManager struct {
	mu   sync.RWMutex
	db   *leveldb.DB
	wopt *opt.WriteOptions
}

func NewLevelManager(dir string, syncWrites bool) (*LevelManager, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", dir)
	}
	return &LevelManager{
		db:   db,
		wopt: &opt.WriteOptions{Sync: syncWrites},
	}, nil
}

func pageKey(pageId util.PageID) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(pageId))
	return key[:]
}

func (lm *LevelManager) ReadPage(pageId util.PageID, buf []byte) error {
	if err := checkPageArgs(pageId, buf); err != nil {
		return err
	}

	lm.mu.RLock()
	defer lm.mu.RUnlock()
	if lm.db == nil {
		return util.ErrFileClosed
	}

	data, err := lm.db.Get(pageKey(pageId), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		clear(buf)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read page %d", pageId)
	}
	if len(data) != util.PageSize {
		return errors.Wrapf(util.ErrInvalidPageSize, "page %d holds %d bytes", pageId, len(data))
	}
	copy(buf, data)
	return nil
}

func (lm *LevelManager) WritePage(pageId util.PageID, buf []byte) error {
	if err := checkPageArgs(pageId, buf); err != nil {
		return err
	}

	lm.mu.RLock()
	defer lm.mu.RUnlock()
	if lm.db == nil {
		return util.ErrFileClosed
	}

	if err := lm.db.Put(pageKey(pageId), buf, lm.wopt); err != nil {
		return errors.Wrapf(err, "write page %d", pageId)
	}
	return nil
}

// Sync is a no-op; durability follows the SyncWrites option.
func (lm *LevelManager) Sync() error {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	if lm.db == nil {
		return util.ErrFileClosed
	}
	return nil
}

func (lm *LevelManager) Close() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.db == nil {
		return nil
	}
	err := lm.db.Close()
	lm.db = nil
	return err
}
