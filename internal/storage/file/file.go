package file

import (
	"os"
	"sync"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/pkg/errors"
)

/**
* This module is used to read and write data from / to disk
* we will map the file to memory in disk that facilitate accessility to disk
**/
type FileManager struct {
	File    *os.File
	Data    []byte
	Size    int64
	mapping uintptr // windows mapping handle, unused elsewhere

	mu sync.RWMutex
}

func NewFileManager(path string, initialPages int) (*FileManager, error) {
	if initialPages <= 0 {
		return nil, util.ErrInvalidInitialPages
	}

	initialSize := int64(initialPages) * int64(util.PageSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	// never shrink an existing data file
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat file")
	}
	if stat.Size() > initialSize {
		initialSize = stat.Size()
	}

	fm := &FileManager{File: f}

	if err := mmap(fm, initialSize); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "map file fail")
	}

	return fm, nil
}

// maxMappedPages is the number of pages that fit in MaxMapSize.
const maxMappedPages = util.MaxMapSize / util.PageSize

// checkMappedPage also rejects ids whose offset lies beyond the mapping
// limit, before the offset is computed.
func checkMappedPage(pageId util.PageID, buf []byte) error {
	if err := checkPageArgs(pageId, buf); err != nil {
		return err
	}
	if pageId >= maxMappedPages {
		return util.ErrInvalidPageId
	}
	return nil
}

/* READ FILE */
func (fm *FileManager) ReadPage(pageId util.PageID, buf []byte) error {
	if err := checkMappedPage(pageId, buf); err != nil {
		return err
	}

	fm.mu.RLock()
	defer fm.mu.RUnlock()

	if fm.Data == nil {
		return util.ErrFileClosed
	}

	offset := int64(pageId) * int64(util.PageSize)
	if offset+util.PageSize > fm.Size {
		// never written
		clear(buf)
		return nil
	}

	copy(buf, fm.Data[offset:offset+int64(util.PageSize)])
	return nil
}

/* WRITE FILE */
func (fm *FileManager) WritePage(pageId util.PageID, buf []byte) error {
	if err := checkMappedPage(pageId, buf); err != nil {
		return err
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.Data == nil {
		return util.ErrFileClosed
	}

	offset := int64(pageId) * int64(util.PageSize)
	if offset+int64(util.PageSize) > fm.Size {
		newSize := max(fm.Size*2, offset+int64(util.PageSize))
		if newSize > util.MaxMapSize {
			return util.ErrMaxMapSizeExceeded
		}

		if err := munmap(fm); err != nil {
			return errors.Wrap(err, "[WritePage] unmap file fail")
		}

		if err := mmap(fm, newSize); err != nil {
			return errors.Wrap(err, "[WritePage] map file fail")
		}
	}

	copy(fm.Data[offset:], buf)
	return nil
}

// Sync flushes the mapping to the underlying file.
func (fm *FileManager) Sync() error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.Data == nil {
		return util.ErrFileClosed
	}
	return msync(fm)
}

/**
* CLOSE FUNCTION
**/
func (fm *FileManager) Close() error {
	if fm == nil {
		return nil // Idempotent
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.File == nil {
		return nil
	}

	var err error
	if fm.Data != nil {
		if e := msync(fm); e != nil {
			err = errors.Wrap(e, "sync mapping")
		}
	}
	if e := munmap(fm); e != nil {
		return errors.Wrap(e, "[close] unmap file fail")
	}

	if e := fm.File.Sync(); e != nil && err == nil {
		err = errors.Wrap(e, "sync file")
	}
	if e := fm.File.Close(); e != nil && err == nil {
		err = errors.Wrap(e, "close file")
	}
	fm.File = nil
	return err
}
