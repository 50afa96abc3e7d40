package file

import (
	utils "github.com/bietkhonhungvandi212/array-db/internal/utils"
)

// DiskManager is the page store behind the buffer pool. Both calls move
// exactly utils.PageSize bytes. Reading a page that was never written
// yields zeroes.
type DiskManager interface {
	ReadPage(pageId utils.PageID, buf []byte) error
	WritePage(pageId utils.PageID, buf []byte) error
}

// Closer is implemented by backends that hold OS resources.
type Closer interface {
	Sync() error
	Close() error
}

func checkPageArgs(pageId utils.PageID, buf []byte) error {
	if pageId < 0 {
		return utils.ErrInvalidPageId
	}
	if len(buf) != utils.PageSize {
		return utils.ErrInvalidPageSize
	}
	return nil
}
