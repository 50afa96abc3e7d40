//go:build !windows

package file

import (
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func mmap(fm *FileManager, size int64) error {
	if fm.File == nil {
		return util.ErrFileManagerNil
	}
	if size <= 0 {
		return util.ErrInvalidInitialPages
	}
	if size > util.MaxMapSize {
		return util.ErrMaxMapSizeExceeded
	}

	if err := fm.File.Truncate(size); err != nil {
		return errors.Wrapf(err, "truncate to %d", size)
	}

	data, err := unix.Mmap(int(fm.File.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return errors.Wrap(err, "mmap")
	}
	fm.Data = data
	fm.Size = size
	return nil
}

// munmap unmaps a pointer from a file.
func munmap(fm *FileManager) error {
	if fm.File == nil {
		return util.ErrFileManagerNil
	}

	if fm.Data == nil {
		return nil
	}

	err := unix.Munmap(fm.Data)
	fm.Data = nil
	fm.Size = 0
	if err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

func msync(fm *FileManager) error {
	if err := unix.Msync(fm.Data, unix.MS_SYNC); err != nil {
		return errors.Wrap(err, "msync")
	}
	return nil
}
