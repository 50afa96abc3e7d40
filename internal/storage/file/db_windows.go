//go:build windows

package file

import (
	"os"
	"syscall"
	"unsafe"

	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/pkg/errors"
)

// Base on: https://github.com/etcd-io/bbolt/blob/main/bolt_windows.go

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
	sizehi := uint32(size >> 32)
	sizelo := uint32(size)
	h, err := syscall.CreateFileMapping(syscall.Handle(fm.File.Fd()), nil, syscall.PAGE_READWRITE, sizehi, sizelo, nil)
	if err != nil {
		return errors.Wrap(err, "create mapping")
	}
	ptr, err := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		if err := syscall.CloseHandle(h); err != nil {
			return os.NewSyscallError("CloseHandle", err)
		}
		return errors.Wrap(err, "map view")
	}
	fm.Data = unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	fm.Size = size
	fm.mapping = uintptr(h)
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

	addr := uintptr(unsafe.Pointer(&fm.Data[0]))
	var err error
	if e := syscall.UnmapViewOfFile(addr); e != nil {
		err = errors.Wrap(e, "unmap")
	}
	if e := syscall.CloseHandle(syscall.Handle(fm.mapping)); e != nil && err == nil {
		err = os.NewSyscallError("CloseHandle", e)
	}

	fm.Data = nil
	fm.Size = 0
	fm.mapping = 0
	return err
}

func msync(fm *FileManager) error {
	addr := uintptr(unsafe.Pointer(&fm.Data[0]))
	if err := syscall.FlushViewOfFile(addr, uintptr(len(fm.Data))); err != nil {
		return errors.Wrap(err, "flush view")
	}
	return nil
}
