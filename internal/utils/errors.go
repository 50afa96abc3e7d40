package util

import "errors"

var (
	ErrInvalidPageId       = errors.New("invalid page id")
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrInvalidInitialPages = errors.New("initial pages must be positive")
	ErrMaxMapSizeExceeded  = errors.New("initial size exceeds maximum mapping size")
	ErrFileManagerNil      = errors.New("file manager is nil")
	ErrFileClosed          = errors.New("file manager is closed")
	ErrInvalidPoolSize     = errors.New("invalid pool size")
	ErrInvalidReplacerK    = errors.New("replacer k must be positive")
	ErrUnknownPolicy       = errors.New("unknown replacer policy")
	ErrUnknownBackend      = errors.New("unknown disk backend")
	ErrOutBoundOfFrame     = errors.New("frame idx out of bound")
	ErrInvalidEviction     = errors.New("invalid eviction")
	ErrNoFreeFrame         = errors.New("no free frames")
	ErrFlushFailed         = errors.New("failed to flush dirty page")
)
