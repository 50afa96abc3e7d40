package file

import (
	util "github.com/bietkhonhungvandi212/array-db/internal/utils"
	"github.com/pkg/errors"
)

// Store is a DiskManager that also owns OS resources.
type Store interface {
	DiskManager
	Closer
}

// Open builds the backend named by opts.Backend.
func Open(opts util.Options) (Store, error) {
	switch opts.Backend {
	case util.BackendMmap:
		fm, err := NewFileManager(opts.Path, opts.InitialPages)
		if err != nil {
			return nil, err
		}
		return fm, nil
	case util.BackendLevelDB:
		lm, err := NewLevelManager(opts.Path, opts.SyncWrites)
		if err != nil {
			return nil, err
		}
		return lm, nil
	case util.BackendMemory:
		return NewMemoryManager(), nil
	default:
		return nil, errors.Wrapf(util.ErrUnknownBackend, "%q", opts.Backend)
	}
}
