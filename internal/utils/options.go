package util

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options represents database configuration options
type Options struct {
	Path           string
	Backend        Backend
	BufferPoolSize int
	ReplacerK      int
	ReplacerPolicy ReplacerPolicy
	InitialPages   int
	SyncWrites     bool
	LogLevel       string

	// Logger overrides the logger built from LogLevel.
	Logger *logrus.Logger
}

// DefaultOptions returns default database options
func DefaultOptions() Options {
	return Options{
		Path:           "arraydb.dat",
		Backend:        BackendMmap,
		BufferPoolSize: 1000, // 4MB default buffer pool
		ReplacerK:      2,
		ReplacerPolicy: PolicyLRUK,
		InitialPages:   16,
		SyncWrites:     false,
		LogLevel:       "info",
	}
}

// LoadOptions reads a TOML file on top of DefaultOptions. Keys live under
// the [storage] and [buffer] tables; absent keys keep their defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	tree, err := toml.LoadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "load config %s", path)
	}

	if v, ok := tree.Get("storage.path").(string); ok {
		opts.Path = v
	}
	if v, ok := tree.Get("storage.backend").(string); ok {
		opts.Backend = Backend(v)
	}
	if v, ok := tree.Get("storage.initial_pages").(int64); ok {
		opts.InitialPages = int(v)
	}
	if v, ok := tree.Get("storage.sync_writes").(bool); ok {
		opts.SyncWrites = v
	}
	if v, ok := tree.Get("buffer.pool_size").(int64); ok {
		opts.BufferPoolSize = int(v)
	}
	if v, ok := tree.Get("buffer.replacer_k").(int64); ok {
		opts.ReplacerK = int(v)
	}
	if v, ok := tree.Get("buffer.policy").(string); ok {
		opts.ReplacerPolicy = ReplacerPolicy(v)
	}
	if v, ok := tree.Get("log.level").(string); ok {
		opts.LogLevel = v
	}

	if err := opts.Validate(); err != nil {
		return opts, errors.Wrapf(err, "config %s", path)
	}
	return opts, nil
}

func (o Options) Validate() error {
	if o.BufferPoolSize <= 0 {
		return ErrInvalidPoolSize
	}
	if o.ReplacerK <= 0 {
		return ErrInvalidReplacerK
	}
	switch o.ReplacerPolicy {
	case PolicyLRUK, PolicyLRU, PolicyClock:
	default:
		return errors.Wrapf(ErrUnknownPolicy, "%q", o.ReplacerPolicy)
	}
	switch o.Backend {
	case BackendMmap, BackendLevelDB, BackendMemory:
	default:
		return errors.Wrapf(ErrUnknownBackend, "%q", o.Backend)
	}
	if o.Backend != BackendMemory && o.InitialPages <= 0 {
		return ErrInvalidInitialPages
	}
	return nil
}

// Log returns the configured logger, building one from LogLevel if needed.
func (o Options) Log() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return NewLogger(o.LogLevel)
}
