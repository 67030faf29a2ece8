// Package host implements the file-resolution capability the external
// compiler is handed: existence checks, reads, and directory queries backed
// by the virtual file store, with an optional fallback to the real file
// system for externally resolved dependencies.
package host

import (
	"log/slog"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	errs "git.home.luguber.info/inful/incrbuild/internal/errors"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

// probeCacheSize bounds the memoized real-FS stat results. External
// resolution probes the same node_modules-style directories repeatedly, so
// a small bounded cache removes most syscalls without growing with project
// size.
const probeCacheSize = 4096

// Adapter satisfies toolchain.Host over a vfs.Store. When external
// resolution is enabled, misses fall through to the real file system and
// successful reads are memoized as ExternalFiles. The adapter is scoped to
// one build cycle and is not safe for concurrent use.
type Adapter struct {
	store         *vfs.Store
	allowExternal bool
	probes        *lru.Cache[string, bool]
	logger        *slog.Logger
}

// New creates an adapter over store. allowExternal enables the real-FS
// fallback; disabling it forces the caller to supply a closed file set.
func New(store *vfs.Store, allowExternal bool) *Adapter {
	probes, _ := lru.New[string, bool](probeCacheSize)
	return &Adapter{
		store:         store,
		allowExternal: allowExternal,
		probes:        probes,
		logger:        slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (a *Adapter) WithLogger(logger *slog.Logger) *Adapter {
	a.logger = logger
	return a
}

// FileExists reports whether path is an input, a cached external file, or
// (with external resolution) a real file on disk.
func (a *Adapter) FileExists(path string) bool {
	if a.store.Has(path) {
		return true
	}
	if !a.allowExternal {
		return false
	}
	return a.statFile(path)
}

// ReadFile returns the file's content. Externally resolved reads are cached
// in the store so repeated resolution of the same dependency is free.
func (a *Adapter) ReadFile(path string) (string, error) {
	if contents, ok := a.store.Contents(path); ok {
		return contents, nil
	}
	if !a.allowExternal {
		return "", errs.Resolution(path, os.ErrNotExist)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Resolution(path, err)
	}
	contents := string(data)
	a.store.AddExternal(path, contents)
	a.logger.Debug("Resolved external file", "path", path, "bytes", len(data))
	return contents, nil
}

// DirectoryExists reports whether any known file has dir as a strict path
// prefix, or (with external resolution) the real file system has the
// directory.
func (a *Adapter) DirectoryExists(path string) bool {
	if a.store.HasDirectory(path) {
		return true
	}
	if !a.allowExternal {
		return false
	}
	return a.statDir(path)
}

func (a *Adapter) statFile(path string) bool {
	key := "f:" + path
	if hit, ok := a.probes.Get(key); ok {
		return hit
	}
	info, err := os.Stat(path)
	exists := err == nil && !info.IsDir()
	a.probes.Add(key, exists)
	return exists
}

func (a *Adapter) statDir(path string) bool {
	key := "d:" + path
	if hit, ok := a.probes.Get(key); ok {
		return hit
	}
	info, err := os.Stat(path)
	exists := err == nil && info.IsDir()
	a.probes.Add(key, exists)
	return exists
}
