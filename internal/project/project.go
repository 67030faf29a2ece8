// Package project holds the per-build aggregate: the input set for the
// current cycle, the previous cycle's cached result, and the orchestration
// that decides between replay and recompilation. A Project is reset and
// reused serially across watch iterations, never concurrently.
package project

import (
	"log/slog"

	"git.home.luguber.info/inful/incrbuild/internal/cache"
	"git.home.luguber.info/inful/incrbuild/internal/config"
	"git.home.luguber.info/inful/incrbuild/internal/metrics"
	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

// Project owns one serial sequence of build cycles.
type Project struct {
	cfg   *config.Config
	tc    toolchain.Toolchain
	store *vfs.Store

	// lastInputs is the previous cycle's input snapshot (path → contents);
	// cached is that cycle's sealed result. Both survive Reset.
	lastInputs map[string]string
	cached     *cache.Result

	logger   *slog.Logger
	recorder metrics.Recorder
	errFn    pipeline.ErrorFunc
}

func New(cfg *config.Config, tc toolchain.Toolchain) *Project {
	return &Project{
		cfg:      cfg,
		tc:       tc,
		store:    vfs.NewStore(),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		errFn:    func(error) {},
	}
}

// WithLogger sets a custom logger.
func (p *Project) WithLogger(logger *slog.Logger) *Project {
	p.logger = logger
	return p
}

// WithRecorder sets a metrics recorder.
func (p *Project) WithRecorder(r metrics.Recorder) *Project {
	p.recorder = r
	return p
}

// WithErrorFunc sets the callback receiving diagnostics and resolution
// failures, one at a time.
func (p *Project) WithErrorFunc(fn pipeline.ErrorFunc) *Project {
	p.errFn = fn
	return p
}

// AddFile registers a pipeline-supplied input file for the current cycle.
func (p *Project) AddFile(f *pipeline.File) {
	p.store.Add(f.Path, f.Contents, f)
}

// Reset clears the current cycle's input and external files. The cached
// result captured before the reset remains the one used for replay.
func (p *Project) Reset() {
	p.store.Reset()
}

// Store exposes the virtual file store, mainly for tests and embedding
// hosts that inspect the input set.
func (p *Project) Store() *vfs.Store {
	return p.store
}

// Cached returns the previous cycle's sealed result, if any.
func (p *Project) Cached() *cache.Result {
	return p.cached
}
