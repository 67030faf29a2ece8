package project

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/incrbuild/internal/cache"
	"git.home.luguber.info/inful/incrbuild/internal/emit"
	errs "git.home.luguber.info/inful/incrbuild/internal/errors"
	"git.home.luguber.info/inful/incrbuild/internal/host"
	"git.home.luguber.info/inful/incrbuild/internal/pipeline"
	"git.home.luguber.info/inful/incrbuild/internal/toolchain"
)

// Compile runs one build cycle against the given sinks. It finalizes
// immediately when the input set is empty, replays the cached result when
// nothing changed, and otherwise drives the toolchain and emits the fresh
// artifacts. Diagnostics flow through the error callback and never fail the
// cycle; only environment failures return an error.
func (p *Project) Compile(sink, declarationSink pipeline.Sink) error {
	cycleID := uuid.NewString()[:8]
	logger := p.logger.With("cycle", cycleID)

	// Empty root set: a distinct terminal condition, not a cache replay.
	if p.store.Len() == 0 {
		logger.Info("No input files, finalizing without compilation")
		p.recorder.EmptyCycle()
		p.lastInputs = map[string]string{}
		return nil
	}

	emitter := emit.NewEmitter(sink, declarationSink,
		p.cfg.Compiler.Declarations, p.cfg.Compiler.SortOutput).
		WithLogger(logger).
		WithRecorder(p.recorder)

	if !p.isChanged() && p.cached != nil {
		logger.Info("Input set unchanged, replaying cached build",
			"files", p.store.Len(), "outputs", p.cached.Len())
		p.recorder.ReplayServed()
		p.forwardDiagnostics(p.cached.Diagnostics())
		return emitter.Replay(p.cached)
	}

	logger.Info("Input set changed, invoking compiler", "files", p.store.Len())
	p.recorder.BuildStarted()

	roots := p.rootList()
	adapter := host.New(p.store, !p.cfg.Compiler.NoExternalResolve).WithLogger(logger)

	program, err := p.tc.CreateProgram(roots, p.cfg.Compiler.Options, adapter)
	if err != nil {
		wrapped := errs.Internal("create program", err)
		p.errFn(wrapped)
		return fmt.Errorf("create program: %w", err)
	}

	diagnostics := program.Diagnostics()
	p.forwardDiagnostics(diagnostics)

	artifacts, err := program.Emit()
	if err != nil {
		// Host read failures arrive pre-classified; anything else is an
		// orchestration defect.
		if errs.IsResolution(err) {
			p.errFn(err)
		} else {
			p.errFn(errs.Internal("program emit", err))
		}
		return fmt.Errorf("emit: %w", err)
	}

	builder := cache.NewBuilder()
	for _, d := range diagnostics {
		builder.AddDiagnostic(d)
	}

	if p.shouldEmit(diagnostics) {
		if err := emitter.Emit(artifacts, p.store, builder); err != nil {
			return fmt.Errorf("write outputs: %w", err)
		}
	} else {
		logger.Warn("Suppressing emission due to error diagnostics",
			"diagnostics", len(diagnostics))
	}

	p.cached = builder.Seal()
	p.lastInputs = p.store.Snapshot()
	logger.Info("Build cycle complete",
		"diagnostics", len(diagnostics), "outputs", p.cached.Len())
	return nil
}

// rootList computes the effective root file list: every input path, passed
// through the optional root filter, in stable order.
func (p *Project) rootList() []string {
	paths := p.store.InputPaths()
	sort.Strings(paths)
	if len(p.cfg.Compiler.RootFilter) == 0 {
		return paths
	}
	filtered := paths[:0]
	for _, path := range paths {
		if p.cfg.Compiler.MatchesRootFilter(path) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}

// forwardDiagnostics hands diagnostics to the error callback one at a time,
// preserving partial-success semantics.
func (p *Project) forwardDiagnostics(diagnostics []toolchain.Diagnostic) {
	for _, d := range diagnostics {
		p.recorder.DiagnosticReported(d.Severity.String())
		p.errFn(errs.FromDiagnostic(d))
	}
}

// shouldEmit applies the emit-on-error policy: with emit_on_error disabled,
// any error-severity diagnostic suppresses the cycle's artifact writing.
func (p *Project) shouldEmit(diagnostics []toolchain.Diagnostic) bool {
	if p.cfg.Compiler.ShouldEmitOnError() {
		return true
	}
	for _, d := range diagnostics {
		if d.Severity == toolchain.SeverityError {
			return false
		}
	}
	return true
}
