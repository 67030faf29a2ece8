// Package metrics records build orchestration metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics impose no overhead and no nil checks unless a
// real implementation is wired in (the Prometheus recorder, activated by
// the watch command's --metrics-addr flag).
package metrics

// Recorder observes orchestrator events.
type Recorder interface {
	// BuildStarted counts a full recompilation cycle.
	BuildStarted()
	// ReplayServed counts a cycle satisfied from the compilation cache.
	ReplayServed()
	// EmptyCycle counts a cycle finalized with no input files.
	EmptyCycle()
	// ArtifactWritten counts one output file by kind ("compiled",
	// "sourcemap", "declaration").
	ArtifactWritten(kind string)
	// DiagnosticReported counts one compiler diagnostic by severity.
	DiagnosticReported(severity string)
}

// NoopRecorder is the default Recorder; every method is a no-op.
type NoopRecorder struct{}

func (NoopRecorder) BuildStarted()             {}
func (NoopRecorder) ReplayServed()             {}
func (NoopRecorder) EmptyCycle()               {}
func (NoopRecorder) ArtifactWritten(string)    {}
func (NoopRecorder) DiagnosticReported(string) {}
