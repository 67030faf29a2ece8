package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	builds      prom.Counter
	replays     prom.Counter
	emptyCycles prom.Counter
	artifacts   *prom.CounterVec
	diagnostics *prom.CounterVec
}

// NewPrometheusRecorder registers the orchestrator's collectors on reg and
// returns a recorder bound to them.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		builds: prom.NewCounter(prom.CounterOpts{
			Name: "incrbuild_builds_total",
			Help: "Full recompilation cycles.",
		}),
		replays: prom.NewCounter(prom.CounterOpts{
			Name: "incrbuild_replays_total",
			Help: "Cycles served from the compilation cache.",
		}),
		emptyCycles: prom.NewCounter(prom.CounterOpts{
			Name: "incrbuild_empty_cycles_total",
			Help: "Cycles finalized with no input files.",
		}),
		artifacts: prom.NewCounterVec(prom.CounterOpts{
			Name: "incrbuild_artifacts_written_total",
			Help: "Output files written, by kind.",
		}, []string{"kind"}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Name: "incrbuild_diagnostics_total",
			Help: "Compiler diagnostics reported, by severity.",
		}, []string{"severity"}),
	}
	reg.MustRegister(r.builds, r.replays, r.emptyCycles, r.artifacts, r.diagnostics)
	return r
}

func (r *PrometheusRecorder) BuildStarted() { r.builds.Inc() }
func (r *PrometheusRecorder) ReplayServed() { r.replays.Inc() }
func (r *PrometheusRecorder) EmptyCycle()   { r.emptyCycles.Inc() }

func (r *PrometheusRecorder) ArtifactWritten(kind string) {
	r.artifacts.WithLabelValues(kind).Inc()
}

func (r *PrometheusRecorder) DiagnosticReported(severity string) {
	r.diagnostics.WithLabelValues(severity).Inc()
}

// HTTPHandler serves the registry's metrics over HTTP.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
