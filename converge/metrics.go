package converge

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"isc.org/keaconverge/datamodel/daemonname"
)

// Namespace of the convergence metrics.
const metricsNamespace = "kea_converge"

// Results of the convergence run used as the metric label values.
const (
	RunResultSuccess     = "success"
	RunResultInvalid     = "invalid"
	RunResultCheckFailed = "check_failed"
	RunResultFailure     = "failure"
)

// Convergence metrics. They are registered in a dedicated registry and
// written to a text file consumed by the node exporter's textfile
// collector.
type Metrics struct {
	Registry         *prometheus.Registry
	Runs             *prometheus.CounterVec
	FilesWritten     *prometheus.CounterVec
	FilesRemoved     *prometheus.CounterVec
	Reloads          *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
	LastRunDuration  prometheus.Gauge
	LastRunSuccess   prometheus.Gauge
}

// Creates the metrics in a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Convergence runs by result",
		}, []string{"result"}),
		FilesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_written_total",
			Help:      "Configuration files written",
		}, []string{"daemon"}),
		FilesRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_removed_total",
			Help:      "Stale configuration files removed",
		}, []string{"daemon"}),
		Reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reloads_total",
			Help:      "Configuration reloads requested from the daemons",
		}, []string{"daemon", "result"}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Time of the last convergence run",
		}),
		LastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last convergence run",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_success",
			Help:      "Whether the last convergence run succeeded",
		}),
	}
}

// Records the result of the daemon convergence.
func (m *Metrics) observeDaemon(result *DaemonResult) {
	daemon := string(result.Daemon)
	m.FilesWritten.WithLabelValues(daemon).Add(float64(len(result.Written)))
	m.FilesRemoved.WithLabelValues(daemon).Add(float64(len(result.Removed)))
}

// Records the reload result of the daemon.
func (m *Metrics) observeReload(daemon daemonname.Name, err error) {
	result := RunResultSuccess
	if err != nil {
		result = RunResultFailure
	}
	m.Reloads.WithLabelValues(string(daemon), result).Inc()
}

// Writes the metrics to the file in the Prometheus text format. The file
// is replaced atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Wrapf(err, "cannot write the metrics to %s", path)
	}
	return nil
}
