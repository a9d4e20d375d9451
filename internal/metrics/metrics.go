// Package metrics exposes Prometheus counters and histograms for the
// experiment runner: completed runs, kernel timings, error magnitudes, and
// detections of NaN/Inf or non-convergence.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpstudy_runs_total",
		Help: "Total number of experiment runs completed",
	}, []string{"algo", "precision"})

	KernelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fpstudy_kernel_duration_seconds",
		Help:    "Histogram of kernel execution times",
		Buckets: prometheus.DefBuckets,
	}, []string{"algo", "precision"})

	RelativeError = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fpstudy_relative_error",
		Help:    "Distribution of relative error against the float64 reference",
		Buckets: []float64{1e-15, 1e-12, 1e-9, 1e-6, 1e-4, 1e-3, 1e-2, 1e-1, 1, 10},
	}, []string{"algo", "precision"})

	NumericalInstability = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpstudy_numerical_instability_total",
		Help: "Total number of NaN/Inf values detected in run outputs",
	}, []string{"algo", "type"})

	NonConverged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpstudy_non_converged_total",
		Help: "Total number of iterative runs that failed to converge",
	}, []string{"algo", "precision"})
)

// RecordRun records one completed run's timing and accuracy.
func RecordRun(algo, precision string, relErr float64, elapsed time.Duration) {
	RunsTotal.WithLabelValues(algo, precision).Inc()
	KernelDuration.WithLabelValues(algo, precision).Observe(elapsed.Seconds())
	RelativeError.WithLabelValues(algo, precision).Observe(relErr)
}

// RecordInstability records NaN and Inf counts found in a run's output.
func RecordInstability(algo string, nanCount, infCount int) {
	if nanCount > 0 {
		NumericalInstability.WithLabelValues(algo, "nan").Add(float64(nanCount))
	}
	if infCount > 0 {
		NumericalInstability.WithLabelValues(algo, "inf").Add(float64(infCount))
	}
}

// RecordNonConverged records an iterative run that hit its iteration cap or
// a zero derivative.
func RecordNonConverged(algo, precision string) {
	NonConverged.WithLabelValues(algo, precision).Inc()
}
