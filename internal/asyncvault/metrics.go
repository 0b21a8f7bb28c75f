package asyncvault

import "github.com/prometheus/client_golang/prometheus"

// lockMetrics tracks how often the read-fast-path (a non-blocking directory
// read-lock acquire) succeeds versus falls back to the fully dispatched
// path. Its counter/histogram vectors are pre-registered once at startup;
// nothing in this package records into waitSeconds, so that histogram
// stays empty.
type lockMetrics struct {
	fastPathHits   *prometheus.CounterVec
	fastPathMisses *prometheus.CounterVec
	waitSeconds    *prometheus.HistogramVec
}

func newLockMetrics(reg prometheus.Registerer) *lockMetrics {
	m := &lockMetrics{
		fastPathHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptovaultfs",
			Subsystem: "lock",
			Name:      "fast_path_hits_total",
			Help:      "Async operations that took the non-blocking read-lock fast path, by resource class.",
		}, []string{"resource"}),
		fastPathMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptovaultfs",
			Subsystem: "lock",
			Name:      "fast_path_misses_total",
			Help:      "Async operations that fell back to the dispatched path because the fast-path lock was contended.",
		}, []string{"resource"}),
		waitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cryptovaultfs",
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for a lock on the dispatched (non-fast-path) path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
	}
	if reg != nil {
		reg.MustRegister(m.fastPathHits, m.fastPathMisses, m.waitSeconds)
	}
	return m
}
