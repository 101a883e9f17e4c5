package lock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// lockOperations counts lock operations by operation and result
	lockOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenderscore_lock_operations_total",
		Help: "Total lock operations by operation and result",
	}, []string{"operation", "result"})

	// lockEvictions counts stale locks removed while listing
	lockEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderscore_lock_evictions_total",
		Help: "Total stale locks evicted",
	})
)
