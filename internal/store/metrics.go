package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filterCompileCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlmdq",
		Name:      "filter_compile_total",
		Help:      "The total number of filters compiled to SQL, by record kind.",
	}, []string{"kind"})

	filterCacheHitCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlmdq",
		Name:      "filter_cache_hit_total",
		Help:      "The total number of filter compilations served from the cache, by record kind.",
	}, []string{"kind"})

	filterCompileErrorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlmdq",
		Name:      "filter_compile_error_total",
		Help:      "The total number of filters rejected during resolution or compilation, by record kind.",
	}, []string{"kind"})
)
