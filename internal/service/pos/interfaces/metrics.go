package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_settlements_total",
		Help: "Number of successfully settled sales.",
	})
	settlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_settlement_duration_seconds",
		Help:    "Wall time of settlement requests.",
		Buckets: prometheus.DefBuckets,
	})
	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_rejections_total",
		Help: "Business-rule rejections by error kind.",
	}, []string{"kind"})
)
