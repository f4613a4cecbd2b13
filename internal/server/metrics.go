package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generateRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codegenius_generate_requests_total",
		Help: "Total number of documentation generation requests by outcome.",
	}, []string{"outcome"})

	generateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "codegenius_generate_seconds",
		Help:    "Time spent generating documentation for a repository.",
		Buckets: prometheus.DefBuckets,
	})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codegenius_graph_nodes_total",
		Help: "Number of nodes in the most recently built graph.",
	})

	graphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codegenius_graph_edges_total",
		Help: "Number of edges in the most recently built graph.",
	})
)
