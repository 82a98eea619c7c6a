package services

import "github.com/prometheus/client_golang/prometheus"

var (
	pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_pipeline_runs_total",
			Help: "Total number of network pipeline runs by result.",
		},
		[]string{"result"},
	)
	qualityAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_data_quality_anomalies_total",
			Help: "Data-quality anomalies absorbed by the pipeline, by kind.",
		},
		[]string{"kind"},
	)
	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "network_snapshot_cache_requests_total",
			Help: "Snapshot cache lookups by result.",
		},
		[]string{"result"},
	)
	lastCollaborations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "network_snapshot_collaborations",
			Help: "Number of collaboration records in the most recently built snapshot.",
		},
	)
)

func init() {
	prometheus.MustRegister(pipelineRuns, qualityAnomalies, cacheRequests, lastCollaborations)
}
