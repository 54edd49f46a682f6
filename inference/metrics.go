package inference

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentperf_predictions_total",
			Help: "Total number of predictions by cluster label",
		},
		[]string{"label", "cached"},
	)

	PredictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentperf_prediction_errors_total",
			Help: "Total number of failed predictions",
		},
		[]string{"stage"}, // stage: encode|predict|history
	)

	PredictionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studentperf_prediction_latency_seconds",
			Help:    "Time spent encoding and classifying one record",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	UnknownClusters = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studentperf_unknown_clusters_total",
			Help: "Predictions whose cluster id has no label in the artifact",
		},
	)
)

func init() {
	prometheus.MustRegister(Predictions)
	prometheus.MustRegister(PredictionErrors)
	prometheus.MustRegister(PredictionLatency)
	prometheus.MustRegister(UnknownClusters)
}
