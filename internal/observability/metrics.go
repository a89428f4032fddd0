package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	pipelineRunsTotal      *prometheus.CounterVec
	pipelineStageSeconds   *prometheus.HistogramVec
	researchLookupsTotal   *prometheus.CounterVec
	deliveryAttemptsTotal  *prometheus.CounterVec
	extractionTiersTotal   *prometheus.CounterVec
	documentsRenderedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cheatwell_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 60.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		pipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_pipeline_runs_total",
			Help: "Assignment pipeline executions by outcome.",
		}, []string{"outcome"})

		pipelineStageSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cheatwell_pipeline_stage_seconds",
			Help:    "Duration of individual pipeline stages.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}, []string{"stage"})

		researchLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_research_lookups_total",
			Help: "Web research lookups by cache result.",
		}, []string{"result"})

		deliveryAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_delivery_attempts_total",
			Help: "Delivery attempts by channel and outcome.",
		}, []string{"channel", "outcome"})

		extractionTiersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_extraction_tiers_total",
			Help: "Model response extraction outcomes by recovery tier.",
		}, []string{"tier"})

		documentsRenderedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cheatwell_documents_rendered_total",
			Help: "Rendered output documents by format and outcome.",
		}, []string{"format", "outcome"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			pipelineRunsTotal,
			pipelineStageSeconds,
			researchLookupsTotal,
			deliveryAttemptsTotal,
			extractionTiersTotal,
			documentsRenderedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// PipelineRuns exposes the counter for pipeline executions.
func PipelineRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return pipelineRunsTotal
}

// PipelineStage exposes the histogram for pipeline stage durations.
func PipelineStage() *prometheus.HistogramVec {
	RegisterMetrics()
	return pipelineStageSeconds
}

// ResearchLookups exposes the counter for research lookups.
func ResearchLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return researchLookupsTotal
}

// DeliveryAttempts exposes the counter for delivery attempts.
func DeliveryAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return deliveryAttemptsTotal
}

// ExtractionTiers exposes the counter for response recovery tiers.
func ExtractionTiers() *prometheus.CounterVec {
	RegisterMetrics()
	return extractionTiersTotal
}

// DocumentsRendered exposes the counter for rendered documents.
func DocumentsRendered() *prometheus.CounterVec {
	RegisterMetrics()
	return documentsRenderedTotal
}
