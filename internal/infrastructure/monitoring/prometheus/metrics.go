package prometheus

// AnalysisMetrics holds all metrics recorded by the analysis pipeline.
type AnalysisMetrics struct {
	// Similarity layer
	ComparisonsTotal        CounterVec
	EmbeddingFallbacksTotal CounterVec
	CandidatesLoaded        GaugeVec
	GapDetectionsTotal      CounterVec

	// Scoring layer
	ScoringRequestsTotal CounterVec
	ScoringDuration      HistogramVec

	// Aggregation layer
	AnalysisRunsTotal CounterVec
	AnalysisDuration  HistogramVec

	// Provider layer
	ProviderRequestsTotal CounterVec
	ProviderDuration      HistogramVec
}

// Default histogram buckets for scoring and analysis latencies.  Rule-based
// scoring completes in microseconds; delegated scoring is bounded by the
// reasoning provider's timeout.
var (
	DefaultScoringDurationBuckets  = []float64{.0001, .001, .01, .1, .5, 1, 2, 5, 10, 30, 60}
	DefaultProviderDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60}
)

// NewAnalysisMetrics registers all pipeline metrics and returns the struct.
func NewAnalysisMetrics(collector MetricsCollector) *AnalysisMetrics {
	m := &AnalysisMetrics{}

	// Similarity
	m.ComparisonsTotal = collector.RegisterCounter("comparisons_total", "Total pairwise similarity comparisons", "method")
	m.EmbeddingFallbacksTotal = collector.RegisterCounter("embedding_fallbacks_total", "Comparisons that fell back from embedding to lexical similarity", "reason")
	m.CandidatesLoaded = collector.RegisterGauge("candidates_loaded", "Number of candidate companies currently loaded")
	m.GapDetectionsTotal = collector.RegisterCounter("gap_detections_total", "Gap detection runs by resulting level", "level")

	// Scoring
	m.ScoringRequestsTotal = collector.RegisterCounter("scoring_requests_total", "Total scoring requests", "method", "status")
	m.ScoringDuration = collector.RegisterHistogram("scoring_duration_seconds", "Scoring request duration", DefaultScoringDurationBuckets, "method")

	// Aggregation
	m.AnalysisRunsTotal = collector.RegisterCounter("analysis_runs_total", "Opportunity analysis runs by level", "level")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "End-to-end opportunity analysis duration", DefaultScoringDurationBuckets)

	// Providers
	m.ProviderRequestsTotal = collector.RegisterCounter("provider_requests_total", "Outbound provider requests", "provider", "status")
	m.ProviderDuration = collector.RegisterHistogram("provider_request_duration_seconds", "Outbound provider request duration", DefaultProviderDurationBuckets, "provider")

	return m
}

// NewNopAnalysisMetrics returns an AnalysisMetrics whose recorders all
// discard their observations.  Intended for tests and for callers that run
// without a metrics endpoint.
func NewNopAnalysisMetrics() *AnalysisMetrics {
	return &AnalysisMetrics{
		ComparisonsTotal:        noopCounterVec{},
		EmbeddingFallbacksTotal: noopCounterVec{},
		CandidatesLoaded:        noopGaugeVec{},
		GapDetectionsTotal:      noopCounterVec{},
		ScoringRequestsTotal:    noopCounterVec{},
		ScoringDuration:         noopHistogramVec{},
		AnalysisRunsTotal:       noopCounterVec{},
		AnalysisDuration:        noopHistogramVec{},
		ProviderRequestsTotal:   noopCounterVec{},
		ProviderDuration:        noopHistogramVec{},
	}
}
