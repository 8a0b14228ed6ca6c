// Package analysis composes the similarity engine and the dimension scorer
// into the end-to-end opportunity pipeline: gap detection, scoring, category
// inference, and assembly of the Opportunity aggregate.
package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/indogap/indogap/internal/application/scoring"
	"github.com/indogap/indogap/internal/application/similarity"
	"github.com/indogap/indogap/internal/domain/company"
	"github.com/indogap/indogap/internal/domain/opportunity"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/prometheus"
	"github.com/indogap/indogap/internal/intelligence/category"
	"github.com/indogap/indogap/pkg/errors"
)

// defaultBatchConcurrency bounds BatchAnalyzeConcurrent when the caller
// passes a non-positive limit.
const defaultBatchConcurrency = 4

// Options tunes what the analyzer attaches to each opportunity.
type Options struct {
	// TopCategories is how many inferred categories to keep.  Zero keeps
	// the matcher's default.
	TopCategories int

	// IncludeReasoning and IncludeRecommendations are forwarded to the
	// scorer.
	IncludeReasoning       bool
	IncludeRecommendations bool
}

// DefaultOptions enables reasoning and recommendations.
func DefaultOptions() Options {
	return Options{
		IncludeReasoning:       true,
		IncludeRecommendations: true,
	}
}

// BatchResult pairs one source company with its analysis outcome.  Err is
// set when that item failed; siblings in the batch are unaffected.
type BatchResult struct {
	SourceID    string
	SourceName  string
	Opportunity *opportunity.Opportunity
	Err         error
}

// Analyzer runs the full pipeline for source companies.
type Analyzer interface {
	// AnalyzeOpportunity runs gap detection and scoring for one source
	// and assembles the resulting aggregate.
	AnalyzeOpportunity(ctx context.Context, source company.Record) (*opportunity.Opportunity, error)

	// BatchAnalyze processes sources in order.
	BatchAnalyze(ctx context.Context, sources []company.Record) []BatchResult

	// BatchAnalyzeConcurrent processes sources with at most limit
	// in-flight analyses.  Results keep input order.
	BatchAnalyzeConcurrent(ctx context.Context, sources []company.Record, limit int) []BatchResult
}

// Deps carries the analyzer's collaborators.  Engine and Scorer are
// required; Matcher, Logger, and Metrics default when nil.
type Deps struct {
	Engine  similarity.Engine
	Scorer  scoring.Scorer
	Matcher *category.Matcher
	Logger  logging.Logger
	Metrics *prometheus.AnalysisMetrics
}

type analyzer struct {
	opts    Options
	engine  similarity.Engine
	scorer  scoring.Scorer
	matcher *category.Matcher
	logger  logging.Logger
	metrics *prometheus.AnalysisMetrics
}

// NewAnalyzer constructs the pipeline.
func NewAnalyzer(opts Options, deps Deps) (Analyzer, error) {
	if deps.Engine == nil {
		return nil, errors.InvalidParam("analysis requires a similarity engine")
	}
	if deps.Scorer == nil {
		return nil, errors.InvalidParam("analysis requires a scorer")
	}

	a := &analyzer{
		opts:    opts,
		engine:  deps.Engine,
		scorer:  deps.Scorer,
		matcher: deps.Matcher,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
	if a.matcher == nil {
		a.matcher = category.NewMatcher()
	}
	if a.logger == nil {
		a.logger = logging.NewNopLogger()
	}
	if a.metrics == nil {
		a.metrics = prometheus.NewNopAnalysisMetrics()
	}
	return a, nil
}

func (a *analyzer) AnalyzeOpportunity(ctx context.Context, source company.Record) (*opportunity.Opportunity, error) {
	start := time.Now()

	gap, err := a.engine.DetectGap(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "gap detection failed")
	}

	opp := opportunity.New(source.ID, source.Name, source.Description)
	opp.SourceBatch = source.SourceBatch
	opp.SourceTags = source.Tags
	opp.SourceURL = source.SourceURL

	opp.BestMatch = gap.BestMatch
	if len(gap.AllMatches) > 1 {
		opp.OtherMatches = gap.AllMatches[1:]
	}
	opp.GapDetected = gap.GapDetected
	opp.GapLevel = gap.OpportunityLevel
	opp.AnalysisMethod = gap.AnalysisMethod
	if gap.BestMatch != nil {
		opp.ComparisonSummary = gap.BestMatch.Reasoning
	}

	resp := a.scorer.Score(ctx, scoring.Request{
		OpportunityID:          opp.ID,
		StartupName:            source.Name,
		StartupDescription:     source.Description,
		SourceBatch:            source.SourceBatch,
		Tags:                   source.Tags,
		BestMatch:              gap.BestMatch,
		IncludeReasoning:       a.opts.IncludeReasoning,
		IncludeRecommendations: a.opts.IncludeRecommendations,
	})

	opp.OverallScore = resp.OverallScore
	opp.Dimensions = dimensionResults(resp)
	opp.ScoringMethod = resp.Method
	opp.ScoringReasoning = resp.OverallReasoning
	opp.Recommendation = resp.Recommendation
	opp.NextSteps = resp.NextSteps
	opp.ScoringErrors = resp.Errors
	opp.Level = resp.OpportunityLevel

	for _, inf := range a.matcher.Infer(source.ComparisonText(), a.opts.TopCategories) {
		opp.InferredCategories = append(opp.InferredCategories, inf.Category)
	}

	opp.MarkAnalyzed(time.Now())

	a.metrics.AnalysisRunsTotal.WithLabelValues(string(opp.Level)).Inc()
	a.metrics.AnalysisDuration.WithLabelValues().Observe(time.Since(start).Seconds())

	a.logger.Info("opportunity analyzed",
		logging.String("opportunity_id", opp.ID),
		logging.String("source_name", source.Name),
		logging.Bool("gap_detected", opp.GapDetected),
		logging.Float64("overall_score", opp.OverallScore),
		logging.String("level", string(opp.Level)))
	return opp, nil
}

func (a *analyzer) BatchAnalyze(ctx context.Context, sources []company.Record) []BatchResult {
	out := make([]BatchResult, len(sources))
	for i, src := range sources {
		out[i] = a.analyzeOne(ctx, src)
	}
	return out
}

func (a *analyzer) BatchAnalyzeConcurrent(ctx context.Context, sources []company.Record, limit int) []BatchResult {
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}

	out := make([]BatchResult, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			out[i] = a.analyzeOne(ctx, src)
			return nil
		})
	}
	// Workers never return errors; per-item failures land in BatchResult.
	_ = g.Wait()
	return out
}

func (a *analyzer) analyzeOne(ctx context.Context, src company.Record) BatchResult {
	res := BatchResult{SourceID: src.ID, SourceName: src.Name}
	opp, err := a.AnalyzeOpportunity(ctx, src)
	if err != nil {
		a.logger.Warn("analysis failed",
			logging.String("source_id", src.ID),
			logging.String("source_name", src.Name),
			logging.Err(err))
		res.Err = err
		return res
	}
	res.Opportunity = opp
	return res
}

func dimensionResults(resp scoring.Response) map[string]opportunity.DimensionResult {
	if len(resp.Dimensions) == 0 {
		return nil
	}
	out := make(map[string]opportunity.DimensionResult, len(resp.Dimensions))
	for d, ds := range resp.Dimensions {
		out[string(d)] = opportunity.DimensionResult{
			Score:      ds.Score,
			Weight:     ds.Weight,
			Reasoning:  ds.Reasoning,
			Confidence: ds.Confidence,
			Evidence:   ds.Evidence,
			Warnings:   ds.Warnings,
		}
	}
	return out
}
