// Package similarity implements the gap-detection engine: pairwise company
// comparison, best-match search over a loaded candidate set, and the
// similarity-to-opportunity-level mapping.
package similarity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/domain/company"
	"github.com/indogap/indogap/internal/domain/opportunity"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/prometheus"
	"github.com/indogap/indogap/internal/intelligence/category"
	"github.com/indogap/indogap/internal/intelligence/textproc"
	"github.com/indogap/indogap/pkg/errors"
	"github.com/indogap/indogap/pkg/types/common"
)

// gapThreshold is the best-match similarity below which a market gap is
// declared.
const gapThreshold = 0.5

// detectGapMatchWidth is how many ranked matches DetectGap retains.
const detectGapMatchWidth = 5

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// EmbeddingProvider produces a dense vector for a text.  Implementations
// must be safe for concurrent use.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Result is the outcome of gap detection for one source company.
type Result struct {
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`

	BestMatch  *opportunity.Match  `json:"best_match,omitempty"`
	AllMatches []opportunity.Match `json:"all_matches,omitempty"`

	GapDetected      bool                    `json:"gap_detected"`
	OpportunityLevel common.OpportunityLevel `json:"opportunity_level"`
	AnalysisMethod   common.AnalysisMethod   `json:"analysis_method"`
}

// Engine compares source companies against a loaded candidate set.
type Engine interface {
	// LoadCandidates replaces the candidate set.  When embeddings are
	// enabled the candidate vectors are rebuilt here so that later
	// comparisons only embed the source side.
	LoadCandidates(ctx context.Context, candidates []company.Record) error

	// CandidateCount reports the size of the loaded candidate set.
	CandidateCount() int

	// Compare scores one source against one target.
	Compare(ctx context.Context, source, target company.Record) (opportunity.Match, error)

	// FindBestMatch returns the topN highest-similarity candidates.
	FindBestMatch(ctx context.Context, source company.Record, topN int) ([]opportunity.Match, error)

	// FindAllMatches returns every candidate at or above threshold,
	// sorted by similarity descending.
	FindAllMatches(ctx context.Context, source company.Record, threshold float64) ([]opportunity.Match, error)

	// DetectGap classifies the market gap for a source.
	DetectGap(ctx context.Context, source company.Record) (Result, error)

	// BatchAnalyze runs DetectGap over every source.  Unless
	// returnAllMatches is set, each result keeps only its best match.
	BatchAnalyze(ctx context.Context, sources []company.Record, returnAllMatches bool) ([]Result, error)
}

// Deps carries the engine's collaborators.  Processor and Matcher default
// when nil; Embeddings is optional and only consulted when the configuration
// enables embedding similarity.
type Deps struct {
	Processor  *textproc.Processor
	Matcher    *category.Matcher
	Embeddings EmbeddingProvider
	Logger     logging.Logger
	Metrics    *prometheus.AnalysisMetrics
}

type engine struct {
	cfg     config.SimilarityConfig
	proc    *textproc.Processor
	matcher *category.Matcher
	embed   EmbeddingProvider
	logger  logging.Logger
	metrics *prometheus.AnalysisMetrics

	mu         sync.RWMutex
	candidates []company.Record
	vectors    [][]float64 // candidate embedding per index, nil when unavailable
}

// NewEngine validates the configuration and constructs the engine.
func NewEngine(cfg config.SimilarityConfig, deps Deps) (Engine, error) {
	sum := cfg.DescriptionWeight + cfg.CategoryWeight + cfg.KeywordWeight
	if sum < 1-1e-9 || sum > 1+1e-9 {
		return nil, errors.New(errors.ErrCodeConfigWeights,
			fmt.Sprintf("similarity weights must sum to 1.0, got %.4f", sum))
	}
	if cfg.UseEmbeddings && deps.Embeddings == nil {
		return nil, errors.InvalidParam("embedding similarity enabled but no embedding provider supplied")
	}

	e := &engine{
		cfg:     cfg,
		proc:    deps.Processor,
		matcher: deps.Matcher,
		embed:   deps.Embeddings,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
	if e.proc == nil {
		e.proc = textproc.NewProcessor(textproc.DefaultOptions())
	}
	if e.matcher == nil {
		e.matcher = category.NewMatcher()
	}
	if e.logger == nil {
		e.logger = logging.NewNopLogger()
	}
	if e.metrics == nil {
		e.metrics = prometheus.NewNopAnalysisMetrics()
	}
	return e, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Candidate management
// ─────────────────────────────────────────────────────────────────────────────

func (e *engine) LoadCandidates(ctx context.Context, candidates []company.Record) error {
	var vectors [][]float64
	if e.cfg.UseEmbeddings && len(candidates) > 0 {
		vectors = e.buildCandidateVectors(ctx, candidates)
	}

	e.mu.Lock()
	e.candidates = candidates
	e.vectors = vectors
	e.mu.Unlock()

	e.metrics.CandidatesLoaded.WithLabelValues().Set(float64(len(candidates)))
	e.logger.Info("candidates loaded", logging.Int("count", len(candidates)))
	return nil
}

// buildCandidateVectors embeds every candidate's comparison text.  A failed
// embedding leaves a nil vector; comparisons against that candidate fall
// back to lexical similarity.
func (e *engine) buildCandidateVectors(ctx context.Context, candidates []company.Record) [][]float64 {
	vectors := make([][]float64, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	limit := e.cfg.EmbeddingConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range candidates {
		i := i
		g.Go(func() error {
			vec, err := e.embed.Embed(gctx, candidates[i].ComparisonText())
			if err != nil {
				e.metrics.EmbeddingFallbacksTotal.WithLabelValues("candidate_embed_failed").Inc()
				e.logger.Warn("candidate embedding failed",
					logging.String("candidate", candidates[i].DisplayName()),
					logging.Err(err))
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()
	return vectors
}

func (e *engine) CandidateCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.candidates)
}

// ─────────────────────────────────────────────────────────────────────────────
// Comparison
// ─────────────────────────────────────────────────────────────────────────────

func (e *engine) Compare(ctx context.Context, source, target company.Record) (opportunity.Match, error) {
	return e.compare(ctx, source, target, nil)
}

// compare scores source against target.  targetVec, when non-nil, is the
// precomputed candidate embedding.
func (e *engine) compare(ctx context.Context, source, target company.Record, targetVec []float64) (opportunity.Match, error) {
	sourceText := source.ComparisonText()
	targetText := target.ComparisonText()

	descSim, err := e.descriptionSimilarity(ctx, sourceText, targetText, targetVec)
	if err != nil {
		return opportunity.Match{}, errors.Wrap(err, errors.ErrCodeSimilarityFailed, "description similarity failed")
	}

	catMatch := e.matcher.Match(source.CategoryLabels(), target.CategoryLabels())
	kwOverlap, matched, missing := e.keywordComparison(sourceText, targetText)

	overall := descSim*e.cfg.DescriptionWeight +
		catMatch*e.cfg.CategoryWeight +
		kwOverlap*e.cfg.KeywordWeight

	e.metrics.ComparisonsTotal.WithLabelValues(string(e.method())).Inc()

	return opportunity.Match{
		MatchedCompanyID:   target.ID,
		MatchedCompanyName: target.DisplayName(),
		SimilarityScore:    overall,
		GapScore:           1.0 - overall,
		CategoryMatch:      catMatch,
		MatchedKeywords:    matched,
		MissingKeywords:    missing,
		Reasoning: buildReasoning(target.DisplayName(), overall, descSim, catMatch,
			kwOverlap, len(matched), len(missing)),
	}, nil
}

// descriptionSimilarity prefers embeddings when enabled, degrading to TF-IDF
// on provider failure.
func (e *engine) descriptionSimilarity(ctx context.Context, sourceText, targetText string, targetVec []float64) (float64, error) {
	if e.cfg.UseEmbeddings && e.embed != nil {
		sim, err := e.embeddingSimilarity(ctx, sourceText, targetText, targetVec)
		if err == nil {
			return sim, nil
		}
		e.metrics.EmbeddingFallbacksTotal.WithLabelValues("provider_error").Inc()
		e.logger.Warn("embedding similarity failed, falling back to tfidf", logging.Err(err))
	}
	return e.proc.Similarity(sourceText, targetText, textproc.MethodTFIDF)
}

func (e *engine) embeddingSimilarity(ctx context.Context, sourceText, targetText string, targetVec []float64) (float64, error) {
	sourceVec, err := e.embed.Embed(ctx, sourceText)
	if err != nil {
		return 0, err
	}
	if targetVec == nil {
		targetVec, err = e.embed.Embed(ctx, targetText)
		if err != nil {
			return 0, err
		}
	}
	return textproc.Cosine(sourceVec, targetVec), nil
}

// keywordComparison measures keyword overlap between the two texts.  An
// empty source keyword set is neutral: the source carries no evidence, so
// the score is 0.5 and every target keyword counts as missing.  The rule is
// deliberately one-sided: an empty target set against a non-empty source is
// a plain zero-overlap Jaccard, not a neutral 0.5.
func (e *engine) keywordComparison(sourceText, targetText string) (float64, []string, []string) {
	kw1 := e.proc.Process(sourceText).Keywords
	kw2 := e.proc.Process(targetText).Keywords

	set1 := make(map[string]struct{}, len(kw1))
	for _, k := range kw1 {
		set1[k] = struct{}{}
	}
	set2 := make(map[string]struct{}, len(kw2))
	for _, k := range kw2 {
		set2[k] = struct{}{}
	}

	if len(set1) == 0 {
		return 0.5, nil, sortedKeys(set2)
	}

	matched := make([]string, 0, len(set1))
	for k := range set1 {
		if _, ok := set2[k]; ok {
			matched = append(matched, k)
		}
	}
	union := len(set1) + len(set2) - len(matched)
	if union == 0 {
		return 0.5, nil, nil
	}

	missing := make([]string, 0, len(set2))
	for k := range set2 {
		if _, ok := set1[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)
	return float64(len(matched)) / float64(union), matched, missing
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func buildReasoning(targetName string, overall, descSim, catMatch, kwOverlap float64, matchedCount, missingCount int) string {
	var level string
	switch {
	case overall > 0.7:
		level = "Very similar"
	case overall > 0.5:
		level = "Moderately similar"
	case overall > 0.3:
		level = "Somewhat similar"
	default:
		level = "Dissimilar"
	}
	return fmt.Sprintf(
		"%s to %s. Overall similarity: %.2f. Description: %.2f, Category: %.2f, Keywords: %.2f. Matched %d keywords, missing %d keywords.",
		level, targetName, overall, descSim, catMatch, kwOverlap, matchedCount, missingCount,
	)
}

// ─────────────────────────────────────────────────────────────────────────────
// Search
// ─────────────────────────────────────────────────────────────────────────────

func (e *engine) FindBestMatch(ctx context.Context, source company.Record, topN int) ([]opportunity.Match, error) {
	if topN < 1 {
		topN = 1
	}
	matches, err := e.rankAll(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

func (e *engine) FindAllMatches(ctx context.Context, source company.Record, threshold float64) ([]opportunity.Match, error) {
	if threshold <= 0 {
		threshold = e.cfg.MatchThreshold
	}
	matches, err := e.rankAll(ctx, source)
	if err != nil {
		return nil, err
	}
	kept := matches[:0]
	for _, m := range matches {
		if m.SimilarityScore >= threshold {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// rankAll compares source against every candidate and sorts descending by
// similarity.  Equal scores keep candidate load order.
func (e *engine) rankAll(ctx context.Context, source company.Record) ([]opportunity.Match, error) {
	e.mu.RLock()
	candidates := e.candidates
	vectors := e.vectors
	e.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, nil
	}

	matches := make([]opportunity.Match, 0, len(candidates))
	for i, target := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "ranking cancelled")
		}
		var vec []float64
		if i < len(vectors) {
			vec = vectors[i]
		}
		m, err := e.compare(ctx, source, target, vec)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	return matches, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Gap detection
// ─────────────────────────────────────────────────────────────────────────────

func (e *engine) DetectGap(ctx context.Context, source company.Record) (Result, error) {
	matches, err := e.FindBestMatch(ctx, source, detectGapMatchWidth)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		SourceID:       source.ID,
		SourceName:     source.DisplayName(),
		AnalysisMethod: e.method(),
	}

	if len(matches) == 0 {
		// Nothing to compare against: the market is open by definition.
		result.GapDetected = true
		result.OpportunityLevel = common.LevelHigh
		e.metrics.GapDetectionsTotal.WithLabelValues(string(result.OpportunityLevel)).Inc()
		return result, nil
	}

	best := matches[0]
	result.BestMatch = &best
	result.AllMatches = matches
	result.GapDetected = best.SimilarityScore < gapThreshold
	result.OpportunityLevel = common.GapLevelFromSimilarity(best.SimilarityScore)

	e.metrics.GapDetectionsTotal.WithLabelValues(string(result.OpportunityLevel)).Inc()
	e.logger.Debug("gap detection complete",
		logging.String("source", result.SourceName),
		logging.String("best_match", best.MatchedCompanyName),
		logging.Float64("similarity", best.SimilarityScore),
		logging.String("level", string(result.OpportunityLevel)))
	return result, nil
}

func (e *engine) BatchAnalyze(ctx context.Context, sources []company.Record, returnAllMatches bool) ([]Result, error) {
	results := make([]Result, 0, len(sources))
	for _, source := range sources {
		res, err := e.DetectGap(ctx, source)
		if err != nil {
			return nil, err
		}
		if !returnAllMatches && len(res.AllMatches) > 1 {
			res.AllMatches = res.AllMatches[:1]
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *engine) method() common.AnalysisMethod {
	if e.cfg.UseEmbeddings && e.embed != nil {
		return common.MethodEmbedding
	}
	return common.MethodTFIDF
}
