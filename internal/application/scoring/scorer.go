package scoring

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/prometheus"
	"github.com/indogap/indogap/pkg/errors"
	"github.com/indogap/indogap/pkg/types/common"
)

// recommendThreshold is the overall score above which next steps shift from
// research mode to build mode.
const recommendThreshold = 0.6

// maxNextSteps bounds the generated next-step list.
const maxNextSteps = 5

// delegateReasoningLimit truncates provider reasoning to keep responses
// bounded.
const delegateReasoningLimit = 500

// delegateConfidence is assigned to provider-scored dimensions.
const delegateConfidence = 0.85

// firstIntegerRe extracts the score from a provider's free-text answer.
var firstIntegerRe = regexp.MustCompile(`\d+`)

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// ReasoningProvider answers a single prompt with free text.  Implementations
// must be safe for concurrent use.
type ReasoningProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Stats is a snapshot of scorer activity.
type Stats struct {
	TotalScored int           `json:"total_scored"`
	Errors      int           `json:"errors"`
	TotalTime   time.Duration `json:"total_time"`
	AvgTime     time.Duration `json:"avg_time"`
}

// Scorer evaluates opportunities across the seven dimensions.
type Scorer interface {
	// Score evaluates one request with the configured default method.
	Score(ctx context.Context, req Request) Response

	// ScoreWith evaluates one request with an explicit method.  Delegated
	// scoring degrades per dimension to the rule-based path on provider
	// failure.
	ScoreWith(ctx context.Context, req Request, method common.ScoringMethod) Response

	// BatchScore evaluates every request in order.  A failed request
	// yields a Response with Errors set; the batch continues.
	BatchScore(ctx context.Context, reqs []Request) []Response

	// Dimensions lists the axes this scorer evaluates.
	Dimensions() []Dimension

	// Stats returns a snapshot of scoring activity.
	Stats() Stats
}

// Deps carries the scorer's collaborators.  Provider is optional; without
// one, delegated scoring is unavailable and the scorer always runs the rule
// tables.
type Deps struct {
	Provider ReasoningProvider
	Logger   logging.Logger
	Metrics  *prometheus.AnalysisMetrics
}

type scorer struct {
	cfg      config.ScoringConfig
	weights  map[Dimension]float64
	provider ReasoningProvider
	logger   logging.Logger
	metrics  *prometheus.AnalysisMetrics

	mu    sync.Mutex
	stats Stats
}

// NewScorer validates the weight table and constructs the scorer.  Every
// dimension must carry a weight in (0, 1] and the weights must sum to 1.0.
func NewScorer(cfg config.ScoringConfig, deps Deps) (Scorer, error) {
	if cfg.Weights == nil {
		cfg.Weights = config.DefaultScoringWeights()
	}
	weights := make(map[Dimension]float64, len(Dimensions()))
	var sum float64
	for _, d := range Dimensions() {
		w, ok := cfg.Weights[string(d)]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeConfigWeights, "missing weight for dimension %q", d)
		}
		if w <= 0 || w > 1 {
			return nil, errors.Newf(errors.ErrCodeConfigWeights, "weight for dimension %q must be in (0,1], got %v", d, w)
		}
		weights[d] = w
		sum += w
	}
	if sum < 1-1e-9 || sum > 1+1e-9 {
		return nil, errors.Newf(errors.ErrCodeConfigWeights, "dimension weights must sum to 1.0, got %.4f", sum)
	}
	if cfg.UseDelegate && deps.Provider == nil {
		return nil, errors.InvalidParam("delegated scoring enabled but no reasoning provider supplied")
	}

	s := &scorer{
		cfg:      cfg,
		weights:  weights,
		provider: deps.Provider,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.metrics == nil {
		s.metrics = prometheus.NewNopAnalysisMetrics()
	}
	return s, nil
}

func (s *scorer) Dimensions() []Dimension { return Dimensions() }

func (s *scorer) defaultMethod() common.ScoringMethod {
	if s.cfg.UseDelegate && s.provider != nil {
		return common.ScoringLLMBased
	}
	return common.ScoringRuleBased
}

func (s *scorer) Score(ctx context.Context, req Request) Response {
	return s.ScoreWith(ctx, req, s.defaultMethod())
}

func (s *scorer) ScoreWith(ctx context.Context, req Request, method common.ScoringMethod) Response {
	start := time.Now()

	if method == common.ScoringLLMBased && s.provider == nil {
		method = common.ScoringRuleBased
	}

	if errs := validateRequest(req); len(errs) > 0 {
		s.record(start, method, true)
		return Response{
			OpportunityID: req.OpportunityID,
			Method:        method,
			Errors:        errs,
			ScoredAt:      time.Now().UTC(),
		}
	}

	in := newRuleInput(req)
	dims := make(map[Dimension]DimensionScore, len(Dimensions()))
	for _, d := range Dimensions() {
		var ds DimensionScore
		if method == common.ScoringLLMBased {
			ds = s.delegateDimension(ctx, req, in, d)
		} else {
			ds, _ = ruleForDimension(d, in)
		}
		ds.Weight = s.weights[d]
		dims[d] = ds
	}

	resp := Response{
		OpportunityID: req.OpportunityID,
		Dimensions:    dims,
		OverallScore:  overallScore(dims),
		Method:        method,
		ScoredAt:      time.Now().UTC(),
	}
	if method == common.ScoringLLMBased {
		resp.ModelUsed = s.provider.Model()
	}
	resp.OpportunityLevel = common.LevelFromScore(resp.OverallScore)

	if req.IncludeReasoning {
		resp.OverallReasoning = overallReasoning(dims)
	}
	if req.IncludeRecommendations {
		resp.Recommendation = recommendation(resp.OpportunityLevel)
		resp.NextSteps = nextSteps(resp)
	}

	resp.LatencyMS = float64(time.Since(start)) / float64(time.Millisecond)
	s.record(start, method, false)

	s.logger.Debug("opportunity scored",
		logging.String("opportunity_id", req.OpportunityID),
		logging.Float64("overall", resp.OverallScore),
		logging.String("level", string(resp.OpportunityLevel)),
		logging.String("method", string(method)))
	return resp
}

func (s *scorer) BatchScore(ctx context.Context, reqs []Request) []Response {
	out := make([]Response, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, s.Score(ctx, req))
	}
	return out
}

func (s *scorer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	if st.TotalScored > 0 {
		st.AvgTime = st.TotalTime / time.Duration(st.TotalScored)
	}
	return st
}

func (s *scorer) record(start time.Time, method common.ScoringMethod, failed bool) {
	elapsed := time.Since(start)

	status := "ok"
	if failed {
		status = "error"
	}
	s.metrics.ScoringRequestsTotal.WithLabelValues(string(method), status).Inc()
	s.metrics.ScoringDuration.WithLabelValues(string(method)).Observe(elapsed.Seconds())

	s.mu.Lock()
	s.stats.TotalScored++
	s.stats.TotalTime += elapsed
	if failed {
		s.stats.Errors++
	}
	s.mu.Unlock()
}

// delegateDimension asks the reasoning provider to score one axis, falling
// back to the rule tables when the provider fails.
func (s *scorer) delegateDimension(ctx context.Context, req Request, in ruleInput, d Dimension) DimensionScore {
	prompt, err := renderPrompt(d, req)
	if err == nil {
		var content string
		content, err = s.provider.Complete(ctx, systemPrompt, prompt)
		if err == nil {
			return DimensionScore{
				Dimension:  d,
				Score:      clampScore(parseScore(content)),
				Reasoning:  truncateRunes(content, delegateReasoningLimit),
				Confidence: delegateConfidence,
			}
		}
	}

	s.logger.Warn("delegated scoring failed, using rule-based fallback",
		logging.String("dimension", string(d)),
		logging.Err(err))
	ds, _ := ruleForDimension(d, in)
	return ds
}

// parseScore extracts the first integer in the provider's answer, defaulting
// to the midpoint when none is found.
func parseScore(content string) int {
	m := firstIntegerRe.FindString(content)
	if m == "" {
		return 5
	}
	var n int
	if _, err := fmt.Sscanf(m, "%d", &n); err != nil {
		return 5
	}
	return n
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation
// ─────────────────────────────────────────────────────────────────────────────

func validateRequest(req Request) []string {
	var errs []string
	if req.OpportunityID == "" {
		errs = append(errs, "Missing opportunity_id")
	}
	if req.StartupName == "" {
		errs = append(errs, "Missing startup_name")
	}
	if req.StartupDescription == "" {
		errs = append(errs, "Missing startup_description")
	}
	return errs
}

// overallScore is the weight-normalized mean of the dimension scores,
// rescaled from 1-10 to 0-1.
func overallScore(dims map[Dimension]DimensionScore) float64 {
	var weighted, total float64
	for _, ds := range dims {
		weighted += float64(ds.Score) * ds.Weight
		total += ds.Weight
	}
	if total == 0 {
		return 0
	}
	return (weighted / total) / 10.0
}

// overallReasoning names the strongest dimension at 7+ and the weakest at
// 4-, when either exists.
func overallReasoning(dims map[Dimension]DimensionScore) string {
	var best, worst *DimensionScore
	for _, d := range Dimensions() {
		ds, ok := dims[d]
		if !ok {
			continue
		}
		cp := ds
		if cp.Score >= 7 && (best == nil || cp.Score > best.Score) {
			best = &cp
		}
		if cp.Score <= 4 && (worst == nil || cp.Score < worst.Score) {
			worst = &cp
		}
	}

	var parts []string
	if best != nil {
		parts = append(parts, fmt.Sprintf("Strength: %s (score: %d/10)", best.Dimension.Title(), best.Score))
	}
	if worst != nil {
		parts = append(parts, fmt.Sprintf("Challenge: %s (score: %d/10)", worst.Dimension.Title(), worst.Score))
	}
	return joinReasoning(parts, "")
}

func recommendation(level common.OpportunityLevel) string {
	switch level {
	case common.LevelHigh:
		return "Strong opportunity. Consider building or investing. " +
			"The concept shows good alignment with Indian market conditions."
	case common.LevelMedium:
		return "Moderate opportunity. Proceed with caution. " +
			"Some dimensions show promise while others need attention."
	case common.LevelLow:
		return "Limited opportunity. Significant challenges identified. " +
			"Consider pivoting or substantial adaptation before proceeding."
	default:
		return "Not recommended at this time. Multiple barriers to success identified."
	}
}

var dimensionNextSteps = map[Dimension]string{
	DimCulturalFit:          "Conduct user research to validate cultural assumptions",
	DimLogistics:            "Investigate local infrastructure partnerships",
	DimPaymentReadiness:     "Research Indian pricing sensitivity and willingness to pay",
	DimTiming:               "Reassess market timing and readiness indicators",
	DimRegulatoryRisk:       "Consult with legal experts on regulatory requirements",
	DimExecutionFeasibility: "Evaluate team capabilities and resource requirements",
}

// nextSteps derives actions from the three weakest dimensions, bracketed by
// a build-vs-research opener and closer.
func nextSteps(resp Response) []string {
	var steps []string
	for _, ds := range resp.TopWeaknesses(3) {
		if step, ok := dimensionNextSteps[ds.Dimension]; ok {
			steps = append(steps, step)
		}
	}

	if resp.OverallScore >= recommendThreshold {
		steps = append([]string{"Proceed with MVP development"}, steps...)
		steps = append(steps, "Set up pilot in Tier 1 city")
	} else {
		steps = append([]string{"Conduct deeper market research"}, steps...)
		steps = append(steps, "Consider strategic partnership")
	}

	if len(steps) > maxNextSteps {
		steps = steps[:maxNextSteps]
	}
	return steps
}
