// Package scoring implements the seven-dimension opportunity scorer for the
// Indian market: rule-based heuristics over category and description
// signals, with an optional delegated path through an external reasoning
// provider.
package scoring

import (
	"strings"
	"time"

	"github.com/indogap/indogap/internal/domain/opportunity"
	"github.com/indogap/indogap/pkg/types/common"
)

// Dimension identifies one of the seven scoring axes.
type Dimension string

const (
	DimCulturalFit          Dimension = "cultural_fit"
	DimLogistics            Dimension = "logistics"
	DimPaymentReadiness     Dimension = "payment_readiness"
	DimTiming               Dimension = "timing"
	DimMonopolyPotential    Dimension = "monopoly_potential"
	DimRegulatoryRisk       Dimension = "regulatory_risk"
	DimExecutionFeasibility Dimension = "execution_feasibility"
)

// Dimensions returns all scoring dimensions in evaluation order.
func Dimensions() []Dimension {
	return []Dimension{
		DimCulturalFit,
		DimLogistics,
		DimPaymentReadiness,
		DimTiming,
		DimMonopolyPotential,
		DimRegulatoryRisk,
		DimExecutionFeasibility,
	}
}

func (d Dimension) String() string { return string(d) }

// IsValid reports whether the dimension is one of the seven known axes.
func (d Dimension) IsValid() bool {
	switch d {
	case DimCulturalFit, DimLogistics, DimPaymentReadiness, DimTiming,
		DimMonopolyPotential, DimRegulatoryRisk, DimExecutionFeasibility:
		return true
	}
	return false
}

// Title renders the dimension name for human-readable summaries, e.g.
// "cultural_fit" becomes "Cultural Fit".
func (d Dimension) Title() string {
	words := strings.Split(string(d), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Request carries one opportunity into the scorer.
type Request struct {
	OpportunityID      string             `json:"opportunity_id"`
	StartupName        string             `json:"startup_name"`
	StartupDescription string             `json:"startup_description"`
	SourceMarket       string             `json:"source_market,omitempty"`
	SourceBatch        string             `json:"source_batch,omitempty"`
	Tags               []string           `json:"tags,omitempty"`
	BestMatch          *opportunity.Match `json:"best_match,omitempty"`

	IncludeReasoning       bool `json:"include_reasoning"`
	IncludeRecommendations bool `json:"include_recommendations"`
}

// DimensionScore is the result for a single axis.  Score is on a 1-10
// scale; Weight is the aggregation weight applied by the scorer.
type DimensionScore struct {
	Dimension  Dimension `json:"dimension"`
	Score      int       `json:"score"`
	Weight     float64   `json:"weight"`
	Reasoning  string    `json:"reasoning,omitempty"`
	Confidence float64   `json:"confidence"`
	Evidence   []string  `json:"evidence,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// WeightedScore is the dimension's contribution to the 0-1 overall score.
func (d DimensionScore) WeightedScore() float64 {
	return float64(d.Score) * d.Weight / 10.0
}

// Response is the full scoring outcome for one opportunity.  Validation
// failures populate Errors and leave the scores zeroed rather than aborting
// a batch.
type Response struct {
	OpportunityID    string                       `json:"opportunity_id"`
	OverallScore     float64                      `json:"overall_score"`
	OverallReasoning string                       `json:"overall_reasoning,omitempty"`
	Dimensions       map[Dimension]DimensionScore `json:"dimensions,omitempty"`
	Recommendation   string                       `json:"recommendation,omitempty"`
	NextSteps        []string                     `json:"next_steps,omitempty"`
	OpportunityLevel common.OpportunityLevel      `json:"opportunity_level"`

	Method    common.ScoringMethod `json:"method"`
	ModelUsed string               `json:"model_used,omitempty"`
	LatencyMS float64              `json:"latency_ms"`
	ScoredAt  time.Time            `json:"scored_at"`
	Errors    []string             `json:"errors,omitempty"`
}

// Dimension returns the score for one axis, if present.
func (r Response) Dimension(d Dimension) (DimensionScore, bool) {
	ds, ok := r.Dimensions[d]
	return ds, ok
}

// TopStrengths returns the count highest-scoring dimensions.
func (r Response) TopStrengths(count int) []DimensionScore {
	return r.sorted(count, func(a, b DimensionScore) bool { return a.Score > b.Score })
}

// TopWeaknesses returns the count lowest-scoring dimensions.
func (r Response) TopWeaknesses(count int) []DimensionScore {
	return r.sorted(count, func(a, b DimensionScore) bool { return a.Score < b.Score })
}

// Warnings flattens every dimension's warnings in evaluation order.
func (r Response) Warnings() []string {
	var out []string
	for _, d := range Dimensions() {
		if ds, ok := r.Dimensions[d]; ok {
			out = append(out, ds.Warnings...)
		}
	}
	return out
}

// IsRecommended reports whether the overall score clears the build/invest
// threshold.
func (r Response) IsRecommended() bool {
	return r.OverallScore >= 0.6
}

// sorted returns up to count dimension scores ordered by less.  Ties keep
// evaluation order, so results are deterministic.
func (r Response) sorted(count int, less func(a, b DimensionScore) bool) []DimensionScore {
	out := make([]DimensionScore, 0, len(r.Dimensions))
	for _, d := range Dimensions() {
		if ds, ok := r.Dimensions[d]; ok {
			out = append(out, ds)
		}
	}
	// Insertion sort keeps the evaluation-order tiebreak stable.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > count {
		out = out[:count]
	}
	return out
}
