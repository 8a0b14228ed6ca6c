// Package common defines the shared enumerations and small value types used
// across the indogap analysis engine.
package common

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Opportunity classification
// ─────────────────────────────────────────────────────────────────────────────

// OpportunityLevel is the categorical bucket derived from a threshold on a
// numeric score.  Gap detection and dimension scoring share the high/medium/
// low buckets; "saturated" appears only on the gap side and "very_low" only
// on the scoring side.
type OpportunityLevel string

const (
	LevelHigh      OpportunityLevel = "high"
	LevelMedium    OpportunityLevel = "medium"
	LevelLow       OpportunityLevel = "low"
	LevelVeryLow   OpportunityLevel = "very_low"
	LevelSaturated OpportunityLevel = "saturated"
	LevelUnknown   OpportunityLevel = "unknown"
)

func (l OpportunityLevel) String() string { return string(l) }

// IsValid returns true when the level is a known enumeration value.
func (l OpportunityLevel) IsValid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow, LevelVeryLow, LevelSaturated, LevelUnknown:
		return true
	}
	return false
}

// OpportunityStatus is the lifecycle state of an opportunity in the pipeline.
type OpportunityStatus string

const (
	StatusNew         OpportunityStatus = "new"
	StatusValidating  OpportunityStatus = "validating"
	StatusPrioritized OpportunityStatus = "prioritized"
	StatusBuilding    OpportunityStatus = "building"
	StatusLaunched    OpportunityStatus = "launched"
	StatusSold        OpportunityStatus = "sold"
	StatusDeclined    OpportunityStatus = "declined"
	StatusArchived    OpportunityStatus = "archived"
)

func (s OpportunityStatus) String() string { return string(s) }

// OpportunityPriority ranks how urgently an opportunity should be pursued.
type OpportunityPriority string

const (
	PriorityCritical OpportunityPriority = "critical"
	PriorityHigh     OpportunityPriority = "high"
	PriorityMedium   OpportunityPriority = "medium"
	PriorityLow      OpportunityPriority = "low"
)

// ─────────────────────────────────────────────────────────────────────────────
// Analysis method tags
// ─────────────────────────────────────────────────────────────────────────────

// AnalysisMethod identifies which description-similarity backend produced a
// result.
type AnalysisMethod string

const (
	MethodTFIDF     AnalysisMethod = "tfidf"
	MethodEmbedding AnalysisMethod = "embedding"
)

// ScoringMethod identifies which scoring path produced a response.
type ScoringMethod string

const (
	ScoringRuleBased ScoringMethod = "rule_based"
	ScoringLLMBased  ScoringMethod = "llm_based"
)

// LevelFromScore maps an overall score in [0,1] to its opportunity level
// using the fixed 0.7/0.5/0.3 thresholds.
func LevelFromScore(score float64) OpportunityLevel {
	switch {
	case score >= 0.7:
		return LevelHigh
	case score >= 0.5:
		return LevelMedium
	case score >= 0.3:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// GapLevelFromSimilarity maps a best-match similarity score in [0,1] to the
// market gap level.  Low similarity means an open market.
func GapLevelFromSimilarity(similarity float64) OpportunityLevel {
	switch {
	case similarity < 0.3:
		return LevelHigh
	case similarity < 0.5:
		return LevelMedium
	case similarity < 0.7:
		return LevelLow
	default:
		return LevelSaturated
	}
}

// ParseOpportunityLevel converts a string to an OpportunityLevel, returning
// an error for unknown values.
func ParseOpportunityLevel(s string) (OpportunityLevel, error) {
	l := OpportunityLevel(s)
	if !l.IsValid() {
		return LevelUnknown, fmt.Errorf("unknown opportunity level %q", s)
	}
	return l, nil
}
