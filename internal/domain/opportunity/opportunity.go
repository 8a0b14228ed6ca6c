// Package opportunity implements the Opportunity aggregate: the merged result
// of similarity analysis and dimension scoring for one source company, plus
// its lifecycle state in the evaluation pipeline.
package opportunity

import (
	"time"

	"github.com/google/uuid"

	"github.com/indogap/indogap/pkg/types/common"
)

// Match summarizes the best domestic counterpart found for the source
// company.  It is a snapshot of the similarity engine's output embedded in
// the aggregate.
type Match struct {
	MatchedCompanyID   string   `json:"matched_company_id"`
	MatchedCompanyName string   `json:"matched_company_name"`
	SimilarityScore    float64  `json:"similarity_score"`
	GapScore           float64  `json:"gap_score"`
	CategoryMatch      float64  `json:"category_match"`
	MatchedKeywords    []string `json:"matched_keywords,omitempty"`
	MissingKeywords    []string `json:"missing_keywords,omitempty"`
	Reasoning          string   `json:"reasoning,omitempty"`
}

// DimensionResult is the per-dimension scoring snapshot kept on the aggregate.
type DimensionResult struct {
	Score      int      `json:"score"`
	Weight     float64  `json:"weight"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Opportunity is the aggregate root produced by one analysis run.  It is
// immutable after creation except for status, notes, and action items, which
// the surrounding application appends as the opportunity moves through the
// pipeline.
type Opportunity struct {
	ID string `json:"id"`

	// Source company
	SourceID          string   `json:"source_id"`
	SourceName        string   `json:"source_name"`
	SourceDescription string   `json:"source_description"`
	SourceBatch       string   `json:"source_batch,omitempty"`
	SourceTags        []string `json:"source_tags,omitempty"`
	SourceURL         string   `json:"source_url,omitempty"`

	// Similarity analysis
	BestMatch         *Match                  `json:"best_match,omitempty"`
	OtherMatches      []Match                 `json:"other_matches,omitempty"`
	GapDetected       bool                    `json:"gap_detected"`
	GapLevel          common.OpportunityLevel `json:"gap_level"`
	AnalysisMethod    common.AnalysisMethod   `json:"analysis_method"`
	ComparisonSummary string                  `json:"comparison_summary,omitempty"`

	// Dimension scoring
	OverallScore       float64                    `json:"overall_score"`
	Dimensions         map[string]DimensionResult `json:"dimensions,omitempty"`
	ScoringMethod      common.ScoringMethod       `json:"scoring_method"`
	ScoringReasoning   string                     `json:"scoring_reasoning,omitempty"`
	InferredCategories []string                   `json:"inferred_categories,omitempty"`
	Recommendation     string                     `json:"recommendation,omitempty"`
	NextSteps          []string                   `json:"next_steps,omitempty"`
	ScoringErrors      []string                   `json:"scoring_errors,omitempty"`

	// Classification and lifecycle
	Level       common.OpportunityLevel    `json:"level"`
	Status      common.OpportunityStatus   `json:"status"`
	Priority    common.OpportunityPriority `json:"priority,omitempty"`
	Notes       []string                   `json:"notes,omitempty"`
	ActionItems []string                   `json:"action_items,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	AnalyzedAt   *time.Time `json:"analyzed_at,omitempty"`
	LastActionAt *time.Time `json:"last_action_at,omitempty"`
}

// New creates an Opportunity in the "new" status with a fresh UUID and
// creation timestamps.
func New(sourceID, sourceName, sourceDescription string) *Opportunity {
	now := time.Now().UTC()
	return &Opportunity{
		ID:                uuid.NewString(),
		SourceID:          sourceID,
		SourceName:        sourceName,
		SourceDescription: sourceDescription,
		GapLevel:          common.LevelUnknown,
		Level:             common.LevelUnknown,
		Status:            common.StatusNew,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// MarkAnalyzed stamps the completion time of the analysis run.
func (o *Opportunity) MarkAnalyzed(at time.Time) {
	t := at.UTC()
	o.AnalyzedAt = &t
	o.UpdatedAt = t
}

// UpdateStatus transitions the opportunity to a new status and records when
// the transition happened.
func (o *Opportunity) UpdateStatus(status common.OpportunityStatus) {
	now := time.Now().UTC()
	o.Status = status
	o.UpdatedAt = now
	o.LastActionAt = &now
}

// AddNote appends a free-text note.
func (o *Opportunity) AddNote(note string) {
	if note == "" {
		return
	}
	o.Notes = append(o.Notes, note)
	o.UpdatedAt = time.Now().UTC()
}

// AddActionItem appends a suggested action.
func (o *Opportunity) AddActionItem(action string) {
	if action == "" {
		return
	}
	o.ActionItems = append(o.ActionItems, action)
	o.UpdatedAt = time.Now().UTC()
}

// IsActionable reports whether the opportunity is still in a state where
// pursuing it makes sense.
func (o *Opportunity) IsActionable() bool {
	switch o.Status {
	case common.StatusNew, common.StatusValidating, common.StatusPrioritized:
		return true
	}
	return false
}

// IsRecommended reports whether the overall score clears the build/invest
// threshold.
func (o *Opportunity) IsRecommended() bool {
	return o.OverallScore >= 0.6
}
