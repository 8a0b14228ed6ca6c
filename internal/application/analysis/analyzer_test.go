package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/indogap/indogap/internal/application/scoring"
	"github.com/indogap/indogap/internal/application/similarity"
	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/domain/company"
	"github.com/indogap/indogap/internal/domain/opportunity"
	"github.com/indogap/indogap/pkg/types/common"
)

// mockEngine implements similarity.Engine with function fields.
type mockEngine struct {
	detectGapFn func(ctx context.Context, source company.Record) (similarity.Result, error)

	mu    sync.Mutex
	calls int
}

func (m *mockEngine) LoadCandidates(ctx context.Context, candidates []company.Record) error {
	return nil
}

func (m *mockEngine) CandidateCount() int { return 0 }

func (m *mockEngine) Compare(ctx context.Context, source, target company.Record) (opportunity.Match, error) {
	return opportunity.Match{}, nil
}

func (m *mockEngine) FindBestMatch(ctx context.Context, source company.Record, topN int) ([]opportunity.Match, error) {
	return nil, nil
}

func (m *mockEngine) FindAllMatches(ctx context.Context, source company.Record, threshold float64) ([]opportunity.Match, error) {
	return nil, nil
}

func (m *mockEngine) DetectGap(ctx context.Context, source company.Record) (similarity.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.detectGapFn(ctx, source)
}

func (m *mockEngine) BatchAnalyze(ctx context.Context, sources []company.Record, returnAllMatches bool) ([]similarity.Result, error) {
	return nil, nil
}

func (m *mockEngine) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockScorer implements scoring.Scorer with a function field.
type mockScorer struct {
	scoreFn func(ctx context.Context, req scoring.Request) scoring.Response
}

func (m *mockScorer) Score(ctx context.Context, req scoring.Request) scoring.Response {
	return m.scoreFn(ctx, req)
}

func (m *mockScorer) ScoreWith(ctx context.Context, req scoring.Request, method common.ScoringMethod) scoring.Response {
	return m.scoreFn(ctx, req)
}

func (m *mockScorer) BatchScore(ctx context.Context, reqs []scoring.Request) []scoring.Response {
	out := make([]scoring.Response, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, m.scoreFn(ctx, req))
	}
	return out
}

func (m *mockScorer) Dimensions() []scoring.Dimension { return scoring.Dimensions() }

func (m *mockScorer) Stats() scoring.Stats { return scoring.Stats{} }

func gapResult(source company.Record) similarity.Result {
	best := opportunity.Match{
		MatchedCompanyID:   "in-1",
		MatchedCompanyName: "RupeePay",
		SimilarityScore:    0.22,
		GapScore:           0.78,
		Reasoning:          "Dissimilar to RupeePay.",
	}
	return similarity.Result{
		SourceID:   source.ID,
		SourceName: source.Name,
		BestMatch:  &best,
		AllMatches: []opportunity.Match{
			best,
			{MatchedCompanyID: "in-2", MatchedCompanyName: "AgroLink", SimilarityScore: 0.1},
		},
		GapDetected:      true,
		OpportunityLevel: common.LevelHigh,
		AnalysisMethod:   common.MethodTFIDF,
	}
}

func scoreResponse(ctx context.Context, req scoring.Request) scoring.Response {
	return scoring.Response{
		OpportunityID: req.OpportunityID,
		OverallScore:  0.62,
		Dimensions: map[scoring.Dimension]scoring.DimensionScore{
			scoring.DimCulturalFit: {Dimension: scoring.DimCulturalFit, Score: 7, Weight: 0.15, Confidence: 0.75},
			scoring.DimLogistics:   {Dimension: scoring.DimLogistics, Score: 5, Weight: 0.15, Confidence: 0.80},
		},
		OpportunityLevel: common.LevelMedium,
		Method:           common.ScoringRuleBased,
		Recommendation:   "Moderate opportunity.",
		NextSteps:        []string{"Proceed with MVP development"},
	}
}

func sourceRecord() company.Record {
	return company.Record{
		ID:          "yc-100",
		Name:        "VoiceFlow Pro",
		Description: "AI-powered voice assistant that automates customer support calls for enterprises",
		Tags:        []string{"ai", "voice", "saas"},
		SourceBatch: "W24",
		SourceURL:   "https://example.com/voiceflow",
	}
}

func newMockAnalyzer(t *testing.T, engine similarity.Engine, scorer scoring.Scorer) Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultOptions(), Deps{Engine: engine, Scorer: scorer})
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestNewAnalyzerRequiresCollaborators(t *testing.T) {
	if _, err := NewAnalyzer(DefaultOptions(), Deps{Scorer: &mockScorer{}}); err == nil {
		t.Error("expected error without engine")
	}
	if _, err := NewAnalyzer(DefaultOptions(), Deps{Engine: &mockEngine{}}); err == nil {
		t.Error("expected error without scorer")
	}
}

func TestAnalyzeOpportunityAssemblesAggregate(t *testing.T) {
	engine := &mockEngine{
		detectGapFn: func(ctx context.Context, source company.Record) (similarity.Result, error) {
			return gapResult(source), nil
		},
	}
	scorer := &mockScorer{scoreFn: scoreResponse}
	a := newMockAnalyzer(t, engine, scorer)

	src := sourceRecord()
	opp, err := a.AnalyzeOpportunity(context.Background(), src)
	if err != nil {
		t.Fatalf("AnalyzeOpportunity: %v", err)
	}

	if opp.ID == "" {
		t.Error("opportunity id not assigned")
	}
	if opp.SourceID != "yc-100" || opp.SourceName != "VoiceFlow Pro" {
		t.Errorf("source fields = %q/%q", opp.SourceID, opp.SourceName)
	}
	if opp.SourceBatch != "W24" || opp.SourceURL == "" {
		t.Error("source batch/url not carried over")
	}

	if opp.BestMatch == nil || opp.BestMatch.MatchedCompanyName != "RupeePay" {
		t.Fatalf("best match = %+v", opp.BestMatch)
	}
	if len(opp.OtherMatches) != 1 || opp.OtherMatches[0].MatchedCompanyName != "AgroLink" {
		t.Errorf("other matches = %+v", opp.OtherMatches)
	}
	if !opp.GapDetected || opp.GapLevel != common.LevelHigh {
		t.Errorf("gap = %v/%v", opp.GapDetected, opp.GapLevel)
	}
	if opp.AnalysisMethod != common.MethodTFIDF {
		t.Errorf("analysis method = %v", opp.AnalysisMethod)
	}
	if opp.ComparisonSummary != "Dissimilar to RupeePay." {
		t.Errorf("comparison summary = %q", opp.ComparisonSummary)
	}

	if opp.OverallScore != 0.62 || opp.Level != common.LevelMedium {
		t.Errorf("score/level = %v/%v", opp.OverallScore, opp.Level)
	}
	if opp.ScoringMethod != common.ScoringRuleBased {
		t.Errorf("scoring method = %v", opp.ScoringMethod)
	}
	if len(opp.Dimensions) != 2 {
		t.Fatalf("dimensions = %v", opp.Dimensions)
	}
	cf, ok := opp.Dimensions["cultural_fit"]
	if !ok || cf.Score != 7 || cf.Weight != 0.15 {
		t.Errorf("cultural_fit = %+v", cf)
	}
	if opp.Recommendation != "Moderate opportunity." || len(opp.NextSteps) != 1 {
		t.Error("recommendation/next steps not carried over")
	}

	if len(opp.InferredCategories) == 0 {
		t.Error("inferred categories empty")
	}
	if opp.AnalyzedAt == nil {
		t.Error("AnalyzedAt not stamped")
	}
	if opp.Status != common.StatusNew {
		t.Errorf("status = %v, want new", opp.Status)
	}
}

func TestAnalyzeOpportunityScoringRequest(t *testing.T) {
	engine := &mockEngine{
		detectGapFn: func(ctx context.Context, source company.Record) (similarity.Result, error) {
			return gapResult(source), nil
		},
	}
	var got scoring.Request
	scorer := &mockScorer{scoreFn: func(ctx context.Context, req scoring.Request) scoring.Response {
		got = req
		return scoreResponse(ctx, req)
	}}
	a := newMockAnalyzer(t, engine, scorer)

	if _, err := a.AnalyzeOpportunity(context.Background(), sourceRecord()); err != nil {
		t.Fatalf("AnalyzeOpportunity: %v", err)
	}
	if got.OpportunityID == "" {
		t.Error("scoring request missing opportunity id")
	}
	if got.StartupName != "VoiceFlow Pro" || got.SourceBatch != "W24" {
		t.Errorf("request = %+v", got)
	}
	if got.BestMatch == nil || got.BestMatch.MatchedCompanyName != "RupeePay" {
		t.Error("best match not forwarded to scorer")
	}
	if !got.IncludeReasoning || !got.IncludeRecommendations {
		t.Error("default options should request reasoning and recommendations")
	}
}

func TestAnalyzeOpportunityGapFailure(t *testing.T) {
	engine := &mockEngine{
		detectGapFn: func(ctx context.Context, source company.Record) (similarity.Result, error) {
			return similarity.Result{}, errors.New("no candidates")
		},
	}
	a := newMockAnalyzer(t, engine, &mockScorer{scoreFn: scoreResponse})

	if _, err := a.AnalyzeOpportunity(context.Background(), sourceRecord()); err == nil {
		t.Fatal("expected gap-detection error")
	}
}

func TestAnalyzeOpportunityScoringErrorsCarried(t *testing.T) {
	engine := &mockEngine{
		detectGapFn: func(ctx context.Context, source company.Record) (similarity.Result, error) {
			return gapResult(source), nil
		},
	}
	scorer := &mockScorer{scoreFn: func(ctx context.Context, req scoring.Request) scoring.Response {
		return scoring.Response{
			OpportunityID: req.OpportunityID,
			Errors:        []string{"Missing startup_description"},
		}
	}}
	a := newMockAnalyzer(t, engine, scorer)

	opp, err := a.AnalyzeOpportunity(context.Background(), sourceRecord())
	if err != nil {
		t.Fatalf("scoring validation should not fail the analysis: %v", err)
	}
	if len(opp.ScoringErrors) != 1 {
		t.Errorf("scoring errors = %v", opp.ScoringErrors)
	}
	if opp.OverallScore != 0 {
		t.Errorf("overall = %v, want 0", opp.OverallScore)
	}
}

func TestBatchAnalyzePartialFailure(t *testing.T) {
	engine := &mockEngine{
		detectGapFn: func(ctx context.Context, source company.Record) (similarity.Result, error) {
			if source.ID == "yc-bad" {
				return similarity.Result{}, errors.New("boom")
			}
			return gapResult(source), nil
		},
	}
	a := newMockAnalyzer(t, engine, &mockScorer{scoreFn: scoreResponse})

	good := sourceRecord()
	bad := sourceRecord()
	bad.ID = "yc-bad"
	bad.Name = "Broken Co"

	out := a.BatchAnalyze(context.Background(), []company.Record{good, bad, good})
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	if out[0].Err != nil || out[0].Opportunity == nil {
		t.Errorf("first item should succeed: %+v", out[0])
	}
	if out[1].Err == nil || out[1].Opportunity != nil {
		t.Errorf("second item should fail: %+v", out[1])
	}
	if out[1].SourceID != "yc-bad" || out[1].SourceName != "Broken Co" {
		t.Errorf("failure entry = %+v", out[1])
	}
	if out[2].Err != nil {
		t.Errorf("third item should succeed: %v", out[2].Err)
	}
}

func TestBatchAnalyzeConcurrent(t *testing.T) {
	engine := &mockEngine{
		detectGapFn: func(ctx context.Context, source company.Record) (similarity.Result, error) {
			return gapResult(source), nil
		},
	}
	a := newMockAnalyzer(t, engine, &mockScorer{scoreFn: scoreResponse})

	sources := make([]company.Record, 10)
	for i := range sources {
		src := sourceRecord()
		src.ID = src.ID + "-" + strings.Repeat("x", i+1)
		sources[i] = src
	}

	out := a.BatchAnalyzeConcurrent(context.Background(), sources, 3)
	if len(out) != 10 {
		t.Fatalf("got %d results, want 10", len(out))
	}
	for i, res := range out {
		if res.Err != nil {
			t.Fatalf("item %d failed: %v", i, res.Err)
		}
		if res.SourceID != sources[i].ID {
			t.Errorf("item %d out of order: %q", i, res.SourceID)
		}
	}
	if engine.callCount() != 10 {
		t.Errorf("engine calls = %d, want 10", engine.callCount())
	}

	// Non-positive limit falls back to the default bound.
	out = a.BatchAnalyzeConcurrent(context.Background(), sources[:2], 0)
	if len(out) != 2 || out[0].Err != nil || out[1].Err != nil {
		t.Errorf("default-limit batch failed: %+v", out)
	}
}

func TestAnalyzeOpportunityEndToEnd(t *testing.T) {
	simCfg := config.SimilarityConfig{
		DescriptionWeight: config.DefaultDescriptionWeight,
		CategoryWeight:    config.DefaultCategoryWeight,
		KeywordWeight:     config.DefaultKeywordWeight,
		MatchThreshold:    config.DefaultMatchThreshold,
	}
	engine, err := similarity.NewEngine(simCfg, similarity.Deps{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	candidates := []company.Record{
		{
			ID:          "in-1",
			Name:        "RupeePay",
			Description: "UPI payment gateway for online merchants and small businesses",
			Tags:        []string{"fintech", "payments"},
		},
		{
			ID:          "in-2",
			Name:        "AgroLink",
			Description: "Marketplace connecting farmers directly with wholesale crop buyers",
			Tags:        []string{"agritech"},
		},
	}
	if err := engine.LoadCandidates(context.Background(), candidates); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}

	scorer, err := scoring.NewScorer(config.ScoringConfig{}, scoring.Deps{})
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	a, err := NewAnalyzer(DefaultOptions(), Deps{Engine: engine, Scorer: scorer})
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	opp, err := a.AnalyzeOpportunity(context.Background(), sourceRecord())
	if err != nil {
		t.Fatalf("AnalyzeOpportunity: %v", err)
	}

	// No Indian counterpart resembles a voice-support product, so the
	// pipeline should flag a wide-open gap.
	if !opp.GapDetected {
		t.Error("expected gap detected")
	}
	if opp.GapLevel != common.LevelHigh {
		t.Errorf("gap level = %v, want high", opp.GapLevel)
	}
	if opp.AnalysisMethod != common.MethodTFIDF {
		t.Errorf("analysis method = %v", opp.AnalysisMethod)
	}
	if opp.BestMatch == nil || opp.BestMatch.SimilarityScore >= 0.5 {
		t.Errorf("best match = %+v", opp.BestMatch)
	}
	if len(opp.Dimensions) != 7 {
		t.Errorf("dimensions = %d, want 7", len(opp.Dimensions))
	}
	if opp.OverallScore <= 0 || opp.OverallScore > 1 {
		t.Errorf("overall = %v", opp.OverallScore)
	}
	if opp.Recommendation == "" || len(opp.NextSteps) == 0 {
		t.Error("recommendations missing")
	}
	if len(opp.InferredCategories) == 0 {
		t.Error("inferred categories missing")
	}
	if len(opp.ScoringErrors) != 0 {
		t.Errorf("unexpected scoring errors: %v", opp.ScoringErrors)
	}
}
