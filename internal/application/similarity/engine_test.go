package similarity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/domain/company"
	"github.com/indogap/indogap/pkg/types/common"
)

// mockEmbedder implements EmbeddingProvider with a function field.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float64, error)

	mu    sync.Mutex
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.embedFn(ctx, text)
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testConfig() config.SimilarityConfig {
	return config.SimilarityConfig{
		DescriptionWeight:    0.6,
		CategoryWeight:       0.3,
		KeywordWeight:        0.1,
		MatchThreshold:       0.3,
		EmbeddingConcurrency: 2,
	}
}

func newTestEngine(t *testing.T, cfg config.SimilarityConfig, deps Deps) Engine {
	t.Helper()
	e, err := NewEngine(cfg, deps)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

var (
	upiSource = company.Record{
		ID:          "src-1",
		Name:        "PayFast",
		Description: "instant upi payments for small merchants with daily settlement",
		Tags:        []string{"fintech", "payments"},
	}
	upiCandidate = company.Record{
		ID:          "cand-1",
		Name:        "QuickPay",
		Description: "instant upi payments for small merchants with daily settlement",
		Tags:        []string{"fintech", "payments"},
	}
	farmCandidate = company.Record{
		ID:          "cand-2",
		Name:        "AgroLink",
		Description: "connecting smallholder farmers directly with wholesale mandi buyers",
		Tags:        []string{"agritech"},
	}
)

func TestNewEngineRejectsBadWeights(t *testing.T) {
	cfg := testConfig()
	cfg.DescriptionWeight = 0.9
	if _, err := NewEngine(cfg, Deps{}); err == nil {
		t.Fatal("expected weight validation error")
	}
}

func TestNewEngineRequiresProviderForEmbeddings(t *testing.T) {
	cfg := testConfig()
	cfg.UseEmbeddings = true
	if _, err := NewEngine(cfg, Deps{}); err == nil {
		t.Fatal("expected error when embeddings enabled without provider")
	}
}

func TestCompareIdenticalRecords(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})

	m, err := e.Compare(context.Background(), upiSource, upiCandidate)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if m.SimilarityScore <= 0.7 {
		t.Errorf("identical descriptions similarity = %v, want > 0.7", m.SimilarityScore)
	}
	if m.CategoryMatch != 1.0 {
		t.Errorf("CategoryMatch = %v, want 1.0", m.CategoryMatch)
	}
	if got := m.GapScore + m.SimilarityScore; got < 0.999 || got > 1.001 {
		t.Errorf("gap + similarity = %v, want 1.0", got)
	}
	if m.MatchedCompanyID != "cand-1" || m.MatchedCompanyName != "QuickPay" {
		t.Errorf("match identity = %q/%q", m.MatchedCompanyID, m.MatchedCompanyName)
	}
	if !strings.HasPrefix(m.Reasoning, "Very similar to QuickPay.") {
		t.Errorf("reasoning = %q, want Very similar prefix", m.Reasoning)
	}
	if !strings.Contains(m.Reasoning, "Overall similarity:") {
		t.Errorf("reasoning missing score breakdown: %q", m.Reasoning)
	}
}

func TestCompareDisjointRecords(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})

	m, err := e.Compare(context.Background(), upiSource, farmCandidate)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if m.SimilarityScore >= 0.3 {
		t.Errorf("disjoint similarity = %v, want < 0.3", m.SimilarityScore)
	}
	if !strings.HasPrefix(m.Reasoning, "Dissimilar to AgroLink.") {
		t.Errorf("reasoning = %q, want Dissimilar prefix", m.Reasoning)
	}
	if len(m.MatchedKeywords) != 0 {
		t.Errorf("MatchedKeywords = %v, want none", m.MatchedKeywords)
	}
	if len(m.MissingKeywords) == 0 {
		t.Error("MissingKeywords should list the candidate's keywords")
	}
}

func TestCompareNeutralCategoryAndKeywords(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})

	// A source whose text cleans to nothing has no category labels and no
	// keywords: both sub-scores are neutral at 0.5.
	blank := company.Record{ID: "src-blank", Name: "!!!"}
	m, err := e.Compare(context.Background(), blank, farmCandidate)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if m.CategoryMatch != 0.5 {
		t.Errorf("CategoryMatch = %v, want neutral 0.5", m.CategoryMatch)
	}
	// overall = 0*0.6 + 0.5*0.3 + 0.5*0.1
	if m.SimilarityScore < 0.199 || m.SimilarityScore > 0.201 {
		t.Errorf("SimilarityScore = %v, want 0.2", m.SimilarityScore)
	}
}

func TestCompareBlankTargetKeywordsNotNeutral(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})

	// The neutral rule is one-sided.  A target whose text cleans to nothing
	// scores a plain zero keyword overlap against a non-empty source, not
	// the neutral 0.5 an empty source gets.
	src := company.Record{
		ID:          "src-pay",
		Name:        "RupeePay",
		Description: "instant upi payments merchants settlement",
	}
	blank := company.Record{ID: "tgt-blank", Name: "!!!"}
	m, err := e.Compare(context.Background(), src, blank)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	// overall = 0*0.6 + 0.5*0.3 + 0*0.1
	if m.SimilarityScore < 0.149 || m.SimilarityScore > 0.151 {
		t.Errorf("SimilarityScore = %v, want 0.15", m.SimilarityScore)
	}
	if len(m.MatchedKeywords) != 0 || len(m.MissingKeywords) != 0 {
		t.Errorf("keywords = %v / %v, want none", m.MatchedKeywords, m.MissingKeywords)
	}
}

func TestFindBestMatchRanksCandidates(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	ctx := context.Background()
	if err := e.LoadCandidates(ctx, []company.Record{farmCandidate, upiCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	if e.CandidateCount() != 2 {
		t.Fatalf("CandidateCount = %d, want 2", e.CandidateCount())
	}

	matches, err := e.FindBestMatch(ctx, upiSource, 1)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].MatchedCompanyID != "cand-1" {
		t.Errorf("best match = %q, want cand-1", matches[0].MatchedCompanyID)
	}

	// topN below one is treated as one.
	matches, err = e.FindBestMatch(ctx, upiSource, 0)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("topN=0 returned %d matches, want 1", len(matches))
	}
}

func TestFindAllMatchesThreshold(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	ctx := context.Background()
	if err := e.LoadCandidates(ctx, []company.Record{upiCandidate, farmCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}

	matches, err := e.FindAllMatches(ctx, upiSource, 0.5)
	if err != nil {
		t.Fatalf("FindAllMatches: %v", err)
	}
	if len(matches) != 1 || matches[0].MatchedCompanyID != "cand-1" {
		t.Errorf("matches above 0.5 = %v, want only cand-1", matches)
	}

	// threshold <= 0 uses the configured default.
	matches, err = e.FindAllMatches(ctx, upiSource, 0)
	if err != nil {
		t.Fatalf("FindAllMatches: %v", err)
	}
	for _, m := range matches {
		if m.SimilarityScore < 0.3 {
			t.Errorf("match %v below default threshold", m.SimilarityScore)
		}
	}
}

func TestDetectGapNoCandidates(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})

	res, err := e.DetectGap(context.Background(), upiSource)
	if err != nil {
		t.Fatalf("DetectGap: %v", err)
	}
	if !res.GapDetected {
		t.Error("empty candidate set should detect a gap")
	}
	if res.OpportunityLevel != common.LevelHigh {
		t.Errorf("level = %v, want high", res.OpportunityLevel)
	}
	if res.BestMatch != nil {
		t.Error("BestMatch should be nil with no candidates")
	}
	if res.AnalysisMethod != common.MethodTFIDF {
		t.Errorf("AnalysisMethod = %v, want tfidf", res.AnalysisMethod)
	}
}

func TestDetectGapSaturatedMarket(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	ctx := context.Background()
	if err := e.LoadCandidates(ctx, []company.Record{upiCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}

	res, err := e.DetectGap(ctx, upiSource)
	if err != nil {
		t.Fatalf("DetectGap: %v", err)
	}
	if res.GapDetected {
		t.Error("near-identical competitor should not be a gap")
	}
	if res.OpportunityLevel != common.LevelSaturated {
		t.Errorf("level = %v, want saturated", res.OpportunityLevel)
	}
	if res.BestMatch == nil || res.BestMatch.MatchedCompanyID != "cand-1" {
		t.Errorf("BestMatch = %+v, want cand-1", res.BestMatch)
	}
}

func TestDetectGapOpenMarket(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	ctx := context.Background()
	if err := e.LoadCandidates(ctx, []company.Record{farmCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}

	res, err := e.DetectGap(ctx, upiSource)
	if err != nil {
		t.Fatalf("DetectGap: %v", err)
	}
	if !res.GapDetected {
		t.Error("dissimilar market should be a gap")
	}
	if res.OpportunityLevel != common.LevelHigh {
		t.Errorf("level = %v, want high", res.OpportunityLevel)
	}
}

func TestBatchAnalyzeTrimsMatches(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	ctx := context.Background()
	if err := e.LoadCandidates(ctx, []company.Record{upiCandidate, farmCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}

	results, err := e.BatchAnalyze(ctx, []company.Record{upiSource, upiSource}, false)
	if err != nil {
		t.Fatalf("BatchAnalyze: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if len(r.AllMatches) != 1 {
			t.Errorf("AllMatches trimmed to %d, want 1", len(r.AllMatches))
		}
	}

	full, err := e.BatchAnalyze(ctx, []company.Record{upiSource}, true)
	if err != nil {
		t.Fatalf("BatchAnalyze: %v", err)
	}
	if len(full[0].AllMatches) != 2 {
		t.Errorf("AllMatches = %d, want all candidates", len(full[0].AllMatches))
	}
}

func TestEmbeddingSimilarityUsesCachedCandidateVectors(t *testing.T) {
	embedder := &mockEmbedder{
		embedFn: func(ctx context.Context, text string) ([]float64, error) {
			if strings.Contains(text, "upi") {
				return []float64{1, 0}, nil
			}
			return []float64{0, 1}, nil
		},
	}
	cfg := testConfig()
	cfg.UseEmbeddings = true
	e := newTestEngine(t, cfg, Deps{Embeddings: embedder})
	ctx := context.Background()

	if err := e.LoadCandidates(ctx, []company.Record{upiCandidate, farmCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	loadCalls := embedder.callCount()
	if loadCalls != 2 {
		t.Fatalf("candidate embedding calls = %d, want 2", loadCalls)
	}

	res, err := e.DetectGap(ctx, upiSource)
	if err != nil {
		t.Fatalf("DetectGap: %v", err)
	}
	if res.AnalysisMethod != common.MethodEmbedding {
		t.Errorf("AnalysisMethod = %v, want embedding", res.AnalysisMethod)
	}
	if res.BestMatch.MatchedCompanyID != "cand-1" {
		t.Errorf("best match = %q, want cand-1", res.BestMatch.MatchedCompanyID)
	}
	// One source embedding per comparison, no re-embedding of candidates.
	if got := embedder.callCount() - loadCalls; got != 2 {
		t.Errorf("comparison embedding calls = %d, want 2", got)
	}
}

func TestEmbeddingFailureFallsBackToTFIDF(t *testing.T) {
	embedder := &mockEmbedder{
		embedFn: func(ctx context.Context, text string) ([]float64, error) {
			return nil, errors.New("provider down")
		},
	}
	cfg := testConfig()
	cfg.UseEmbeddings = true
	e := newTestEngine(t, cfg, Deps{Embeddings: embedder})

	m, err := e.Compare(context.Background(), upiSource, upiCandidate)
	if err != nil {
		t.Fatalf("Compare should degrade, got error: %v", err)
	}
	if m.SimilarityScore <= 0.7 {
		t.Errorf("fallback similarity = %v, want > 0.7 for identical text", m.SimilarityScore)
	}
}

func TestRankAllHonorsContextCancellation(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	if err := e.LoadCandidates(ctx, []company.Record{upiCandidate}); err != nil {
		t.Fatalf("LoadCandidates: %v", err)
	}
	cancel()
	if _, err := e.FindBestMatch(ctx, upiSource, 1); err == nil {
		t.Fatal("expected error after cancellation")
	}
}
