package textproc

import (
	"strings"
	"testing"
)

func newTestProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

func TestCleanStripsNoise(t *testing.T) {
	p := newTestProcessor()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"url", "Visit https://example.com for details", "visit for details"},
		{"www url", "see www.example.com today", "see today"},
		{"email", "contact sales@example.com now", "contact now"},
		{"phone", "call +91-9876543210 anytime", "call anytime"},
		{"punctuation", "AI-powered payments, instantly!", "ai powered payments instantly"},
		{"whitespace", "  too   many \t spaces \n", "too many spaces"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	p := newTestProcessor()
	texts := []string{
		"UPI payments for small merchants, instantly.",
		"Visit www.acme.in or email hi@acme.in",
		"voice AI for customer support teams",
	}
	for _, text := range texts {
		once := p.Clean(text)
		if twice := p.Clean(once); twice != once {
			t.Errorf("Clean not idempotent: %q then %q", once, twice)
		}
	}
}

func TestTokenizeLengthBounds(t *testing.T) {
	p := newTestProcessor()
	long := strings.Repeat("x", 51)
	got := p.Tokenize("a ok fine " + long)
	want := []string{"ok", "fine"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if toks := p.Tokenize(""); toks != nil {
		t.Errorf("Tokenize(empty) = %v, want nil", toks)
	}
}

func TestRemoveStopwords(t *testing.T) {
	p := newTestProcessor()
	got := p.RemoveStopwords([]string{"the", "payment", "platform", "for", "merchants"})
	want := []string{"payment", "merchants"}
	if len(got) != len(want) {
		t.Fatalf("RemoveStopwords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("filtered[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProcessorExtraStopwords(t *testing.T) {
	opts := DefaultOptions()
	opts.ExtraStopwords = []string{"India"}
	p := NewProcessor(opts)
	doc := p.Process("payments in india for merchants")
	for _, tok := range doc.Tokens {
		if tok == "india" {
			t.Fatal("extra stopword survived the pipeline")
		}
	}
}

func TestProcessPipeline(t *testing.T) {
	p := newTestProcessor()
	doc := p.Process("Instant UPI payments for small merchants. Merchants settle payments daily.")

	if doc.Cleaned == "" {
		t.Fatal("cleaned text is empty")
	}
	if doc.WordCount != len(doc.Tokens) {
		t.Errorf("WordCount = %d, want %d", doc.WordCount, len(doc.Tokens))
	}
	if len(doc.Stemmed) != len(doc.Tokens) {
		t.Errorf("Stemmed length %d != Tokens length %d", len(doc.Stemmed), len(doc.Tokens))
	}
	// "payments" and "merchants" each appear twice and should lead the
	// keyword list after stemming.
	if len(doc.Keywords) < 2 {
		t.Fatalf("Keywords = %v, want at least two entries", doc.Keywords)
	}
	lead := map[string]bool{doc.Keywords[0]: true, doc.Keywords[1]: true}
	if !lead["payment"] || !lead["merchant"] {
		t.Errorf("leading keywords = %v, want payment and merchant first", doc.Keywords[:2])
	}
	if doc.VocabularySize == 0 || doc.VocabularySize > len(doc.Stemmed) {
		t.Errorf("VocabularySize = %d out of range", doc.VocabularySize)
	}
}

func TestProcessNGrams(t *testing.T) {
	p := newTestProcessor()
	doc := p.Process("instant upi payments merchants")

	wantBigrams := []string{"instant upi", "upi payments", "payments merchants"}
	if len(doc.Bigrams) != len(wantBigrams) {
		t.Fatalf("Bigrams = %v, want %v", doc.Bigrams, wantBigrams)
	}
	for i := range wantBigrams {
		if doc.Bigrams[i] != wantBigrams[i] {
			t.Errorf("bigram[%d] = %q, want %q", i, doc.Bigrams[i], wantBigrams[i])
		}
	}
	if len(doc.Trigrams) != 2 {
		t.Errorf("Trigrams = %v, want two entries", doc.Trigrams)
	}

	opts := DefaultOptions()
	opts.UseBigrams = false
	flat := NewProcessor(opts).Process("instant upi payments merchants")
	if flat.Bigrams != nil || flat.Trigrams != nil {
		t.Error("n-grams produced with UseBigrams disabled")
	}
}

func TestProcessWithoutStemming(t *testing.T) {
	opts := DefaultOptions()
	opts.UseStemming = false
	p := NewProcessor(opts)
	doc := p.Process("instant payments merchants")
	for i, tok := range doc.Tokens {
		if doc.Stemmed[i] != tok {
			t.Errorf("Stemmed[%d] = %q, want raw token %q", i, doc.Stemmed[i], tok)
		}
	}
}

func TestTopKeywordsOrdering(t *testing.T) {
	got := topKeywords([]string{"b", "a", "b", "c", "a", "b"}, 2)
	want := []string{"b", "a"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("topKeywords = %v, want %v", got, want)
	}

	// Ties resolve by first appearance.
	tied := topKeywords([]string{"x", "y", "z"}, 3)
	if tied[0] != "x" || tied[1] != "y" || tied[2] != "z" {
		t.Errorf("tie order = %v, want first-appearance order", tied)
	}

	if topKeywords(nil, 5) != nil {
		t.Error("topKeywords(nil) should be nil")
	}
}

func TestSimilarityJaccard(t *testing.T) {
	p := newTestProcessor()

	same, err := p.Similarity(
		"instant upi payments merchants",
		"instant upi payments merchants",
		MethodJaccard,
	)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if same != 1.0 {
		t.Errorf("identical texts jaccard = %v, want 1.0", same)
	}

	none, err := p.Similarity(
		"instant upi payments merchants",
		"organic vegetable farming cooperative",
		MethodJaccard,
	)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if none != 0 {
		t.Errorf("disjoint texts jaccard = %v, want 0", none)
	}

	empty, err := p.Similarity("", "", MethodJaccard)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if empty != 0 {
		t.Errorf("empty texts jaccard = %v, want 0", empty)
	}
}

func TestSimilarityKeywordOverlap(t *testing.T) {
	p := newTestProcessor()

	score, err := p.Similarity(
		"upi payments merchants settlement",
		"upi payments merchants lending credit",
		MethodKeywordOverlap,
	)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if score <= 0.5 {
		t.Errorf("overlapping keyword score = %v, want > 0.5", score)
	}

	empty, err := p.Similarity("", "upi payments", MethodKeywordOverlap)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if empty != 0 {
		t.Errorf("empty side overlap = %v, want 0", empty)
	}
}

func TestSimilarityTFIDF(t *testing.T) {
	p := newTestProcessor()

	same, err := p.Similarity(
		"instant upi payments for merchants across india",
		"instant upi payments for merchants across india",
		MethodTFIDF,
	)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if same < 0.999 {
		t.Errorf("identical texts tfidf = %v, want ~1.0", same)
	}

	related, err := p.Similarity(
		"instant upi payments for merchants",
		"upi payment settlement for small merchants",
		MethodTFIDF,
	)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	unrelated, err := p.Similarity(
		"instant upi payments for merchants",
		"organic vegetable farming cooperative",
		MethodTFIDF,
	)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if related <= unrelated {
		t.Errorf("related score %v should exceed unrelated score %v", related, unrelated)
	}
}

func TestSimilarityTFIDFDegradesOnEmptyVocabulary(t *testing.T) {
	p := newTestProcessor()
	// Both texts reduce to nothing after cleaning, so TF-IDF cannot fit
	// and the comparison falls back to keyword overlap.
	score, err := p.Similarity("!!!", "???", MethodTFIDF)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if score != 0 {
		t.Errorf("degraded score = %v, want 0", score)
	}
}

func TestSimilarityUnknownMethod(t *testing.T) {
	p := newTestProcessor()
	if _, err := p.Similarity("a b", "c d", SimilarityMethod("bogus")); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
