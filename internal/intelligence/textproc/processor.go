package textproc

import (
	"regexp"
	"sort"
	"strings"

	"github.com/indogap/indogap/pkg/errors"
)

// ---------------------------------------------------------------------------
// Similarity methods
// ---------------------------------------------------------------------------

// SimilarityMethod selects the algorithm used by Processor.Similarity.
type SimilarityMethod string

const (
	// MethodTFIDF compares TF-IDF vectors with cosine similarity.
	MethodTFIDF SimilarityMethod = "tfidf"
	// MethodJaccard compares token sets with Jaccard similarity.
	MethodJaccard SimilarityMethod = "jaccard"
	// MethodKeywordOverlap compares extracted keyword sets by overlap ratio.
	MethodKeywordOverlap SimilarityMethod = "keyword_overlap"
)

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// Document is the fully processed form of a raw text.
type Document struct {
	Original       string   `json:"original"`
	Cleaned        string   `json:"cleaned"`
	Tokens         []string `json:"tokens"`
	Stemmed        []string `json:"stemmed"`
	Keywords       []string `json:"keywords"`
	Bigrams        []string `json:"bigrams"`
	Trigrams       []string `json:"trigrams"`
	WordCount      int      `json:"word_count"`
	VocabularySize int      `json:"vocabulary_size"`
}

// ---------------------------------------------------------------------------
// Processor
// ---------------------------------------------------------------------------

// Options configures the text pipeline.  The zero value is not usable;
// call DefaultOptions.
type Options struct {
	MinWordLength  int
	MaxWordLength  int
	UseStemming    bool
	UseBigrams     bool
	MaxKeywords    int
	ExtraStopwords []string
}

// DefaultOptions returns the pipeline settings used across the system.
func DefaultOptions() Options {
	return Options{
		MinWordLength: 2,
		MaxWordLength: 50,
		UseStemming:   true,
		UseBigrams:    true,
		MaxKeywords:   10,
	}
}

// Processor normalizes raw startup descriptions into comparable documents.
// It is safe for concurrent use.
type Processor struct {
	opts      Options
	stopwords map[string]struct{}

	urlRe   *regexp.Regexp
	emailRe *regexp.Regexp
	phoneRe *regexp.Regexp
	punctRe *regexp.Regexp
	spaceRe *regexp.Regexp
}

// NewProcessor builds a Processor with the given options.
func NewProcessor(opts Options) *Processor {
	stop := defaultStopwords()
	for _, w := range opts.ExtraStopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Processor{
		opts:      opts,
		stopwords: stop,
		urlRe:     regexp.MustCompile(`http\S+|www\.\S+`),
		emailRe:   regexp.MustCompile(`\S+@\S+`),
		phoneRe:   regexp.MustCompile(`\b[\d\+\-\(\)]{7,}\b`),
		punctRe:   regexp.MustCompile(`[^\w\s]`),
		spaceRe:   regexp.MustCompile(`\s+`),
	}
}

// Clean lowercases text and strips URLs, email addresses, phone numbers and
// punctuation, collapsing runs of whitespace.
func (p *Processor) Clean(text string) string {
	t := strings.ToLower(text)
	t = p.urlRe.ReplaceAllString(t, "")
	t = p.emailRe.ReplaceAllString(t, "")
	t = p.phoneRe.ReplaceAllString(t, "")
	t = p.punctRe.ReplaceAllString(t, " ")
	t = p.spaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Tokenize splits cleaned text on whitespace and drops tokens outside the
// configured length bounds.
func (p *Processor) Tokenize(cleaned string) []string {
	if cleaned == "" {
		return nil
	}
	fields := strings.Fields(cleaned)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= p.opts.MinWordLength && len(f) <= p.opts.MaxWordLength {
			out = append(out, f)
		}
	}
	return out
}

// RemoveStopwords filters common English words and startup boilerplate.
func (p *Processor) RemoveStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := p.stopwords[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// Process runs the full pipeline over raw text.
func (p *Processor) Process(text string) Document {
	doc := Document{Original: text}
	doc.Cleaned = p.Clean(text)
	tokens := p.RemoveStopwords(p.Tokenize(doc.Cleaned))
	doc.Tokens = tokens
	doc.WordCount = len(tokens)

	if p.opts.UseStemming {
		doc.Stemmed = stemAll(tokens)
	} else {
		doc.Stemmed = tokens
	}
	doc.Keywords = topKeywords(doc.Stemmed, p.opts.MaxKeywords)
	doc.VocabularySize = uniqueCount(doc.Stemmed)

	if p.opts.UseBigrams {
		doc.Bigrams = ngrams(tokens, 2)
		doc.Trigrams = ngrams(tokens, 3)
	}
	return doc
}

// Similarity compares two raw texts with the given method and returns a
// score in [0, 1].  TF-IDF failures degrade to keyword overlap.
func (p *Processor) Similarity(text1, text2 string, method SimilarityMethod) (float64, error) {
	switch method {
	case MethodTFIDF:
		score, err := p.tfidfSimilarity(text1, text2)
		if err != nil {
			return p.keywordOverlap(text1, text2), nil
		}
		return score, nil
	case MethodJaccard:
		return p.jaccardSimilarity(text1, text2), nil
	case MethodKeywordOverlap:
		return p.keywordOverlap(text1, text2), nil
	default:
		return 0, errors.InvalidParam("unknown similarity method: " + string(method))
	}
}

func (p *Processor) tfidfSimilarity(text1, text2 string) (float64, error) {
	v := NewVectorizer(p)
	if err := v.Fit([]string{text1, text2}); err != nil {
		return 0, err
	}
	return v.Similarity(text1, text2)
}

func (p *Processor) jaccardSimilarity(text1, text2 string) float64 {
	set1 := toSet(p.Process(text1).Tokens)
	set2 := toSet(p.Process(text2).Tokens)
	if len(set1) == 0 && len(set2) == 0 {
		return 0
	}
	inter := 0
	for t := range set1 {
		if _, ok := set2[t]; ok {
			inter++
		}
	}
	union := len(set1) + len(set2) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// keywordOverlap measures shared keywords relative to the smaller set.
func (p *Processor) keywordOverlap(text1, text2 string) float64 {
	kw1 := toSet(p.Process(text1).Keywords)
	kw2 := toSet(p.Process(text2).Keywords)
	if len(kw1) == 0 || len(kw2) == 0 {
		return 0
	}
	inter := 0
	for t := range kw1 {
		if _, ok := kw2[t]; ok {
			inter++
		}
	}
	minLen := len(kw1)
	if len(kw2) < minLen {
		minLen = len(kw2)
	}
	return float64(inter) / float64(minLen)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// topKeywords returns the limit most frequent tokens.  Ties keep
// first-appearance order so results are deterministic.
func topKeywords(tokens []string, limit int) []string {
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}
	counts := make(map[string]int, len(tokens))
	first := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for i, t := range tokens {
		if _, ok := counts[t]; !ok {
			first[t] = i
			order = append(order, t)
		}
		counts[t]++
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := counts[order[a]], counts[order[b]]
		if ca != cb {
			return ca > cb
		}
		return first[order[a]] < first[order[b]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func ngrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func uniqueCount(items []string) int {
	return len(toSet(items))
}
