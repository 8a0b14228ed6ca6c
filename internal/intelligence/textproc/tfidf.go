package textproc

import (
	"math"

	"github.com/indogap/indogap/pkg/errors"
)

// Vectorizer maps texts to L2-normalized TF-IDF vectors over the unigram
// and bigram vocabulary of a fitted corpus.  Fit must be called before
// Vector or Similarity; a fitted Vectorizer is safe for concurrent reads.
type Vectorizer struct {
	proc   *Processor
	vocab  map[string]int // term -> column index
	idf    []float64      // per-column inverse document frequency
	fitted bool
}

// NewVectorizer returns an unfitted Vectorizer sharing the processor's
// cleaning and tokenization pipeline.
func NewVectorizer(proc *Processor) *Vectorizer {
	return &Vectorizer{proc: proc}
}

// terms returns the unigram and bigram features of a text.
func (v *Vectorizer) terms(text string) []string {
	doc := v.proc.Process(text)
	out := make([]string, 0, len(doc.Tokens)+len(doc.Bigrams))
	out = append(out, doc.Tokens...)
	out = append(out, doc.Bigrams...)
	return out
}

// Fit learns the vocabulary and document frequencies from the corpus.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New(errors.ErrCodeVectorizerUnfit, "cannot fit vectorizer on empty corpus")
	}
	vocab := make(map[string]int)
	df := make([]int, 0, 64)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range v.terms(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			idx, ok := vocab[term]
			if !ok {
				idx = len(vocab)
				vocab[term] = idx
				df = append(df, 0)
			}
			df[idx]++
		}
	}
	if len(vocab) == 0 {
		return errors.New(errors.ErrCodeVectorizerUnfit, "corpus produced an empty vocabulary")
	}

	n := float64(len(corpus))
	idf := make([]float64, len(df))
	for i, d := range df {
		// Smoothed idf keeps every weight positive and avoids
		// division by zero for terms present in all documents.
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	v.vocab = vocab
	v.idf = idf
	v.fitted = true
	return nil
}

// Vector returns the L2-normalized TF-IDF vector of text in the fitted
// vocabulary.  Out-of-vocabulary terms are ignored.
func (v *Vectorizer) Vector(text string) ([]float64, error) {
	if !v.fitted {
		return nil, errors.New(errors.ErrCodeVectorizerUnfit, "vectorizer has not been fitted")
	}
	vec := make([]float64, len(v.vocab))
	for _, term := range v.terms(text) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// Similarity returns the cosine similarity of two texts in [0, 1].
func (v *Vectorizer) Similarity(text1, text2 string) (float64, error) {
	vec1, err := v.Vector(text1)
	if err != nil {
		return 0, err
	}
	vec2, err := v.Vector(text2)
	if err != nil {
		return 0, err
	}
	return Cosine(vec1, vec2), nil
}

// Cosine computes cosine similarity between two dense vectors.  Vectors of
// differing length or zero magnitude score zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
