package category

import (
	"sort"
	"strings"
)

// keywordWeight scales a keyword's contribution by its length, so longer and
// more specific phrases dominate short generic ones.
const keywordWeight = 0.1

// DefaultTopN is the number of inferred categories returned when the caller
// does not ask for more.
const DefaultTopN = 2

// neutralScore is returned when no signal exists either way.
const neutralScore = 0.5

// Inference is a category guess with a score normalized to the strongest
// match, so the leading category always scores 1.0.
type Inference struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Matcher infers market categories from free text and compares category
// label sets.  The zero value is ready to use.
type Matcher struct{}

// NewMatcher returns a Matcher over the built-in taxonomy.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Infer returns the topN categories whose keywords appear in text, scored
// relative to the best match.  Text with no category signal defaults to a
// neutral consumer classification.
func (m *Matcher) Infer(text string, topN int) []Inference {
	if topN <= 0 {
		topN = DefaultTopN
	}
	lower := strings.ToLower(text)

	scores := make(map[string]float64, len(keywordTaxonomy))
	for cat, keywords := range keywordTaxonomy {
		var score float64
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score += float64(len(kw)) * keywordWeight
			}
		}
		scores[cat] = score
	}

	ranked := make([]Inference, 0, len(scores))
	for cat, score := range scores {
		ranked = append(ranked, Inference{Category: cat, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Category < ranked[j].Category
	})

	if ranked[0].Score == 0 {
		return []Inference{{Category: "consumer", Score: neutralScore}}
	}

	max := ranked[0].Score
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Score /= max
	}
	return ranked
}

// Match computes the Jaccard similarity of two category label sets.
// Comparison is case-insensitive.  A missing side is neutral rather than
// zero: absent labels carry no evidence of dissimilarity.
func (m *Matcher) Match(source, target []string) float64 {
	if len(source) == 0 || len(target) == 0 {
		return neutralScore
	}
	srcSet := lowerSet(source)
	tgtSet := lowerSet(target)

	inter := 0
	for c := range srcSet {
		if _, ok := tgtSet[c]; ok {
			inter++
		}
	}
	union := len(srcSet) + len(tgtSet) - inter
	if union == 0 {
		return neutralScore
	}
	return float64(inter) / float64(union)
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(it)] = struct{}{}
	}
	return set
}
