package textproc

// englishStopwords is the standard English stopword list.  Tokens are matched
// after cleaning, so contraction fragments ("don", "t", "ve") appear as
// standalone entries.
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
	"what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing",
	"a", "an", "the", "and", "but", "if", "or", "because", "as",
	"until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in",
	"out", "on", "off", "over", "under", "again", "further", "then",
	"once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than",
	"too", "very", "s", "t", "can", "will", "just", "don", "should",
	"now", "d", "ll", "m", "o", "re", "ve", "y",
	"ain", "aren", "couldn", "didn", "doesn", "hadn", "hasn",
	"haven", "isn", "ma", "mightn", "mustn", "needn", "shan",
	"shouldn", "wasn", "weren", "won", "wouldn",
}

// domainNoiseWords are generic business words that appear in nearly every
// company description and would otherwise dominate keyword and lexical
// comparisons.
var domainNoiseWords = []string{
	"startup", "company", "platform", "service", "app", "application",
	"software", "technology", "tech", "solution", "business", "model",
	"help", "enable", "provide", "offer", "build", "create", "make",
	"user", "users", "customer", "customers", "client", "clients",
	"want", "need", "use", "using", "used", "new", "also", "one",
	"way", "helps", "helped", "helping", "allows", "let",
	"lets", "allowing", "designed", "built",
	"world", "leading", "top", "best", "first", "only",
}

// defaultStopwords returns the union of the English and domain noise lists
// as a lookup set.
func defaultStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopwords)+len(domainNoiseWords))
	for _, w := range englishStopwords {
		set[w] = struct{}{}
	}
	for _, w := range domainNoiseWords {
		set[w] = struct{}{}
	}
	return set
}
