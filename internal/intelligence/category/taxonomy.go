package category

// keywordTaxonomy maps each market category to the vocabulary that signals
// it.  Scoring iterates the slices directly, so a keyword listed twice
// contributes twice.
var keywordTaxonomy = map[string][]string{
	"fintech": {
		"payment", "banking", "finance", "financial", "lending", "credit",
		"invest", "insurance", "wealth", "trading", "crypto", "blockchain",
		"neobank", "pos", "upi", "wallet", "financial", "fintech",
	},
	"e-commerce": {
		"e-commerce", "ecommerce", "shop", "retail", "marketplace",
		"selling", "purchase", "cart", "checkout", "online store",
		"d2c", "direct to consumer", "b2c",
	},
	"saas": {
		"saas", "software", "subscription", "b2b", "enterprise",
		"workflow", "automation", "productivity", "tool", "api",
		"cloud", "platform as a service",
	},
	"healthtech": {
		"health", "medical", "healthcare", "patient", "doctor",
		"hospital", "pharma", "wellness", "fitness", "telehealth",
		"telemedicine", "clinical", "diagnosis",
	},
	"edtech": {
		"education", "learning", "course", "student", "school",
		"training", "tutoring", "skill", "academic", "university",
		"elearning", "online learning", "k12",
	},
	"food delivery": {
		"food", "delivery", "restaurant", "eat", "meal",
		"grocery", "kitchen", "catering", "takeout", "dark kitchen",
		"quick commerce", "hyperlocal",
	},
	"logistics": {
		"logistics", "shipping", "transport", "freight",
		"supply chain", "warehouse", "inventory", "fulfillment",
		"last mile", "delivery",
	},
	"b2b": {
		"b2b", "business to business", "sme", "smb", "enterprise",
		"procurement", "supply chain", "wholesale",
	},
	"ai/ml": {
		"artificial intelligence", "machine learning", "ai", "ml",
		"neural", "deep learning", "model", "algorithm", "nlp",
		"computer vision", "generative", "llm", "gpt",
	},
	"consumer": {
		"consumer", "app", "mobile", "personal", "lifestyle", "daily",
		"end user", "individual", "retail",
	},
	"mobility": {
		"transport", "taxi", "ride", "mobility", "vehicle", "travel",
		"transportation", "commute", "bike", "scooter",
	},
	"hr tech": {
		"hr", "human resource", "recruiting", "hiring", "talent",
		"payroll", "employee", "workforce", "performance", "hris",
	},
	"real estate": {
		"real estate", "property", "housing", "rent", "lease",
		"apartment", "commercial", "mortgage", "proptech",
	},
	"insurtech": {
		"insurance", "policy", "coverage", "claim", "underwriting",
		"insurtech", "risk",
	},
	"agritech": {
		"agriculture", "farming", "crop", "farmer", "agritech",
		"food supply", "agri", "farm",
	},
	"climate tech": {
		"climate", "sustainability", "carbon", "renewable",
		"energy", "environment", "green", "clean tech", "esg",
	},
	"deeptech": {
		"deeptech", "semiconductor", "chip", "hardware", "robotics",
		"quantum", "biotech", "advanced manufacturing", "space",
	},
}

// Categories returns all known category names.
func Categories() []string {
	out := make([]string, 0, len(keywordTaxonomy))
	for name := range keywordTaxonomy {
		out = append(out, name)
	}
	return out
}
