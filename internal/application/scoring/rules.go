package scoring

import (
	"fmt"
	"strings"
)

// India-specific market knowledge backing the rule-based path.  Each list is
// scanned in order against the lowercased tags+description text, so rule
// firing order is deterministic.
var (
	highPaymentReadinessCategories = []string{
		"b2b software", "enterprise software", "saas", "productivity tools",
		"fintech", "financial services", "investment", "insurance",
	}
	lowPaymentReadinessCategories = []string{
		"b2c consumer", "social media", "entertainment", "gaming",
		"consumer apps", "lifestyle", "dating", "dating apps",
	}
	highLogisticsCategories = []string{
		"food delivery", "grocery delivery", "logistics", "supply chain",
		"e-commerce fulfillment", "last mile delivery", "physical products",
	}
	lowLogisticsCategories = []string{
		"software", "saas", "ai tools", "api services", "digital products",
		"online courses", "content platforms",
	}
	highRegulatoryRiskCategories = []string{
		"fintech", "lending", "crypto", "blockchain", "healthcare",
		"education", "gaming", "gambling", "adult", "insurance",
		"financial services", "telecom",
	}
	highCulturalFitCategories = []string{
		"payments", "shopping", "food", "education", "healthcare",
		"mobility", "communication", "social",
	}

	timingRipeCategories      = []string{"ai", "automation", "saas", "b2b software", "fintech"}
	timingSaturatedCategories = []string{"food delivery", "ride sharing", "edtech", "ecommerce"}
	timingEarlyCategories     = []string{"climate tech", "space tech", "synthetic biology"}

	culturalBarriers = []struct {
		keyword string
		warning string
	}{
		{"dating", "Dating apps face social stigma in some segments"},
		{"pet", "Pet culture is emerging but not mainstream"},
		{"subscription", "Subscription models face resistance"},
		{"premium", "Premium pricing requires strong value proposition"},
	}

	westernConcepts = []string{"gym membership", "meal kit", "home security", "elderly care"}
)

// Per-dimension confidence of the rule-based path.  Logistics rules track
// well-understood infrastructure constraints; timing and monopoly calls are
// softer.
const (
	confidenceCulturalFit          = 0.75
	confidenceLogistics            = 0.80
	confidencePaymentReadiness     = 0.75
	confidenceTiming               = 0.70
	confidenceMonopolyPotential    = 0.70
	confidenceRegulatoryRisk       = 0.75
	confidenceExecutionFeasibility = 0.75
)

// ruleInput is the lowercased view of a request shared by all rule
// functions.
type ruleInput struct {
	description string // lowercased description
	combined    string // lowercased tags followed by the description
}

func newRuleInput(req Request) ruleInput {
	parts := make([]string, 0, len(req.Tags)+1)
	for _, t := range req.Tags {
		parts = append(parts, strings.ToLower(t))
	}
	desc := strings.ToLower(req.StartupDescription)
	parts = append(parts, desc)
	return ruleInput{description: desc, combined: strings.Join(parts, " ")}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// capAdd raises score by delta without exceeding limit.
func capAdd(score, delta, limit int) int {
	score += delta
	if score > limit {
		return limit
	}
	return score
}

// floorSub lowers score by delta without going below floor.
func floorSub(score, delta, floor int) int {
	score -= delta
	if score < floor {
		return floor
	}
	return score
}

// clampScore bounds a final dimension score to the 1-10 scale.
func clampScore(score int) int {
	if score > 10 {
		return 10
	}
	if score < 1 {
		return 1
	}
	return score
}

func joinReasoning(parts []string, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "; ")
}

// ─────────────────────────────────────────────────────────────────────────────
// Dimension rules
// ─────────────────────────────────────────────────────────────────────────────

func ruleCulturalFit(in ruleInput) DimensionScore {
	score := 5
	var reasoning, evidence, warnings []string

	for _, cat := range highCulturalFitCategories {
		if strings.Contains(in.combined, cat) {
			score = capAdd(score, 2, 9)
			evidence = append(evidence, fmt.Sprintf("Category '%s' has strong cultural precedent in India", cat))
		}
	}
	for _, barrier := range culturalBarriers {
		if strings.Contains(in.combined, barrier.keyword) {
			score = floorSub(score, 2, 3)
			warnings = append(warnings, barrier.warning)
			reasoning = append(reasoning, fmt.Sprintf("Potential cultural barrier: %s", barrier.keyword))
		}
	}
	for _, concept := range westernConcepts {
		if strings.Contains(in.description, concept) {
			score = capAdd(score, 1, 7)
			reasoning = append(reasoning, fmt.Sprintf("Concept '%s' may need Indian adaptation", concept))
		}
	}

	return DimensionScore{
		Dimension:  DimCulturalFit,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard cultural assessment"),
		Confidence: confidenceCulturalFit,
		Evidence:   evidence,
		Warnings:   warnings,
	}
}

func ruleLogistics(in ruleInput) DimensionScore {
	score := 5
	var reasoning, evidence, warnings []string

	for _, cat := range highLogisticsCategories {
		if strings.Contains(in.combined, cat) {
			score = floorSub(score, 3, 3)
			reasoning = append(reasoning, fmt.Sprintf("Category '%s' requires complex logistics", cat))
			warnings = append(warnings, "Logistics complexity may be challenging in India")
		}
	}
	for _, cat := range lowLogisticsCategories {
		if strings.Contains(in.combined, cat) {
			score = capAdd(score, 2, 9)
			evidence = append(evidence, fmt.Sprintf("Category '%s' is primarily digital", cat))
		}
	}
	if containsAny(in.combined, "offline", "physical store", "warehouse") {
		score = floorSub(score, 2, 4)
		warnings = append(warnings, "Physical infrastructure requirements may be limiting")
	}
	if containsAny(in.combined, "iot", "smart home") {
		score = floorSub(score, 1, 4)
		reasoning = append(reasoning, "IoT devices require reliable connectivity")
	}

	return DimensionScore{
		Dimension:  DimLogistics,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard logistics assessment"),
		Confidence: confidenceLogistics,
		Evidence:   evidence,
		Warnings:   warnings,
	}
}

func rulePaymentReadiness(in ruleInput) DimensionScore {
	score := 5
	var reasoning, evidence, warnings []string

	if containsAny(in.combined, "b2b", "enterprise", "business", "sme") {
		score = capAdd(score, 2, 9)
		evidence = append(evidence, "B2B category - companies are willing to pay for value")
	} else if containsAny(in.combined, "b2c", "consumer", "individual") {
		score = floorSub(score, 2, 4)
		reasoning = append(reasoning, "B2C category - consumer price sensitivity is high")
	}

	for _, cat := range highPaymentReadinessCategories {
		if strings.Contains(in.combined, cat) {
			score = capAdd(score, 1, 9)
			evidence = append(evidence, fmt.Sprintf("Category '%s' has good payment readiness", cat))
		}
	}
	for _, cat := range lowPaymentReadinessCategories {
		if strings.Contains(in.combined, cat) {
			score = floorSub(score, 2, 3)
			warnings = append(warnings, fmt.Sprintf("Category '%s' has low payment willingness", cat))
		}
	}
	if containsAny(in.combined, "freemium", "free") {
		score = floorSub(score, 1, 4)
		reasoning = append(reasoning, "Freemium model common, conversion to paid is challenging")
	}

	return DimensionScore{
		Dimension:  DimPaymentReadiness,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard payment assessment"),
		Confidence: confidencePaymentReadiness,
		Evidence:   evidence,
		Warnings:   warnings,
	}
}

func ruleTiming(in ruleInput) DimensionScore {
	score := 5
	var reasoning, evidence, warnings []string

	for _, cat := range timingRipeCategories {
		if strings.Contains(in.combined, cat) {
			score = capAdd(score, 2, 8)
			evidence = append(evidence, fmt.Sprintf("Category '%s' timing is favorable", cat))
		}
	}
	for _, cat := range timingSaturatedCategories {
		if strings.Contains(in.combined, cat) {
			score = floorSub(score, 3, 3)
			reasoning = append(reasoning, fmt.Sprintf("Category '%s' may be saturated", cat))
			warnings = append(warnings, "Market may be crowded with established players")
		}
	}
	for _, cat := range timingEarlyCategories {
		if strings.Contains(in.combined, cat) {
			score = floorSub(score, 1, 3)
			reasoning = append(reasoning, fmt.Sprintf("Category '%s' may be early", cat))
			warnings = append(warnings, "Market may not be ready")
		}
	}

	return DimensionScore{
		Dimension:  DimTiming,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard timing assessment"),
		Confidence: confidenceTiming,
		Evidence:   evidence,
		Warnings:   warnings,
	}
}

// ruleMonopolyPotential only inspects the description: tags rarely carry
// moat signals and would double-count platform keywords.
func ruleMonopolyPotential(in ruleInput) DimensionScore {
	score := 5
	var reasoning, evidence []string

	if containsAny(in.description, "marketplace", "network", "platform") {
		score = capAdd(score, 2, 9)
		evidence = append(evidence, "Platform business model with network effects potential")
	}
	if containsAny(in.description, "ai", "ml", "algorithm", "data") {
		score = capAdd(score, 1, 8)
		evidence = append(evidence, "AI/ML creates data moats")
	}
	if containsAny(in.description, "workflow", "integration", "embedded") {
		score = capAdd(score, 1, 8)
		evidence = append(evidence, "Integration creates switching costs")
	}
	if containsAny(in.description, "generic", "simple", "basic tool") {
		score = floorSub(score, 2, 4)
		reasoning = append(reasoning, "Category may have low differentiation")
	}

	return DimensionScore{
		Dimension:  DimMonopolyPotential,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard monopoly assessment"),
		Confidence: confidenceMonopolyPotential,
		Evidence:   evidence,
	}
}

// ruleRegulatoryRisk is inverted: a higher score means lower risk.
func ruleRegulatoryRisk(in ruleInput) DimensionScore {
	score := 5
	var reasoning, evidence, warnings []string

	for _, cat := range highRegulatoryRiskCategories {
		if strings.Contains(in.combined, cat) {
			score = floorSub(score, 3, 2)
			reasoning = append(reasoning, fmt.Sprintf("Category '%s' has regulatory considerations", cat))
			warnings = append(warnings, fmt.Sprintf("Regulatory risk in %s sector", cat))
		}
	}
	if containsAny(in.combined, "saas", "software", "tool", "productivity") {
		score = capAdd(score, 2, 8)
		evidence = append(evidence, "Software categories typically have lower regulatory burden")
	}
	if containsAny(in.combined, "data", "user data", "personal") {
		score = floorSub(score, 1, 4)
		reasoning = append(reasoning, "Data protection compliance required")
	}

	return DimensionScore{
		Dimension:  DimRegulatoryRisk,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard regulatory assessment"),
		Confidence: confidenceRegulatoryRisk,
		Evidence:   evidence,
		Warnings:   warnings,
	}
}

// ruleExecutionFeasibility starts above the midpoint: Indian engineering
// talent makes pure-software execution comparatively cheap.
func ruleExecutionFeasibility(in ruleInput) DimensionScore {
	score := 6
	var reasoning, evidence, warnings []string

	if containsAny(in.description, "blockchain", "crypto", "quantum") {
		score = floorSub(score, 2, 4)
		reasoning = append(reasoning, "Specialized technical expertise required")
	} else if containsAny(in.description, "simple", "basic", "straightforward") {
		score = capAdd(score, 1, 9)
		evidence = append(evidence, "Relatively simple to execute")
	}
	if containsAny(in.description, "hardware", "physical", "manufacturing") {
		score = floorSub(score, 2, 4)
		reasoning = append(reasoning, "Hardware/physical products require significant capital")
	}
	if containsAny(in.description, "ai", "ml", "software", "mobile", "app") {
		score = capAdd(score, 1, 9)
		evidence = append(evidence, "Strong software/Mobile development talent in India")
	}
	if containsAny(in.description, "design", "ux", "creative") {
		score = floorSub(score, 1, 5)
		reasoning = append(reasoning, "Design talent may require urban focus")
	}

	return DimensionScore{
		Dimension:  DimExecutionFeasibility,
		Score:      clampScore(score),
		Reasoning:  joinReasoning(reasoning, "Standard execution assessment"),
		Confidence: confidenceExecutionFeasibility,
		Evidence:   evidence,
		Warnings:   warnings,
	}
}

// ruleForDimension dispatches to the rule function for one axis.
func ruleForDimension(d Dimension, in ruleInput) (DimensionScore, bool) {
	switch d {
	case DimCulturalFit:
		return ruleCulturalFit(in), true
	case DimLogistics:
		return ruleLogistics(in), true
	case DimPaymentReadiness:
		return rulePaymentReadiness(in), true
	case DimTiming:
		return ruleTiming(in), true
	case DimMonopolyPotential:
		return ruleMonopolyPotential(in), true
	case DimRegulatoryRisk:
		return ruleRegulatoryRisk(in), true
	case DimExecutionFeasibility:
		return ruleExecutionFeasibility(in), true
	}
	return DimensionScore{}, false
}
