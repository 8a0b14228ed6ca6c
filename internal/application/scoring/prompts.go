package scoring

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/indogap/indogap/pkg/errors"
)

// systemPrompt frames every delegated scoring call.
const systemPrompt = `You are an expert analyst evaluating business opportunities for the Indian market.
Your task is to score each dimension on a scale of 1-10 based on the opportunity details and provide clear reasoning.
Consider India's unique market characteristics including:
- Large population with diverse languages and income levels
- Growing smartphone and internet penetration
- Strong preference for mobile-first solutions
- Price sensitivity in consumer markets
- Trust and reliability concerns
- Regulatory environment
- Infrastructure limitations in some areas

Provide scores and reasoning for each dimension.
`

// promptContext is the data bound into a dimension prompt template.
type promptContext struct {
	Name        string
	Description string
	Tags        string
	Category    string
}

var dimensionPrompts = map[Dimension]*template.Template{
	DimCulturalFit: mustPrompt("cultural_fit", `
Evaluate CULTURAL FIT: Does the behavior/habit exist in India?

Consider:
- Do Indians already engage in this behavior?
- Is there cultural acceptance of this product/service?
- Are there religious, social, or traditional barriers?
- Is this a Western concept that needs adaptation?

Startup: {{.Name}}
Description: {{.Description}}
Tags: {{.Tags}}

Score (1-10) and explain your reasoning.
`),
	DimLogistics: mustPrompt("logistics", `
Evaluate LOGISTICS: Is Indian infrastructure ready for this?

Consider:
- Does this require physical infrastructure (delivery, storage, etc.)?
- Is Indian logistics and supply chain adequate?
- Are there last-mile delivery challenges?
- Dependency on reliable electricity, internet, or transportation?

Startup: {{.Name}}
Description: {{.Description}}
Category: {{.Category}}

Score (1-10) and explain your reasoning.
`),
	DimPaymentReadiness: mustPrompt("payment_readiness", `
Evaluate PAYMENT READINESS: Are Indians ready to pay for this?

Consider:
- Is this a B2B (usually pays) or B2C (price sensitive)?
- What's the pricing expectation vs Indian purchasing power?
- Are there free alternatives available?
- Is there willingness to pay for convenience/quality?

Startup: {{.Name}}
Description: {{.Description}}
Category: {{.Category}}

Score (1-10) and explain your reasoning.
`),
	DimTiming: mustPrompt("timing", `
Evaluate TIMING: Is this the right time for this opportunity?

Consider:
- Is the market too early, right, or too late?
- Are enabling factors (internet, smartphones, etc.) in place?
- Is there growing or declining demand?
- Are macro trends favorable?

Startup: {{.Name}}
Description: {{.Description}}
Category: {{.Category}}

Score (1-10) and explain your reasoning.
`),
	DimMonopolyPotential: mustPrompt("monopoly_potential", `
Evaluate MONOPOLY POTENTIAL: Does this tend toward winner-take-all?

Consider:
- Network effects potential?
- Data advantages?
- Brand loyalty in this category?
- Switching costs for users?
- Economies of scale?

Startup: {{.Name}}
Description: {{.Description}}
Category: {{.Category}}

Score (1-10) and explain your reasoning.
`),
	DimRegulatoryRisk: mustPrompt("regulatory_risk", `
Evaluate REGULATORY RISK: What's the government intervention risk?

Consider:
- Is this a regulated sector (fintech, healthcare, education)?
- Are there licensing requirements?
- Data localization requirements?
- Recent regulatory changes or upcoming legislation?

Startup: {{.Name}}
Description: {{.Description}}
Category: {{.Category}}

Score (1-10) and explain your reasoning.
`),
	DimExecutionFeasibility: mustPrompt("execution_feasibility", `
Evaluate EXECUTION FEASIBILITY: Can a small team build this?

Consider:
- Technical complexity?
- Capital requirements?
- Talent availability in India?
- Time to MVP?
- Scaling challenges?

Startup: {{.Name}}
Description: {{.Description}}
Category: {{.Category}}

Score (1-10) and explain your reasoning.
`),
}

func mustPrompt(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// renderPrompt binds a request into the prompt template for one dimension.
// Category is the first two tags, the coarse label the prompts expect.
func renderPrompt(d Dimension, req Request) (string, error) {
	tmpl, ok := dimensionPrompts[d]
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnknownDimension, "no prompt for dimension %q", d)
	}
	category := req.Tags
	if len(category) > 2 {
		category = category[:2]
	}
	ctx := promptContext{
		Name:        req.StartupName,
		Description: req.StartupDescription,
		Tags:        strings.Join(req.Tags, ", "),
		Category:    strings.Join(category, ", "),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "prompt rendering failed")
	}
	return buf.String(), nil
}
