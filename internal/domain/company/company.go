// Package company defines the CompanyRecord value type consumed by the
// similarity engine.  Records are supplied by the caller from whatever
// upstream store the application chooses; the engine never mutates them.
package company

import "strings"

// Record describes a company for comparison purposes.  Both source companies
// (the foreign startups being evaluated) and candidates (the known domestic
// companies) use the same shape.
type Record struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description,omitempty"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"long_description,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Categories       []string `json:"categories,omitempty"`

	// SourceBatch carries the accelerator batch label when the record comes
	// from a batch-organized source.
	SourceBatch string `json:"source_batch,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}

// ComparisonText joins the record's textual fields into the single string
// used for description similarity.  Field order is fixed and empty fields
// are skipped.
func (r Record) ComparisonText() string {
	parts := []string{
		r.Name,
		r.ShortDescription,
		r.Description,
		r.LongDescription,
		strings.Join(r.Tags, " "),
		strings.Join(r.Categories, " "),
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// CategoryLabels returns the record's tags and categories as one list, in
// input order.  These labels feed tag-overlap matching; they are distinct
// from categories inferred from free text.
func (r Record) CategoryLabels() []string {
	labels := make([]string, 0, len(r.Tags)+len(r.Categories))
	labels = append(labels, r.Tags...)
	labels = append(labels, r.Categories...)
	return labels
}

// DisplayName returns the record name or "Unknown" when unset.
func (r Record) DisplayName() string {
	if r.Name == "" {
		return "Unknown"
	}
	return r.Name
}
