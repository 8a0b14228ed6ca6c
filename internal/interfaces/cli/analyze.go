package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/indogap/indogap/internal/domain/opportunity"
)

// analyzeOptions holds flags for the analyze command.
type analyzeOptions struct {
	SourceFile     string
	CandidatesFile string
	Concurrency    int
}

// newAnalyzeCmd creates the analyze command: full pipeline runs producing
// opportunity aggregates.
func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run gap detection and scoring for source companies",
		Long: "Analyze loads candidate companies, compares every source company against\n" +
			"them, and scores detected gaps across the seven dimensions of India-market\n" +
			"fit. Results are full opportunity records.",
		Example: `  indogap analyze --source startups.json --candidates indian_companies.json
  indogap analyze --source startups.json --candidates indian_companies.json --concurrency 8 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.SourceFile, "source", "s", "", "JSON file with source companies (required)")
	f.StringVarP(&opts.CandidatesFile, "candidates", "t", "", "JSON file with candidate companies (required)")
	f.IntVar(&opts.Concurrency, "concurrency", 1, "number of sources analyzed in parallel")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("candidates")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	sources, err := loadRecords(opts.SourceFile)
	if err != nil {
		return err
	}
	candidates, err := loadRecords(opts.CandidatesFile)
	if err != nil {
		return err
	}

	if err := cliCtx.Engine.LoadCandidates(ctx, candidates); err != nil {
		return err
	}

	var out []analysisItem
	var failures int
	items := cliCtx.Analyzer.BatchAnalyzeConcurrent(ctx, sources, opts.Concurrency)
	for _, item := range items {
		entry := analysisItem{
			SourceID:    item.SourceID,
			SourceName:  item.SourceName,
			Opportunity: item.Opportunity,
		}
		if item.Err != nil {
			entry.Error = item.Err.Error()
			failures++
		}
		out = append(out, entry)
	}

	if err := printItems(cmd, cliCtx, out); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d analyses failed", failures, len(items))
	}
	return nil
}

// analysisItem is the serialized form of one batch entry.
type analysisItem struct {
	SourceID    string                   `json:"source_id"`
	SourceName  string                   `json:"source_name"`
	Opportunity *opportunity.Opportunity `json:"opportunity,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// printItems writes the batch as a JSON array or one text line per entry.
func printItems(cmd *cobra.Command, cliCtx *CLIContext, items []analysisItem) error {
	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, items)
	}
	for _, item := range items {
		if err := printText(cmd, item); err != nil {
			return err
		}
	}
	return nil
}

func (i analysisItem) String() string {
	if i.Error != "" {
		return fmt.Sprintf("%s: analysis failed: %s", i.SourceName, i.Error)
	}
	o := i.Opportunity
	return fmt.Sprintf("%s: gap=%v level=%s score=%.2f recommendation=%q",
		i.SourceName, o.GapDetected, o.Level, o.OverallScore, o.Recommendation)
}
