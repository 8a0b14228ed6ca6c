package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indogap/indogap/internal/application/similarity"
	"github.com/indogap/indogap/internal/domain/company"
	"github.com/indogap/indogap/internal/domain/opportunity"
)

// matchOptions holds flags for the match command.
type matchOptions struct {
	SourceFile     string
	CandidatesFile string
	Top            int
	Threshold      float64
	AllMatches     bool
}

// newMatchCmd creates the match command: similarity search without scoring.
func newMatchCmd() *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the closest Indian counterparts for source companies",
		Long: "Match compares each source company against the candidate set and reports\n" +
			"the ranked matches and whether a market gap exists. No dimension scoring\n" +
			"is performed.",
		Example: `  indogap match --source startups.json --candidates indian_companies.json --top 5
  indogap match -s startups.json -t indian_companies.json --all-matches -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.SourceFile, "source", "s", "", "JSON file with source companies (required)")
	f.StringVarP(&opts.CandidatesFile, "candidates", "t", "", "JSON file with candidate companies (required)")
	f.IntVar(&opts.Top, "top", 0, "report the top N matches per source (0 = gap detection default)")
	f.Float64Var(&opts.Threshold, "threshold", 0, "minimum similarity for --all-matches (0 = configured default)")
	f.BoolVar(&opts.AllMatches, "all-matches", false, "keep every ranked match instead of only the best")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("candidates")

	return cmd
}

func runMatch(cmd *cobra.Command, opts *matchOptions) error {
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

	var results []similarity.Result
	switch {
	case opts.AllMatches:
		for _, src := range sources {
			matches, err := cliCtx.Engine.FindAllMatches(ctx, src, opts.Threshold)
			if err != nil {
				return err
			}
			results = append(results, rankedResult(src, matches))
		}
	case opts.Top > 0:
		for _, src := range sources {
			matches, err := cliCtx.Engine.FindBestMatch(ctx, src, opts.Top)
			if err != nil {
				return err
			}
			results = append(results, rankedResult(src, matches))
		}
	default:
		results, err = cliCtx.Engine.BatchAnalyze(ctx, sources, false)
		if err != nil {
			return err
		}
	}

	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, results)
	}
	for _, res := range results {
		if err := printText(cmd, formatMatchResult(res)); err != nil {
			return err
		}
	}
	return nil
}

// rankedResult wraps a ranked match list in a Result without gap
// classification.
func rankedResult(src company.Record, matches []opportunity.Match) similarity.Result {
	res := similarity.Result{SourceID: src.ID, SourceName: src.DisplayName(), AllMatches: matches}
	if len(matches) > 0 {
		best := matches[0]
		res.BestMatch = &best
	}
	return res
}

func formatMatchResult(res similarity.Result) string {
	var sb strings.Builder
	if res.BestMatch == nil {
		fmt.Fprintf(&sb, "%s: no matches found", res.SourceName)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s: best match %s (similarity %.2f, gap %.2f)",
		res.SourceName, res.BestMatch.MatchedCompanyName,
		res.BestMatch.SimilarityScore, res.BestMatch.GapScore)
	if res.GapDetected {
		fmt.Fprintf(&sb, ", %s opportunity", res.OpportunityLevel)
	}
	return sb.String()
}
