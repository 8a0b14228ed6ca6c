package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indogap/indogap/internal/application/scoring"
	"github.com/indogap/indogap/pkg/types/common"
)

// scoreOptions holds flags for the score command.
type scoreOptions struct {
	SourceFile string
	Method     string
	Bare       bool
}

// newScoreCmd creates the score command: seven-dimension scoring without
// similarity search.
func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score companies across the seven dimensions of India-market fit",
		Long: "Score evaluates each company's fit for the Indian market across cultural\n" +
			"fit, logistics, payment readiness, timing, monopoly potential, regulatory\n" +
			"risk, and execution feasibility.",
		Example: `  indogap score --source startups.json
  indogap score -s startups.json --method llm_based -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.SourceFile, "source", "s", "", "JSON file with source companies (required)")
	f.StringVar(&opts.Method, "method", "", "scoring method (rule_based, llm_based; default from config)")
	f.BoolVar(&opts.Bare, "bare", false, "omit reasoning and recommendations")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	sources, err := loadRecords(opts.SourceFile)
	if err != nil {
		return err
	}

	var method common.ScoringMethod
	switch opts.Method {
	case "":
	case string(common.ScoringRuleBased):
		method = common.ScoringRuleBased
	case string(common.ScoringLLMBased):
		method = common.ScoringLLMBased
	default:
		return fmt.Errorf("unknown scoring method %q (want rule_based or llm_based)", opts.Method)
	}

	var responses []scoring.Response
	for _, src := range sources {
		req := scoring.Request{
			OpportunityID:          src.ID,
			StartupName:            src.Name,
			StartupDescription:     src.Description,
			SourceBatch:            src.SourceBatch,
			Tags:                   src.Tags,
			IncludeReasoning:       !opts.Bare,
			IncludeRecommendations: !opts.Bare,
		}
		var resp scoring.Response
		if method == "" {
			resp = cliCtx.Scorer.Score(ctx, req)
		} else {
			resp = cliCtx.Scorer.ScoreWith(ctx, req, method)
		}
		responses = append(responses, resp)
	}

	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, responses)
	}
	for i, resp := range responses {
		if err := printText(cmd, formatScoreResponse(sources[i].DisplayName(), resp)); err != nil {
			return err
		}
	}
	return nil
}

func formatScoreResponse(name string, resp scoring.Response) string {
	if len(resp.Errors) > 0 {
		return fmt.Sprintf("%s: scoring failed: %s", name, strings.Join(resp.Errors, "; "))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: overall %.2f (%s, %s)", name, resp.OverallScore, resp.OpportunityLevel, resp.Method)
	for _, d := range scoring.Dimensions() {
		if ds, ok := resp.Dimension(d); ok {
			fmt.Fprintf(&sb, "\n  %-22s %2d/10", d.Title(), ds.Score)
		}
	}
	if resp.Recommendation != "" {
		fmt.Fprintf(&sb, "\n  %s", resp.Recommendation)
	}
	return sb.String()
}
