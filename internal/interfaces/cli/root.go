// Package cli implements the indogap command-line interface: the root
// command with global flags and the analyze, match, and score subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indogap/indogap/internal/application/analysis"
	"github.com/indogap/indogap/internal/application/scoring"
	"github.com/indogap/indogap/internal/application/similarity"
	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/prometheus"
	"github.com/indogap/indogap/internal/infrastructure/providers/ollama"
	"github.com/indogap/indogap/internal/infrastructure/providers/openai"
	"github.com/indogap/indogap/internal/intelligence/category"
	"github.com/indogap/indogap/internal/intelligence/textproc"
	"github.com/indogap/indogap/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
}

// CLIContext carries the initialized pipeline through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Engine       similarity.Engine
	Scorer       scoring.Scorer
	Analyzer     analysis.Analyzer
	OutputFormat string
	Verbose      bool
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "indogap",
		Short: "indogap — market gap discovery for the Indian startup ecosystem",
		Long: "indogap compares global startup concepts against Indian market incumbents,\n" +
			"detects market gaps, and scores opportunities across seven dimensions of\n" +
			"India-market fit.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./indogap.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(
		newAnalyzeCmd(),
		newMatchCmd(),
		newScoreCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration, builds the pipeline, and stores the
// CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx, err := buildContext(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("pipeline initialization failed: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), cliContextKey{}, cliCtx)
	cmd.SetContext(ctx)
	return nil
}

// initConfig loads configuration with priority: flag > search paths > env.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./indogap.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".indogap", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/indogap/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// initLogger creates a console logger writing to stderr so command output on
// stdout stays machine-readable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// initMetrics builds the pipeline metrics.  When exposition is enabled the
// registry is served on the configured address for the lifetime of the
// process; otherwise all recorders are no-ops.
func initMetrics(cfg *config.Config, logger logging.Logger) (*prometheus.AnalysisMetrics, error) {
	if !cfg.Metrics.Enabled {
		return prometheus.NewNopAnalysisMetrics(), nil
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger.Named("metrics"))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	go func() {
		if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
			logger.Error("metrics server stopped",
				logging.String("addr", cfg.Metrics.Addr), logging.Err(err))
		}
	}()
	logger.Info("metrics exposition enabled", logging.String("addr", cfg.Metrics.Addr))

	return prometheus.NewAnalysisMetrics(collector), nil
}

// buildContext wires the full pipeline from configuration.  Providers are
// only constructed when the configuration enables them.
func buildContext(cfg *config.Config, logger logging.Logger, opts *RootOptions) (*CLIContext, error) {
	metrics, err := initMetrics(cfg, logger)
	if err != nil {
		return nil, err
	}

	procOpts := textproc.DefaultOptions()
	procOpts.MinWordLength = cfg.Text.MinWordLength
	procOpts.MaxWordLength = cfg.Text.MaxWordLength
	procOpts.UseStemming = cfg.Text.UseStemming
	procOpts.UseBigrams = cfg.Text.UseBigrams
	proc := textproc.NewProcessor(procOpts)
	matcher := category.NewMatcher()

	engineDeps := similarity.Deps{
		Processor: proc,
		Matcher:   matcher,
		Logger:    logger.Named("similarity"),
		Metrics:   metrics,
	}
	if cfg.Similarity.UseEmbeddings {
		embedder, err := openai.NewClient(cfg.Providers.OpenAI, openai.Deps{
			Logger:  logger.Named("openai"),
			Metrics: metrics,
		})
		if err != nil {
			return nil, err
		}
		engineDeps.Embeddings = embedder
	}
	engine, err := similarity.NewEngine(cfg.Similarity, engineDeps)
	if err != nil {
		return nil, err
	}

	scorerDeps := scoring.Deps{Logger: logger.Named("scoring"), Metrics: metrics}
	if cfg.Scoring.UseDelegate {
		scorerDeps.Provider = ollama.NewClient(cfg.Providers.Ollama, ollama.Deps{
			Logger:  logger.Named("ollama"),
			Metrics: metrics,
		})
	}
	scorer, err := scoring.NewScorer(cfg.Scoring, scorerDeps)
	if err != nil {
		return nil, err
	}

	analyzer, err := analysis.NewAnalyzer(analysis.DefaultOptions(), analysis.Deps{
		Engine:  engine,
		Scorer:  scorer,
		Matcher: matcher,
		Logger:  logger.Named("analysis"),
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	return &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Engine:       engine,
		Scorer:       scorer,
		Analyzer:     analyzer,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
	}, nil
}

// GetCLIContext extracts the CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLI context not initialized")
	}
	return cliCtx, nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult writes data to stdout in the configured output format.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}
	switch strings.ToLower(cliCtx.OutputFormat) {
	case "json":
		return printJSON(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}
