package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/chunk"
	"github.com/NadezhdaSmurova/TaskDigest/internal/config"
	"github.com/NadezhdaSmurova/TaskDigest/internal/extract"
	"github.com/NadezhdaSmurova/TaskDigest/internal/llm"
	"github.com/NadezhdaSmurova/TaskDigest/internal/logger"
	"github.com/NadezhdaSmurova/TaskDigest/internal/pipeline"
	"github.com/NadezhdaSmurova/TaskDigest/internal/policy"
	"github.com/NadezhdaSmurova/TaskDigest/internal/report"
	"github.com/NadezhdaSmurova/TaskDigest/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "taskdigest",
		Short: "Turn operational text into a prioritized digest",
		Long: "taskdigest reads email threads, chat logs, and standup notes from local files\n" +
			"and produces a P0/P1/P2 digest via a deterministic priority policy. An optional\n" +
			"local LLM adds descriptive notes but can never downgrade a priority.",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&verbose))
	root.AddCommand(newServeCmd(&verbose))

	return root
}

// flagOverrides layers CLI flags over the env-derived config.
type flagOverrides struct {
	input    string
	output   string
	rules    string
	llmMode  string
	model    string
	url      string
	maxChars int
	overlap  int
}

func (f *flagOverrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "input folder (txt/md/json)")
	cmd.Flags().StringVar(&f.output, "output", "", "output folder for the digest artifacts")
	cmd.Flags().StringVar(&f.rules, "rules", "", "path to a YAML priority rule table")
	cmd.Flags().StringVar(&f.llmMode, "llm", "", "LLM mode: none or ollama")
	cmd.Flags().StringVar(&f.model, "ollama-model", "", "Ollama model name")
	cmd.Flags().StringVar(&f.url, "ollama-url", "", "Ollama base URL")
	cmd.Flags().IntVar(&f.maxChars, "max-chars", 0, "chunk size in characters")
	cmd.Flags().IntVar(&f.overlap, "overlap", -1, "chunk overlap in characters")
}

func (f *flagOverrides) apply(cfg *config.Config) error {
	if f.input != "" {
		cfg.InputDir = f.input
	}
	if f.output != "" {
		cfg.OutputDir = f.output
	}
	if f.rules != "" {
		cfg.RulesPath = f.rules
	}
	if f.llmMode != "" {
		cfg.LLMMode = f.llmMode
	}
	if f.model != "" {
		cfg.OllamaModel = f.model
	}
	if f.url != "" {
		cfg.OllamaURL = f.url
	}
	if f.maxChars > 0 {
		cfg.ChunkMaxChars = f.maxChars
	}
	if f.overlap >= 0 {
		cfg.ChunkOverlap = f.overlap
	}
	return cfg.Validate()
}

func newRunCmd(verbose *bool) *cobra.Command {
	overrides := &flagOverrides{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one digest pass and write the report artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(overrides, *verbose)
			if err != nil {
				return err
			}
			defer syncLogger(log)

			service, err := newDigestService(cfg, log)
			if err != nil {
				return err
			}

			rep, result, err := service.Digest(cmd.Context())
			if err != nil {
				return err
			}

			if err := report.WriteArtifacts(cfg.OutputDir, rep, result, log); err != nil {
				return err
			}

			fmt.Println(report.RenderMarkdown(rep))
			return nil
		},
	}

	overrides.register(cmd)
	return cmd
}

func newServeCmd(verbose *bool) *cobra.Command {
	overrides := &flagOverrides{}
	var port string
	var refreshCron string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the digest over HTTP, optionally refreshing on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(overrides, *verbose)
			if err != nil {
				return err
			}
			defer syncLogger(log)

			if port != "" {
				cfg.ServePort = port
			}
			if refreshCron != "" {
				cfg.RefreshCron = refreshCron
			}

			service, err := newDigestService(cfg, log)
			if err != nil {
				return err
			}

			rep, result, err := service.Digest(cmd.Context())
			if err != nil {
				return err
			}

			handler := server.NewHandler(service, rep, result, log)
			srv := server.New(handler, cfg.ServePort, cfg.RefreshCron, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx)
		},
	}

	overrides.register(cmd)
	cmd.Flags().StringVar(&port, "port", "", "viewer port")
	cmd.Flags().StringVar(&refreshCron, "refresh-cron", "", "cron schedule for automatic refresh")

	return cmd
}

func setup(overrides *flagOverrides, verbose bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := overrides.apply(cfg); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Environment, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}

func syncLogger(log *zap.Logger) {
	// Sync on stderr consoles commonly returns ENOTTY; nothing to act on.
	_ = log.Sync()
}

// digestService wires the pipeline for one configuration and satisfies
// server.Digester.
type digestService struct {
	cfg    *config.Config
	runner *pipeline.Runner
	log    *zap.Logger
}

func newDigestService(cfg *config.Config, log *zap.Logger) (*digestService, error) {
	table := policy.DefaultTable()
	if cfg.RulesPath != "" {
		loaded, err := policy.LoadTable(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		table = loaded
		log.Info("Loaded rule table",
			zap.String("path", cfg.RulesPath),
			zap.Int("version", table.Version),
			zap.Int("rules", len(table.Rules)))
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	engine := policy.NewEngine(table, log)

	suggester := pickSuggester(cfg, log)
	merger := extract.NewMerger(suggester, extract.Config{
		Timeout:     cfg.SuggestTimeout,
		Concurrency: cfg.SuggestConcurrency,
	}, log)

	chunker := chunk.New(chunk.Config{
		MaxChars: cfg.ChunkMaxChars,
		Overlap:  cfg.ChunkOverlap,
	})

	return &digestService{
		cfg:    cfg,
		runner: pipeline.NewRunner(chunker, merger, engine, log),
		log:    log,
	}, nil
}

// pickSuggester selects the collaborator: Ollama when requested and
// reachable, the disabled null object otherwise.
func pickSuggester(cfg *config.Config, log *zap.Logger) extract.Suggester {
	if cfg.LLMMode != "ollama" {
		return extract.NewDisabled()
	}

	ollama := llm.NewOllama(llm.Config{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
	})
	if !ollama.IsAvailable(context.Background()) {
		log.Warn("Ollama not available, falling back to llm mode none",
			zap.String("url", cfg.OllamaURL))
		return extract.NewDisabled()
	}
	return ollama
}

// Digest runs one batch pass and shapes the report.
func (s *digestService) Digest(ctx context.Context) (*report.Report, *pipeline.Result, error) {
	docs, err := pipeline.LoadDocuments(s.cfg.InputDir)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.runner.Run(ctx, docs)
	if err != nil {
		return nil, nil, err
	}

	return report.Build(result), result, nil
}
