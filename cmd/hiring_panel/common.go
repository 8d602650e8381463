package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/ingestion"
	"github.com/jonathan/hiring-panel/internal/llm"
)

// runFlags are shared by the commands that call the model
type runFlags struct {
	configPath     string
	job            string
	jobURL         string
	resume         string
	companyContext string
	apiKey         string
	modelTier      string
	out            string
	databaseURL    string
	productAgent   bool
	useBrowser     bool
	verbose        bool
}

func (f *runFlags) register(cmd *cobra.Command, withResume bool) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json (other flags override its values)")
	cmd.Flags().StringVarP(&f.job, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&f.jobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job)")
	cmd.Flags().StringVar(&f.companyContext, "company-context", "", "Path to company context text file (optional)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&f.modelTier, "model-tier", "", "Model tier: lite, standard or advanced")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory for artifacts")
	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Render job boards in headless Chrome when plain HTTP yields too little text")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging and boxed summaries")
	if withResume {
		cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "Path to resume text file")
		cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL URL to store the run (defaults to DATABASE_URL env var)")
		cmd.Flags().BoolVar(&f.productAgent, "product-agent", false, "Add the Product agent to the panel")
	}
}

// resolve merges config file, explicitly set flags, environment and defaults, in
// that order of precedence (flags win).
func (f *runFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	set := cmd.Flags().Changed
	if set("job") {
		cfg.Job = f.job
	}
	if set("job-url") {
		cfg.JobURL = f.jobURL
	}
	if set("resume") {
		cfg.Resume = f.resume
	}
	if set("company-context") {
		cfg.CompanyContext = f.companyContext
	}
	if set("api-key") {
		cfg.APIKey = f.apiKey
	}
	if set("model-tier") {
		cfg.ModelTier = f.modelTier
	}
	if set("out") {
		cfg.Out = f.out
	}
	if set("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if set("product-agent") {
		cfg.Workflow.EnableProductAgent = f.productAgent
	}
	if set("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if set("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return cfg, fmt.Errorf("either --job or --job-url must be provided (via flag or config)")
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newGateway builds the Gemini client, wraps it in the response cache and returns
// the gateway with a close function for the client.
func newGateway(ctx context.Context, cfg config.Config, logger *slog.Logger) (*llm.Gateway, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, err
	}
	cached, err := llm.NewCachedClient(client, cfg.CacheSize)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	gw := llm.NewGateway(cached,
		llm.WithProviderRetries(cfg.Workflow.ProviderRetryCount()),
		llm.WithLogger(logger),
	)
	return gw, func() { _ = cached.Close() }, nil
}

// loadJob reads the job description from a file or URL.
func loadJob(ctx context.Context, cfg config.Config, logger *slog.Logger) (*ingestion.Document, error) {
	if cfg.JobURL != "" {
		return ingestion.FromURL(ctx, cfg.JobURL, ingestion.URLOptions{UseBrowser: cfg.UseBrowser, Logger: logger})
	}
	return ingestion.LoadFile(cfg.Job)
}

func writeJSON(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
