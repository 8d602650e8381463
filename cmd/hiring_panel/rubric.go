package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-panel/internal/ingestion"
	"github.com/jonathan/hiring-panel/internal/llm"
	"github.com/jonathan/hiring-panel/internal/observability"
	"github.com/jonathan/hiring-panel/internal/orchestrator"
)

var rubricFlags runFlags

var rubricCommand = &cobra.Command{
	Use:   "rubric",
	Short: "Generate only the evaluation rubric for a job description",
	Long:  "Runs the orchestrator stage and writes rubric.json to --out. Useful for reviewing a rubric before evaluating candidates against it.",
	RunE:  runRubric,
}

func init() {
	rubricFlags.register(rubricCommand, false)
	rootCmd.AddCommand(rubricCommand)
}

func runRubric(cmd *cobra.Command, _ []string) error {
	cfg, err := rubricFlags.resolve(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	job, err := loadJob(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load job description: %w", err)
	}
	companyContext, err := ingestion.LoadOptionalFile(cfg.CompanyContext)
	if err != nil {
		return fmt.Errorf("failed to load company context: %w", err)
	}

	gw, closeClient, err := newGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	rubric, err := orchestrator.GenerateRubric(ctx, gw, job.Text, companyContext, orchestrator.Options{
		CategoryCount: cfg.Workflow.RubricCategoriesCount,
		RetryBudget:   cfg.Workflow.RubricRetries(),
		Tier:          llm.ParseTier(cfg.ModelTier),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	path, err := writeJSON(cfg.Out, "rubric.json", rubric)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRubric(rubric)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rubric written to %s\n", path)
	return nil
}
