package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/db"
	"github.com/jonathan/hiring-panel/internal/ingestion"
	"github.com/jonathan/hiring-panel/internal/llm"
	"github.com/jonathan/hiring-panel/internal/observability"
	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/types"
	"github.com/jonathan/hiring-panel/internal/workflow"
)

var evaluateFlags runFlags

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the full panel evaluation for one candidate",
	Long: `Generates a rubric from the job description, runs the panel agents in parallel and
synthesizes a decision packet and interview plan.

Writes workflow_state.json, decision_packet.json and interview_plan.json to --out. The state
file is written even when a stage fails so the run can be inspected.`,
	RunE: runEvaluate,
}

func init() {
	evaluateFlags.register(evaluateCommand, true)
	rootCmd.AddCommand(evaluateCommand)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, err := evaluateFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cfg.Resume == "" {
		return fmt.Errorf("--resume is required (via flag or config)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	job, err := loadJob(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load job description: %w", err)
	}
	resume, err := ingestion.LoadFile(cfg.Resume)
	if err != nil {
		return fmt.Errorf("failed to load resume: %w", err)
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

	engine := workflow.NewEngine(gw, cfg.Workflow, cfg.Synthesis, logger)
	engine.Tier = llm.ParseTier(cfg.ModelTier)
	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		engine.OnProgress = func(e workflow.ProgressEvent) {
			switch c := e.Content.(type) {
			case *types.Rubric:
				printer.PrintRubric(c)
			case *types.DecisionPacket:
				printer.PrintDecisionPacket(c)
			}
		}
	}

	st, runErr := engine.Run(ctx, workflow.Input{
		JobDescription: job.Text,
		Resume:         resume.Text,
		CompanyContext: companyContext,
	})

	if err := writeRunArtifacts(cfg.Out, st); err != nil {
		return err
	}
	if cfg.DatabaseURL != "" {
		persistRun(ctx, cfg, st, resume, runErr, logger)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintReviews(st.Rubric, st.PanelReviews)
		printer.PrintInterviewPlan(st.InterviewPlan)
		printer.PrintTimeline(st.Metadata)
	}
	if runErr != nil {
		var wfErr *workflow.Error
		if errors.As(runErr, &wfErr) {
			return fmt.Errorf("evaluation failed at %s stage (state written to %s): %w", wfErr.Stage, cfg.Out, wfErr.Cause)
		}
		return runErr
	}

	p := st.DecisionPacket
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recommendation: %s (fit %.2f, %s confidence)\n", p.Recommendation, p.OverallFitScore, p.ConfidenceLevel)
	if len(p.MissingRoles) > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Missing panel roles: %v\n", p.MissingRoles)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Artifacts written to %s\n", cfg.Out)
	return nil
}

func writeRunArtifacts(dir string, st *state.WorkflowState) error {
	if _, err := writeJSON(dir, "workflow_state.json", st); err != nil {
		return err
	}
	if st.DecisionPacket != nil {
		if _, err := writeJSON(dir, "decision_packet.json", st.DecisionPacket); err != nil {
			return err
		}
	}
	if st.InterviewPlan != nil {
		if _, err := writeJSON(dir, "interview_plan.json", st.InterviewPlan); err != nil {
			return err
		}
	}
	return nil
}

// persistRun stores the run in PostgreSQL. Storage is best effort: a failure is
// logged and the evaluation result stands.
func persistRun(ctx context.Context, cfg config.Config, st *state.WorkflowState, resume *ingestion.Document, runErr error, logger *slog.Logger) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WarnContext(ctx, "run not stored", "error", err)
		return
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		logger.WarnContext(ctx, "run not stored", "error", err)
		return
	}
	runID, err := database.SaveRun(ctx, st, db.RunInput{JobURL: cfg.JobURL, ResumeHash: resume.Hash, Err: runErr})
	if err != nil {
		logger.WarnContext(ctx, "run not stored", "error", err)
		return
	}
	logger.InfoContext(ctx, "run stored", "run_id", runID)
}
