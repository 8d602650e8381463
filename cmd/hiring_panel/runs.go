package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-panel/internal/db"
	"github.com/jonathan/hiring-panel/internal/observability"
)

var (
	runsDatabaseURL string
	runsLimit       int
	runsExportDir   string
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "Inspect evaluations stored in PostgreSQL",
}

var runsListCommand = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := openRunsDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := database.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tCREATED\tROLE\tSTATUS\tRECOMMENDATION\tSCORE")
		for _, r := range runs {
			rec, score := "-", "-"
			if r.Recommendation != nil {
				rec = *r.Recommendation
			}
			if r.OverallScore != nil {
				score = fmt.Sprintf("%.2f", *r.OverallScore)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.RoleTitle, r.Status, rec, score)
		}
		return w.Flush()
	},
}

var runsShowCommand = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the decision packet, interview plan and timeline of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		database, err := openRunsDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()
		ctx := cmd.Context()

		run, err := database.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s not found", runID)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Run %s (%s, %s)\n", run.ID, run.RoleTitle, run.Status)
		if run.ErrorMessage != nil {
			_, _ = fmt.Fprintf(out, "Error: %s\n", *run.ErrorMessage)
		}

		printer := observability.NewPrinter(out)
		packet, err := database.GetDecisionPacket(ctx, runID)
		if err != nil {
			return err
		}
		printer.PrintDecisionPacket(packet)
		plan, err := database.GetInterviewPlan(ctx, runID)
		if err != nil {
			return err
		}
		printer.PrintInterviewPlan(plan)

		steps, err := database.ListRunSteps(ctx, runID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "STAGE\tAGENT\tSTATUS\tDURATION")
		for _, s := range steps {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%dms\n", s.Stage, s.Agent, s.Status, s.DurationMs)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if runsExportDir == "" {
			return nil
		}
		artifacts, err := database.ListArtifacts(ctx, runID)
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			content, err := database.GetArtifact(ctx, runID, a.Step)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(runsExportDir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(runsExportDir, a.Step+".json"), content, 0o644); err != nil {
				return fmt.Errorf("failed to export %s: %w", a.Step, err)
			}
		}
		_, _ = fmt.Fprintf(out, "Exported %d artifacts to %s\n", len(artifacts), runsExportDir)
		return nil
	},
}

var runsDeleteCommand = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		database, err := openRunsDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.DeleteRun(cmd.Context(), runID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", runID)
		return nil
	},
}

func openRunsDB(cmd *cobra.Command) (*db.DB, error) {
	url := runsDatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("--db-url or DATABASE_URL is required")
	}
	return db.Connect(cmd.Context(), url)
}

func init() {
	runsCommand.PersistentFlags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL URL (defaults to DATABASE_URL env var)")
	runsListCommand.Flags().IntVarP(&runsLimit, "limit", "n", db.DefaultListLimit, "Maximum runs to list")
	runsShowCommand.Flags().StringVar(&runsExportDir, "export", "", "Write the stored artifacts to this directory")
	runsCommand.AddCommand(runsListCommand, runsShowCommand, runsDeleteCommand)
	rootCmd.AddCommand(runsCommand)
}
