package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/observability"
	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/synthesis"
)

var (
	synthStatePath  string
	synthConfigPath string
	synthOut        string
	synthQuiet      bool
)

var synthesizeCommand = &cobra.Command{
	Use:   "synthesize",
	Short: "Re-run synthesis on a saved workflow state",
	Long: `Reads a workflow_state.json written by evaluate and rebuilds the decision packet and
interview plan from its rubric, reviews and working memory without calling the model.
Useful for trying different thresholds from --config.`,
	RunE: runSynthesize,
}

func init() {
	synthesizeCommand.Flags().StringVarP(&synthStatePath, "state", "s", "", "Path to workflow_state.json (required)")
	synthesizeCommand.Flags().StringVar(&synthConfigPath, "config", "", "Path to config.json with synthesis settings")
	synthesizeCommand.Flags().StringVarP(&synthOut, "out", "o", "", "Output directory (defaults to the state file's directory)")
	synthesizeCommand.Flags().BoolVarP(&synthQuiet, "quiet", "q", false, "Do not print the summary")
	_ = synthesizeCommand.MarkFlagRequired("state")
	rootCmd.AddCommand(synthesizeCommand)
}

func runSynthesize(cmd *cobra.Command, _ []string) error {
	cfg := config.Defaults()
	if synthConfigPath != "" {
		loaded, err := config.LoadConfig(synthConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded.MergeWithDefaults(config.Defaults())
		if err := cfg.Synthesis.Validate(); err != nil {
			return err
		}
	}

	st, err := readState(synthStatePath)
	if err != nil {
		return err
	}
	packet, plan, err := synthesis.FromState(st, cfg.Synthesis)
	if err != nil {
		return err
	}

	out := synthOut
	if out == "" {
		out = filepath.Dir(synthStatePath)
	}
	if _, err := writeJSON(out, "decision_packet.json", packet); err != nil {
		return err
	}
	if _, err := writeJSON(out, "interview_plan.json", plan); err != nil {
		return err
	}

	if !synthQuiet {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintDecisionPacket(packet)
		printer.PrintInterviewPlan(plan)
	}
	return nil
}

func readState(path string) (*state.WorkflowState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	var st state.WorkflowState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if st.Rubric == nil {
		return nil, fmt.Errorf("state %s has no rubric", path)
	}
	return &st, nil
}
