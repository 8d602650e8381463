// Package main is the hiring panel command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hiring_panel",
	Short: "Evaluate a candidate with a panel of LLM interviewers",
	Long: `hiring_panel builds a weighted rubric from a job description, has HR, Technical and
Compliance agents (plus an optional Product agent) review a resume independently, and
synthesizes their reviews into a decision packet and an interview plan.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
