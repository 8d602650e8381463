package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-panel/internal/schemas"
	rootschemas "github.com/jonathan/hiring-panel/schemas"
)

var (
	validateSchema string
	validateJSON   string
)

var validateCommand = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON artifact against a named schema",
	Long:  "Validates a file against one of the embedded schemas: " + strings.Join(rootschemas.List(), ", ") + ".",
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := schemas.ValidateNamedFile(validateSchema, validateJSON)
		if err == nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s matches %s\n", validateJSON, validateSchema)
			return nil
		}
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation failed:\n")
			for _, fe := range verr.Errors {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	},
}

func init() {
	validateCommand.Flags().StringVar(&validateSchema, "schema", "", "Schema name (required)")
	validateCommand.Flags().StringVar(&validateJSON, "json", "", "Path to the JSON file (required)")
	_ = validateCommand.MarkFlagRequired("schema")
	_ = validateCommand.MarkFlagRequired("json")
	rootCmd.AddCommand(validateCommand)
}
