package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/roommate-matcher/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a schema",
	Long: fmt.Sprintf(`Validates a JSON file against a bundled schema (%s)
or a schema file on disk.`, strings.Join(schemas.Names(), ", ")),
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Bundled schema name or path to a schema file (required)")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "Path to the JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if isBundledSchema(validateSchema) {
		err = schemas.ValidateFile(validateSchema, validateJSON)
	} else {
		err = schemas.ValidateJSON(validateSchema, validateJSON)
	}

	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed for %s:\n", validateJSON)
			for i, fe := range validationErr.Errors {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
			}
			return fmt.Errorf("%s does not match schema %s", validateJSON, validateSchema)
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s matches %s\n", validateJSON, validateSchema)
	return nil
}

func isBundledSchema(name string) bool {
	for _, n := range schemas.Names() {
		if n == name {
			return true
		}
	}
	return false
}
