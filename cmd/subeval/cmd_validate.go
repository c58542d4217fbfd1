package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subfast/subeval/internal/detection"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <detections.json[.gz]>",
		Short: "Validate a detection JSON file against the frame schema",
		Long: `Validate a detection JSON file against the expected per-frame schema.

This is stricter than "run", which silently skips malformed entries; validate
lists every entry that would be skipped and why.`,
		Args: cobra.ExactArgs(1),
		RunE: validateCommandE,
	}
}

func validateCommandE(_ *cobra.Command, args []string) error {
	path := args[0]

	findings, err := detection.ValidateFile(path)
	if err != nil {
		return err
	}

	if len(findings) == 0 {
		fmt.Printf("%s: valid\n", path)
		return nil
	}

	fmt.Printf("%s: %d schema violation(s)\n", path, len(findings))
	for _, finding := range findings {
		fmt.Printf("  %s\n", finding)
	}
	return &EvalFailureError{Message: fmt.Sprintf("%s failed schema validation", path)}
}
