package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Print the structural analysis of a Python file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

type analysisOutput struct {
	Path     string           `json:"path"`
	Summary  string           `json:"summary"`
	Analysis *analyzer.Record `json:"analysis"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	rec, err := analyzer.AnalyzeBytes(source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analysisOutput{Path: path, Summary: rec.Summary(), Analysis: rec})
}
