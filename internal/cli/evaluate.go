package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/testforge/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	evaluateFlags  generationFlags
	evaluateSource string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <test-file>",
	Short: "Score an existing test file against the rubric",
	Long: `Evaluate asks the configured model to review a test file using the scoring
rubric. Passing the code under test with --source gives the reviewer more
context; a missing source file is skipped with a warning.

Examples:
  testforge evaluate tests/test_calculator.py --source src/calculator.py
`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateFlags.register(evaluateCmd, "directory for evaluation reports (default from config, test-evaluations)")
	evaluateCmd.Flags().StringVarP(&evaluateSource, "source", "s", "", "source code file the tests exercise (optional)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	testPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	evaluateFlags.apply(cmd, cfg, &cfg.Paths.EvaluationDir)

	if _, err := os.Stat(testPath); err != nil {
		return fmt.Errorf("test file not found: %s", testPath)
	}

	logger := newLogger(cmd.ErrOrStderr())
	generator, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	quiet := evaluateFlags.quiet
	if !quiet {
		printBanner(out, cfg, cfg.Paths.EvaluationDir, generator == nil)
		printHeader(out, "Evaluating", testPath)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if generator != nil {
		opts = append(opts, pipeline.WithGenerator(generator))
	}
	proc, err := pipeline.NewProcessor(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}
	defer proc.Close()

	results := []pipeline.Result{proc.EvaluateFile(ctx, testPath, evaluateSource)}
	pipeline.PrintSummary(out, results, pipeline.ModeEvaluate)

	if !quiet {
		printFooter(out)
	}
	return nil
}
