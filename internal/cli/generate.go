package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mvp-joe/testforge/internal/config"
	"github.com/mvp-joe/testforge/internal/pipeline"
	"github.com/mvp-joe/testforge/internal/watcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	generateFlags generationFlags
	generateDir   string
	generateWatch bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate tests for a Python file or directory",
	Long: `Generate analyzes Python source, builds a test generation prompt and asks the
configured model for a test suite.

Without a file argument every matching file under the source directory is
processed in parallel. Without an API key the prompts are saved instead.

Examples:
  # Generate tests for one file
  testforge generate sample-code/calculator.py

  # Process a directory and write tests elsewhere
  testforge generate --dir src --output tests/generated

  # Regenerate whenever a source file changes
  testforge generate --dir src --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateFlags.register(generateCmd, "directory for generated tests (default from config, generated-tests)")
	generateCmd.Flags().StringVarP(&generateDir, "dir", "d", "", "directory to process when no file is given (default from config, sample-code)")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "watch the directory and regenerate changed files")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	generateFlags.apply(cmd, cfg, &cfg.Paths.OutputDir)
	if cmd.Flags().Changed("dir") {
		cfg.Paths.SourceDir = generateDir
	}

	logger := newLogger(cmd.ErrOrStderr())
	generator, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	quiet := generateFlags.quiet
	if !quiet {
		printBanner(out, cfg, cfg.Paths.OutputDir, generator == nil)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithProgress(NewCLIProgressReporter(out, quiet)),
	}
	if generator != nil {
		opts = append(opts, pipeline.WithGenerator(generator))
	}
	proc, err := pipeline.NewProcessor(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}
	defer proc.Close()

	if len(args) == 1 {
		file := args[0]
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("file not found: %s", file)
		}
		if !quiet {
			printHeader(out, "Processing", file)
		}
		results := []pipeline.Result{proc.ProcessFile(ctx, file)}
		pipeline.PrintSummary(out, results, pipeline.ModeGenerate)
		if !quiet {
			printFooter(out)
		}
		return nil
	}

	dir := cfg.Paths.SourceDir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("directory not found: %s", dir)
	}

	results, err := proc.ProcessDirectory(ctx, dir)
	if len(results) == 0 && err == nil {
		fmt.Fprintf(out, "No Python files found in %s/\n", dir)
	} else {
		pipeline.PrintSummary(out, results, pipeline.ModeGenerate)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("generation cancelled")
		}
		return fmt.Errorf("batch failed: %w", err)
	}

	if generateWatch {
		if err := watchDirectory(ctx, out, cfg, dir, proc, logger); err != nil {
			return err
		}
	}

	if !quiet {
		printFooter(out)
	}
	return nil
}

// watchDirectory regenerates tests for changed source files until ctx is cancelled.
func watchDirectory(ctx context.Context, out io.Writer, cfg *config.Config, dir string, proc *pipeline.Processor, logger *logrus.Logger) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	discovery, err := pipeline.NewDiscovery(root, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid file patterns: %w", err)
	}

	fw, err := watcher.NewFileWatcher([]string{root}, []string{".py"},
		watcher.WithLogger(logger),
		watcher.WithFilter(func(path string) bool {
			rel, err := filepath.Rel(root, path)
			return err == nil && discovery.Matches(rel)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	err = fw.Start(ctx, func(files []string) {
		results := make([]pipeline.Result, 0, len(files))
		for _, file := range files {
			if ctx.Err() != nil {
				return
			}
			printHeader(out, "Changed", file)
			results = append(results, proc.ProcessFileUnder(ctx, root, file))
		}
		pipeline.PrintSummary(out, results, pipeline.ModeGenerate)
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)...\n", dir)
	<-ctx.Done()
	fmt.Fprintln(out, "\nWatch mode stopped")
	return nil
}

func printBanner(w io.Writer, cfg *config.Config, outputDir string, promptOnly bool) {
	rule := strings.Repeat("=", 60)
	api := "None (prompt-only mode)"
	if !promptOnly {
		api = fmt.Sprintf("%s %s (automated)", cfg.Generation.Provider, cfg.Generation.ResolvedModel())
	}

	fmt.Fprintf(w, "%s\nSPECIALIZED TESTING AGENT\n%s\n", rule, rule)
	fmt.Fprintf(w, "Agent:  %s\n", cfg.Guidance.AgentPath)
	fmt.Fprintf(w, "Skill:  %s\n", cfg.Guidance.SkillPath)
	fmt.Fprintf(w, "Output: %s/\n", outputDir)
	fmt.Fprintf(w, "API:    %s\n", api)
}

func printHeader(w io.Writer, verb, path string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n%s: %s\n%s\n", rule, verb, path, rule)
}

func printFooter(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nDone!\n%s\n", rule, rule)
}
