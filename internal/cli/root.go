// Package cli implements the testforge command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mvp-joe/testforge/internal/config"
	"github.com/mvp-joe/testforge/internal/llm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "testforge",
	Short: "TestForge - generate and evaluate Python tests with an LLM",
	Long: `TestForge analyzes Python source files, builds test generation prompts from
the analysis plus your agent instructions and scoring rubric, and sends them
to a language model. Without an API key the prompts are saved for manual use.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .testforge/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads .testforge/config.yml under the working directory, or the
// file named by --config.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}

	cfg, err := config.NewLoader(wd, opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a logger writing to w. --verbose enables debug output.
func newLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newGenerator builds the configured generator wrapped in the batch rate limit.
// A nil generator with a nil error means prompt-only mode.
func newGenerator(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (llm.Generator, error) {
	g, err := llm.NewGenerator(ctx, cfg.Generation, logger)
	if errors.Is(err, llm.ErrNoAPIKey) {
		logger.Info("no API key configured, running in prompt-only mode")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return llm.RateLimited(g, cfg.Batch.RequestsPerMinute), nil
}
