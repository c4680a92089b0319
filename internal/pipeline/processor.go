// Package pipeline drives analysis, prompt building and generation for single files
// and whole directories.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/mvp-joe/testforge/internal/config"
	"github.com/mvp-joe/testforge/internal/llm"
	"github.com/mvp-joe/testforge/internal/prompt"
	"github.com/mvp-joe/testforge/internal/report"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrFileTooLarge is returned for files above the configured size guard.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ErrOutputCollision is returned when two discovered files would share output names.
var ErrOutputCollision = errors.New("output name collision")

// Processor runs the generation and evaluation pipeline.
type Processor struct {
	cfg       *config.Config
	generator llm.Generator // nil means prompt-only mode
	cache     *AnalysisCache
	tests     *report.Writer
	evals     *report.Writer
	progress  ProgressReporter
	logger    *logrus.Logger
	now       func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithGenerator sets the generation backend. Without one, prompts are saved instead.
func WithGenerator(g llm.Generator) Option {
	return func(p *Processor) {
		p.generator = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithProgress sets the progress reporter used by ProcessDirectory.
func WithProgress(r ProgressReporter) Option {
	return func(p *Processor) {
		p.progress = r
	}
}

// WithClock overrides the time source for output file names.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor creates a processor for cfg.
func NewProcessor(cfg *config.Config, opts ...Option) (*Processor, error) {
	p := &Processor{
		cfg:      cfg,
		progress: &NoOpProgressReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logrus.New()
	}

	cache, err := NewAnalysisCache(analyzer.New(), cfg.Batch.CacheSize)
	if err != nil {
		return nil, err
	}
	p.cache = cache

	p.tests = report.NewWriter(cfg.Paths.OutputDir, report.WithClock(p.now))
	p.evals = report.NewWriter(cfg.Paths.EvaluationDir, report.WithClock(p.now))
	return p, nil
}

// PromptOnly reports whether no generator is configured.
func (p *Processor) PromptOnly() bool {
	return p.generator == nil
}

// CacheStats exposes analysis cache counters.
func (p *Processor) CacheStats() CacheStats {
	return p.cache.Stats()
}

// Close releases the analysis cache.
func (p *Processor) Close() {
	p.cache.Close()
}

// ProcessFile analyzes one source file and either generates tests for it or,
// in prompt-only mode, saves the generation prompt.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	return p.processFile(ctx, path, report.Stem(path), p.logger.WithField("file", path))
}

// ProcessFileUnder is ProcessFile for a file found under dir. Its outputs are named
// the way ProcessDirectory names them, so nested files do not overwrite each other.
func (p *Processor) ProcessFileUnder(ctx context.Context, dir, path string) Result {
	return p.processFile(ctx, path, report.RelativeStem(dir, path), p.logger.WithField("file", path))
}

// processFile runs the pipeline for path, naming its outputs after stem.
func (p *Processor) processFile(ctx context.Context, path, stem string, log *logrus.Entry) Result {
	res := Result{SourcePath: path}
	fail := func(err error) Result {
		res.Status = StatusError
		res.Err = err
		log.WithError(err).Warn("file failed")
		return res
	}

	log.WithField("stage", "read").Debug("reading code file")
	source, err := p.readSource(path)
	if err != nil {
		return fail(err)
	}

	log.WithField("stage", "analyze").Debug("analyzing code structure")
	rec, err := p.cache.Analyze(source)
	if err != nil {
		return fail(fmt.Errorf("analysis failed: %w", err))
	}
	res.Analysis = rec
	log.WithField("stage", "analyze").Debug(rec.Summary())

	guidance, err := prompt.LoadGuidance(p.cfg.Guidance.AgentPath, p.cfg.Guidance.SkillPath)
	if err != nil {
		return fail(err)
	}

	text := prompt.BuildGeneration(prompt.GenerationInput{
		Guidance:  guidance,
		Path:      path,
		Source:    string(source),
		Analysis:  rec,
		Framework: p.cfg.Generation.Framework,
	})

	if res.AnalysisFile, err = p.tests.WriteAnalysis(stem, path, rec); err != nil {
		return fail(err)
	}

	if p.generator == nil {
		if res.PromptFile, err = p.tests.WritePrompt(stem, report.PromptSuffix, text); err != nil {
			return fail(err)
		}
		log.WithField("prompt_file", res.PromptFile).Info("no generator, prompt saved")
		res.Status = StatusPromptOnly
		return res
	}

	log.WithField("stage", "generate").Debug("generating tests")
	generated, err := p.generator.Generate(ctx, text)
	if err != nil {
		return fail(fmt.Errorf("generation failed: %w", err))
	}

	if res.OutputFile, err = p.tests.WriteGeneratedTests(stem, path, generated); err != nil {
		return fail(err)
	}
	log.WithField("test_file", res.OutputFile).Info("tests generated")
	res.Status = StatusCompleted
	return res
}

// EvaluateFile reviews an existing test file. sourcePath is optional; a missing
// source file is skipped rather than treated as an error.
func (p *Processor) EvaluateFile(ctx context.Context, testPath, sourcePath string) Result {
	res := Result{TestPath: testPath}
	log := p.logger.WithField("test_file", testPath)
	fail := func(err error) Result {
		res.Status = StatusError
		res.Err = err
		log.WithError(err).Warn("evaluation failed")
		return res
	}

	testCode, err := p.readSource(testPath)
	if err != nil {
		return fail(err)
	}

	var source []byte
	if sourcePath != "" {
		source, err = os.ReadFile(sourcePath)
		switch {
		case err == nil:
			res.SourcePath = sourcePath
		case errors.Is(err, fs.ErrNotExist):
			log.WithField("source", sourcePath).Warn("source file not found, evaluating without it")
		default:
			return fail(fmt.Errorf("failed to read source file: %w", err))
		}
	}

	guidance, err := prompt.LoadGuidance(p.cfg.Guidance.AgentPath, p.cfg.Guidance.SkillPath)
	if err != nil {
		return fail(err)
	}

	text := prompt.BuildEvaluation(prompt.EvaluationInput{
		Guidance: guidance,
		TestCode: string(testCode),
		Source:   string(source),
	})

	if p.generator == nil {
		if res.PromptFile, err = p.evals.WritePrompt(report.Stem(testPath), report.EvalPromptSuffix, text); err != nil {
			return fail(err)
		}
		log.WithField("prompt_file", res.PromptFile).Info("no generator, prompt saved")
		res.Status = StatusPromptOnly
		return res
	}

	evaluation, err := p.generator.Generate(ctx, text)
	if err != nil {
		return fail(fmt.Errorf("evaluation failed: %w", err))
	}

	if res.OutputFile, err = p.evals.WriteEvaluation(testPath, res.SourcePath, evaluation); err != nil {
		return fail(err)
	}
	log.WithField("evaluation_file", res.OutputFile).Info("evaluation saved")
	res.Status = StatusCompleted
	return res
}

// ProcessDirectory processes every discovered file in dir with bounded concurrency.
// Outputs are named after each file's path relative to dir (see report.RelativeStem)
// and two files mapping to the same name fail the batch before anything is written.
// Results come back in local-import dependency order. When ContinueOnError is false
// the first failure stops the batch and is returned along with the results so far.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) ([]Result, error) {
	runID := uuid.New().String()
	log := p.logger.WithFields(logrus.Fields{"run_id": runID, "dir": dir})

	discovery, err := NewDiscovery(dir, p.cfg.Paths.Include, p.cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid file patterns: %w", err)
	}

	files, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stems, err := outputStems(dir, files)
	if err != nil {
		return nil, err
	}
	p.progress.OnDiscoveryComplete(len(files))
	log.WithField("files", len(files)).Info("discovery complete")

	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Batch.Concurrency, 1))

	for i, file := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			p.progress.OnFileStart(file)

			res := p.processFile(gctx, file, stems[i], log.WithField("file", file))
			res.RunID = runID
			results[i] = res
			p.progress.OnFileProcessed(res)

			if res.Status == StatusError && !p.cfg.Batch.ContinueOnError {
				return fmt.Errorf("%s: %w", file, res.Err)
			}
			return nil
		})
	}
	batchErr := g.Wait()

	done := results[:0]
	for _, r := range results {
		if r.Status != "" {
			done = append(done, r)
		}
	}
	done = orderByDependencies(dir, done)

	summary := Summarize(done)
	p.progress.OnComplete(summary)
	log.WithFields(logrus.Fields{
		"completed":   summary.Completed,
		"prompt_only": summary.PromptOnly,
		"errors":      summary.Errors,
	}).Info("batch complete")

	if batchErr == nil {
		batchErr = ctx.Err()
	}
	return done, batchErr
}

// outputStems maps every file to the name its outputs are written under.
func outputStems(dir string, files []string) ([]string, error) {
	stems := make([]string, len(files))
	owner := make(map[string]string, len(files))
	for i, file := range files {
		stem := report.RelativeStem(dir, file)
		if prev, ok := owner[stem]; ok {
			return nil, fmt.Errorf("%w: %s and %s both map to %q", ErrOutputCollision, prev, file, stem)
		}
		owner[stem] = file
		stems[i] = stem
	}
	return stems, nil
}

// readSource reads a file, applying the configured size guard.
func (p *Processor) readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read file: %s is a directory", path)
	}

	if limit := int64(p.cfg.Batch.MaxFileSizeKB) * 1024; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %d bytes (limit %d KB)", ErrFileTooLarge, info.Size(), p.cfg.Batch.MaxFileSizeKB)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
