package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/chunker"
	"github.com/pageza/recipepdf/internal/metrics"
	"github.com/pageza/recipepdf/internal/types"
	"go.uber.org/zap"
)

// Branch labels
const (
	BranchRecipe      = "recipe"
	BranchCookingTime = "cooking_time"
)

// PipelineDeps are the collaborators of a Pipeline
type PipelineDeps struct {
	Downloader    IDownloader
	TextExtractor ITextExtractor
	Validator     IValidator
	Retriever     IRetriever
	Recipes       IRecipeExtractor
	CookingTimes  ICookingTimeExtractor
}

// Pipeline runs validate, chunk, embed, retrieve and the two extraction
// branches for one document. It keeps no state between runs.
type Pipeline struct {
	deps   PipelineDeps
	cfg    config.PipelineConfig
	logger *zap.Logger
}

// Report describes one finished run. Validation is nil when the run failed
// before the document was classified.
type Report struct {
	ID         uuid.UUID
	URL        string
	Validation *types.ValidationResult
	Result     *types.ExtractionResult
	Duration   time.Duration
}

// NewPipeline creates a Pipeline
func NewPipeline(deps PipelineDeps, cfg config.PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, cfg: cfg, logger: logger}
}

// RunExtraction downloads the PDF at url and extracts its recipe and total
// cooking time. Fatal failures are returned as *types.StageError.
func (p *Pipeline) RunExtraction(ctx context.Context, url string) (*types.ExtractionResult, error) {
	report, err := p.Run(ctx, url)
	if err != nil {
		return nil, err
	}
	return report.Result, nil
}

// Analyze downloads the PDF at url and only classifies it
func (p *Pipeline) Analyze(ctx context.Context, url string) (*types.ValidationResult, error) {
	logger := p.logger.With(zap.String("run_id", uuid.NewString()), zap.String("url", url))

	doc, err := p.load(ctx, url, logger)
	if err != nil {
		return nil, err
	}
	result := p.validate(ctx, doc)
	if err := ctx.Err(); err != nil {
		return nil, types.NewStageError(types.StageValidation, err)
	}
	return &result, nil
}

// Run is RunExtraction returning the full report of the run
func (p *Pipeline) Run(ctx context.Context, url string) (*Report, error) {
	report := &Report{ID: uuid.New(), URL: url}
	start := time.Now()
	logger := p.logger.With(zap.String("run_id", report.ID.String()), zap.String("url", url))
	logger.Info("extraction started")

	err := p.run(ctx, report, logger)
	report.Duration = time.Since(start)

	switch {
	case err != nil:
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		logger.Error("extraction failed", zap.Error(err), zap.Duration("duration", report.Duration))
		return report, err
	case !report.Validation.IsRecipe:
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeNotRecipe).Inc()
	default:
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeCompleted).Inc()
	}

	logger.Info("extraction finished",
		zap.Bool("is_recipe", report.Validation.IsRecipe),
		zap.Bool("has_recipe", report.Result.Recipe != nil),
		zap.Bool("has_total_minutes", report.Result.TotalMinutes != nil),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *Report, logger *zap.Logger) error {
	doc, err := p.load(ctx, report.URL, logger)
	if err != nil {
		return err
	}

	validation := p.validate(ctx, doc)
	report.Validation = &validation
	if err := ctx.Err(); err != nil {
		return types.NewStageError(types.StageValidation, err)
	}
	if !report.Validation.IsRecipe {
		logger.Info("document is not a recipe", zap.String("reason", report.Validation.Reason))
		report.Result = &types.ExtractionResult{}
		return nil
	}

	text := doc.Text
	if text == "" {
		if text, err = p.extractText(ctx, doc.Bytes); err != nil {
			return err
		}
	}

	began := time.Now()
	chunks := chunker.Chunk(text, p.cfg.ChunkSize)
	metrics.ObserveStage(string(types.StageChunking), began)
	logger.Debug("document chunked", zap.Int("chunks", len(chunks)), zap.Int("chunk_size", p.cfg.ChunkSize))

	began = time.Now()
	set, err := p.deps.Retriever.EmbedAll(ctx, chunks)
	metrics.ObserveStage(string(types.StageEmbedding), began)
	if err != nil {
		return types.NewStageError(types.StageEmbedding, err)
	}

	began = time.Now()
	matched, err := p.deps.Retriever.Search(ctx, set, p.cfg.RecipeQuery, p.cfg.RecipeTopK)
	metrics.ObserveStage(string(types.StageRetrieval), began)
	if err != nil {
		return types.NewStageError(types.StageRetrieval, err)
	}
	logger.Debug("recipe chunks retrieved", zap.Int("matched", len(matched)))

	began = time.Now()
	defer metrics.ObserveStage(string(types.StageExtraction), began)

	recipeCh := runBranch(logger, BranchRecipe, func() (*types.Recipe, error) {
		return p.deps.Recipes.Extract(ctx, matched)
	})
	timeCh := runBranch(logger, BranchCookingTime, func() (*types.CookingTime, error) {
		return p.deps.CookingTimes.ExtractTime(ctx, set)
	})

	result := &types.ExtractionResult{}
	for pending := 2; pending > 0; pending-- {
		select {
		case recipe := <-recipeCh:
			result.Recipe = recipe
			recipeCh = nil
		case ct := <-timeCh:
			if ct != nil {
				total := ct.TotalMinutes
				result.TotalMinutes = &total
			}
			timeCh = nil
		case <-ctx.Done():
			return types.NewStageError(types.StageExtraction, ctx.Err())
		}
	}

	report.Result = result
	return nil
}

// load downloads the document and extracts its text when the validator reads it
func (p *Pipeline) load(ctx context.Context, url string, logger *zap.Logger) (*types.Document, error) {
	began := time.Now()
	data, err := p.deps.Downloader.Fetch(ctx, url)
	metrics.ObserveStage(string(types.StageDownload), began)
	if err != nil {
		return nil, types.NewStageError(types.StageDownload, err)
	}
	logger.Debug("document downloaded", zap.Int("bytes", len(data)))

	var text string
	if p.validatorNeedsText() {
		if text, err = p.extractText(ctx, data); err != nil {
			return nil, err
		}
	}
	return &types.Document{URL: url, Bytes: data, Text: text}, nil
}

func (p *Pipeline) extractText(ctx context.Context, data []byte) (string, error) {
	began := time.Now()
	text, err := p.deps.TextExtractor.ExtractText(ctx, data)
	metrics.ObserveStage(string(types.StageTextExtraction), began)
	if err != nil {
		return "", types.NewStageError(types.StageTextExtraction, err)
	}
	return text, nil
}

func (p *Pipeline) validate(ctx context.Context, doc *types.Document) types.ValidationResult {
	began := time.Now()
	defer metrics.ObserveStage(string(types.StageValidation), began)
	return p.deps.Validator.Validate(ctx, doc)
}

func (p *Pipeline) validatorNeedsText() bool {
	if v, ok := p.deps.Validator.(interface{ NeedsText() bool }); ok {
		return v.NeedsText()
	}
	return false
}

// runBranch runs fn in its own goroutine. Errors and panics are logged and
// yield nil. The channel is buffered so an abandoned branch never blocks.
func runBranch[T any](logger *zap.Logger, name string, fn func() (*T, error)) chan *T {
	out := make(chan *T, 1)
	go func() {
		var value *T
		defer func() {
			if r := recover(); r != nil {
				logger.Error("extraction branch panicked", zap.String("branch", name), zap.Any("panic", r))
				metrics.BranchFailures.WithLabelValues(name).Inc()
				value = nil
			}
			out <- value
		}()

		v, err := fn()
		if err != nil {
			logger.Warn("extraction branch failed", zap.String("branch", name), zap.Error(err))
			metrics.BranchFailures.WithLabelValues(name).Inc()
			return
		}
		value = v
	}()
	return out
}
