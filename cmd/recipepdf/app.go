package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/logging"
	"github.com/pageza/recipepdf/internal/pdf"
	"github.com/pageza/recipepdf/internal/retrieval"
	"github.com/pageza/recipepdf/internal/service"
)

// loadConfig loads configuration and builds the logger
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// newPipeline wires the extraction pipeline from configuration
func newPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*service.Pipeline, error) {
	model, err := llm.NewOpenAI(cfg.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create language model: %w", err)
	}
	embedder, err := llm.NewEmbedder(cfg.LLM, cfg.Pipeline.EmbedBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	downloader, err := newDownloader(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	index := retrieval.NewIndex(embedder, cfg.Pipeline.EmbedBatchSize, logger.Named("retrieval"))
	svcLogger := logger.Named("pipeline")

	return service.NewPipeline(service.PipelineDeps{
		Downloader:    downloader,
		TextExtractor: pdf.NewTextExtractor(),
		Validator:     service.NewRecipeValidator(model, cfg.Pipeline, svcLogger),
		Retriever:     index,
		Recipes:       service.NewRecipeExtractor(model, cfg.Pipeline, svcLogger),
		CookingTimes:  service.NewCookingTimeExtractor(model, index, cfg.Pipeline, svcLogger),
	}, cfg.Pipeline, svcLogger), nil
}

// newDownloader fetches http(s) URLs directly and s3 URLs through the AWS SDK
// when a storage region is configured
func newDownloader(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pdf.SchemeDownloader, error) {
	httpDL := pdf.NewHTTPDownloader(cfg.Pipeline.DownloadTimeout, cfg.Pipeline.MaxDownloadBytes)
	if cfg.Storage.Region == "" {
		return pdf.NewSchemeDownloader(httpDL, nil), nil
	}

	s3Cfg, err := config.NewS3Config(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	logger.Info("s3 downloads enabled", zap.String("region", cfg.Storage.Region))
	return pdf.NewSchemeDownloader(httpDL, pdf.NewS3Downloader(s3Cfg.Client, cfg.Pipeline.MaxDownloadBytes)), nil
}
