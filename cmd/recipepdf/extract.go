package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var jsonOnly bool

// extractCmd runs the full pipeline on one URL
var extractCmd = &cobra.Command{
	Use:   "extract <pdf-url>",
	Short: "Extract the recipe and total cooking time from a PDF",
	Long: `Extract the recipe name, ingredients and total cooking time from a PDF.

Examples:
  # Extract from a web URL
  recipepdf extract https://example.com/recipe.pdf

  # Extract from S3 and print JSON only
  RECIPEPDF_STORAGE_REGION=ap-northeast-1 recipepdf extract --json s3://recipes/curry.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// analyzeCmd only classifies the document
var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf-url>",
	Short: "Decide whether a PDF is a cooking recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	extractCmd.Flags().BoolVar(&jsonOnly, "json", false, "print only the JSON result")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	result, err := pipeline.RunExtraction(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !jsonOnly {
		displayResult(out, result)
	}
	return writeJSON(out, result)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	result, err := pipeline.Analyze(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
