package service

import (
	"context"
	"fmt"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/parser"
	"github.com/pageza/recipepdf/internal/types"
	"go.uber.org/zap"
)

// RecipeExtractor extracts a structured recipe from retrieved chunks
type RecipeExtractor struct {
	model      llm.Model
	fixer      parser.Fixer
	maxRetries int
	logger     *zap.Logger
}

// NewRecipeExtractor creates a RecipeExtractor
func NewRecipeExtractor(model llm.Model, cfg config.PipelineConfig, logger *zap.Logger) *RecipeExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeExtractor{
		model:      model,
		fixer:      parser.NewModelFixer(model),
		maxRetries: cfg.MaxParseRetries,
		logger:     logger,
	}
}

// Extract returns the recipe described by chunks. No chunks means no
// context, which yields a nil recipe without calling the model.
func (e *RecipeExtractor) Extract(ctx context.Context, chunks []string) (*types.Recipe, error) {
	if len(chunks) == 0 {
		e.logger.Debug("no recipe context, skipping extraction")
		return nil, nil
	}

	prompt := fmt.Sprintf(recipePrompt, recipeSchema, buildContext(chunks))
	raw, err := llm.CompleteText(ctx, e.model, expertSystemPrompt, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("failed to extract recipe: %w", err)
	}

	out, err := parser.ParseWithRetry(ctx, raw, recipeSchema, e.fixer, e.maxRetries, checkRecipe)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	recipe := out.recipe()

	e.logger.Info("recipe extracted",
		zap.String("name", recipe.Name),
		zap.Int("ingredients", len(recipe.Ingredients)))
	return recipe, nil
}
