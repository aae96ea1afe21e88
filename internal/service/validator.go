package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/metrics"
	"github.com/pageza/recipepdf/internal/parser"
	"github.com/pageza/recipepdf/internal/types"
	"go.uber.org/zap"
)

// Validation strategies
const (
	// StrategyPDF sends the PDF bytes to the model
	StrategyPDF = "pdf"
	// StrategyText sends the extracted text, truncated to ValidationMaxChars runes
	StrategyText = "text"
)

// ValidationFallbackReason is the reason reported when classification fails
// and the document is treated as a recipe
const ValidationFallbackReason = "validation failed, continuing"

// RecipeValidator asks the model whether a document is a recipe
type RecipeValidator struct {
	model      llm.Model
	fixer      parser.Fixer
	strategy   string
	maxChars   int
	maxRetries int
	logger     *zap.Logger
}

// NewRecipeValidator creates a RecipeValidator
func NewRecipeValidator(model llm.Model, cfg config.PipelineConfig, logger *zap.Logger) *RecipeValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	strategy := cfg.ValidationStrategy
	if strategy == "" {
		strategy = StrategyText
	}
	return &RecipeValidator{
		model:      model,
		fixer:      parser.NewModelFixer(model),
		strategy:   strategy,
		maxChars:   cfg.ValidationMaxChars,
		maxRetries: cfg.MaxParseRetries,
		logger:     logger,
	}
}

// NeedsText reports whether Validate reads Document.Text
func (v *RecipeValidator) NeedsText() bool {
	return v.strategy == StrategyText
}

// Validate classifies doc. Model and parse failures are not returned: the
// document is then reported as a recipe with ValidationFallbackReason.
func (v *RecipeValidator) Validate(ctx context.Context, doc *types.Document) types.ValidationResult {
	result, err := v.classify(ctx, doc)
	if err != nil {
		v.logger.Warn("recipe validation failed, treating document as a recipe",
			zap.String("url", doc.URL),
			zap.Error(err))
		metrics.ValidationFallbacks.Inc()
		return types.ValidationResult{IsRecipe: true, Reason: ValidationFallbackReason}
	}

	v.logger.Info("document classified",
		zap.String("url", doc.URL),
		zap.Bool("is_recipe", result.IsRecipe),
		zap.String("reason", result.Reason))
	return *result
}

func (v *RecipeValidator) classify(ctx context.Context, doc *types.Document) (*types.ValidationResult, error) {
	msg, err := v.message(doc)
	if err != nil {
		return nil, err
	}

	resp, err := v.model.Complete(ctx, llm.Request{
		Messages: []llm.Message{llm.System(expertSystemPrompt), msg},
		JSON:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to classify document: %w", err)
	}

	out, err := parser.ParseWithRetry(ctx, resp.Text, validationSchema, v.fixer, v.maxRetries, checkValidation)
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (v *RecipeValidator) message(doc *types.Document) (llm.Message, error) {
	prompt := fmt.Sprintf(validationPrompt, validationSchema)

	if v.strategy == StrategyPDF {
		if len(doc.Bytes) == 0 {
			return llm.Message{}, errors.New("document has no bytes to send")
		}
		return llm.User(prompt, llm.Attachment{
			Filename: filenameOf(doc.URL),
			MIMEType: "application/pdf",
			Data:     doc.Bytes,
		}), nil
	}

	text := truncateRunes(doc.Text, v.maxChars)
	if strings.TrimSpace(text) == "" {
		return llm.Message{}, errors.New("document has no text to classify")
	}
	return llm.User(prompt + "\n\n" + contextLabel + text), nil
}

func filenameOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return "recipe.pdf"
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
