package parser

import (
	"context"
	"fmt"

	"github.com/pageza/recipepdf/internal/llm"
)

const fixPrompt = `Instructions:
--------------
%s
--------------
Completion:
--------------
%s
--------------

Above, the Completion did not satisfy the constraints given in the Instructions.
Error:
--------------
%v
--------------

Please try again. Please only respond with an answer that satisfies the constraints laid out in the Instructions:`

// ModelFixer repairs output by showing the model its answer, the expected
// format and the parse error
type ModelFixer struct {
	model llm.Model
}

// NewModelFixer creates a Fixer backed by model
func NewModelFixer(model llm.Model) *ModelFixer {
	return &ModelFixer{model: model}
}

// Fix implements Fixer
func (f *ModelFixer) Fix(ctx context.Context, raw, schema string, parseErr error) (string, error) {
	prompt := fmt.Sprintf(fixPrompt, schema, raw, parseErr)
	out, err := llm.CompleteText(ctx, f.model, "", prompt, true)
	if err != nil {
		return "", fmt.Errorf("failed to fix output: %w", err)
	}
	return out, nil
}
