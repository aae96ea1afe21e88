package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/mocks"
	"github.com/pageza/recipepdf/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	IsRecipe bool   `json:"isRecipe"`
	Reason   string `json:"reason"`
}

func requireReason(v *verdict) error {
	if v.Reason == "" {
		return errors.New("reason is empty")
	}
	return nil
}

type stubFixer struct {
	outputs []string
	calls   int
}

func (s *stubFixer) Fix(_ context.Context, _, _ string, _ error) (string, error) {
	out := s.outputs[s.calls]
	s.calls++
	return out, nil
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{"none", "no json here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestParseWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("valid output needs no fixing", func(t *testing.T) {
		fixer := &stubFixer{}
		v, err := ParseWithRetry[verdict](ctx, `{"isRecipe":true,"reason":"has ingredients"}`, "schema", fixer, 2, requireReason)
		require.NoError(t, err)
		assert.True(t, v.IsRecipe)
		assert.Equal(t, 0, fixer.calls)
	})

	t.Run("fixes invalid output", func(t *testing.T) {
		fixer := &stubFixer{outputs: []string{`{"isRecipe":false,"reason":"an invoice"}`}}
		v, err := ParseWithRetry[verdict](ctx, `isRecipe: no`, "schema", fixer, 2, requireReason)
		require.NoError(t, err)
		assert.False(t, v.IsRecipe)
		assert.Equal(t, "an invoice", v.Reason)
		assert.Equal(t, 1, fixer.calls)
	})

	t.Run("check failures are fixed too", func(t *testing.T) {
		fixer := &stubFixer{outputs: []string{`{"isRecipe":true,"reason":"steps and times"}`}}
		v, err := ParseWithRetry[verdict](ctx, `{"isRecipe":true}`, "schema", fixer, 2, requireReason)
		require.NoError(t, err)
		assert.Equal(t, "steps and times", v.Reason)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		fixer := &stubFixer{outputs: []string{"still bad", "still bad"}}
		_, err := ParseWithRetry[verdict](ctx, "bad", "schema", fixer, 2, requireReason)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrStructuredOutputParse)

		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 3, pe.Attempts)
		assert.Equal(t, 2, fixer.calls)
	})

	t.Run("no fixer fails immediately", func(t *testing.T) {
		_, err := ParseWithRetry[verdict](ctx, "bad", "schema", nil, 2, nil)
		assert.ErrorIs(t, err, types.ErrStructuredOutputParse)
	})
}

func TestModelFixer(t *testing.T) {
	ctx := context.Background()
	model := new(mocks.MockModel)
	model.On("Complete", ctx, mock.MatchedBy(func(req llm.Request) bool {
		return req.JSON && len(req.Messages) == 1 &&
			strings.Contains(req.Messages[0].Text, "SCHEMA") &&
			strings.Contains(req.Messages[0].Text, "oops")
	})).Return(mocks.TextResponse(`{"isRecipe":true,"reason":"fixed"}`), nil)

	v, err := ParseWithRetry[verdict](ctx, "oops", "SCHEMA", NewModelFixer(model), 1, requireReason)
	require.NoError(t, err)
	assert.Equal(t, "fixed", v.Reason)
	model.AssertExpectations(t)
}

func TestModelFixerError(t *testing.T) {
	ctx := context.Background()
	model := new(mocks.MockModel)
	model.On("Complete", ctx, mock.Anything).Return(nil, types.ErrModel)

	_, err := ParseWithRetry[verdict](ctx, "oops", "SCHEMA", NewModelFixer(model), 2, nil)
	assert.ErrorIs(t, err, types.ErrStructuredOutputParse)
	assert.ErrorIs(t, err, types.ErrModel)
}
