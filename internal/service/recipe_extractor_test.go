package service

import (
	"context"
	"strings"
	"testing"

	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/mocks"
	"github.com/pageza/recipepdf/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const curryJSON = `{"name": "カレーライス", "ingredients": [
	{"name": "玉ねぎ", "unit": "個", "quantity": 2},
	{"name": "牛肉", "unit": "グラム", "quantity": 300}
]}`

func TestRecipeExtractor_Extract(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		prompt := req.Messages[len(req.Messages)-1].Text
		return req.JSON &&
			strings.Contains(prompt, "【文書内容】\nカレーライス") &&
			strings.Contains(prompt, "\n\n【文書内容】\n材料")
	})).Return(mocks.TextResponse(curryJSON), nil)

	recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).
		Extract(context.Background(), []string{"カレーライス", "材料 玉ねぎ2個 牛肉300g"})
	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Equal(t, "カレーライス", recipe.Name)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, types.Ingredient{Name: "玉ねぎ", Unit: "個", Quantity: 2}, recipe.Ingredients[0])
}

func TestRecipeExtractor_NoContext(t *testing.T) {
	model := new(mocks.MockModel)
	recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, recipe)
	model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestRecipeExtractor_EmptyIngredients(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(mocks.TextResponse(`{"name": "白ごはん"}`), nil)

	recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), []string{"白ごはん"})
	require.NoError(t, err)
	assert.NotNil(t, recipe.Ingredients)
	assert.Empty(t, recipe.Ingredients)
}

func TestRecipeExtractor_FixesInvalidOutput(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.Anything).
		Return(mocks.TextResponse(`{"name": "カレーライス", "ingredients": [{"name": "玉ねぎ", "unit": "個", "quantity": -2}]}`), nil).Once()
	model.On("Complete", mock.Anything, mock.Anything).Return(mocks.TextResponse(curryJSON), nil).Once()

	recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), []string{"カレー"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, recipe.Ingredients[0].Quantity)
	model.AssertNumberOfCalls(t, "Complete", 2)
}

func TestRecipeExtractor_FixesMissingQuantity(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.Anything).
		Return(mocks.TextResponse(`{"name": "カレーライス", "ingredients": [{"name": "玉ねぎ", "unit": "個"}]}`), nil).Once()
	model.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Messages[len(req.Messages)-1].Text, "has no quantity")
	})).Return(mocks.TextResponse(curryJSON), nil).Once()

	recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), []string{"カレー"})
	require.NoError(t, err)
	assert.Equal(t, types.Ingredient{Name: "玉ねぎ", Unit: "個", Quantity: 2}, recipe.Ingredients[0])
	model.AssertNumberOfCalls(t, "Complete", 2)
}

func TestRecipeExtractor_MissingQuantityIsNotZero(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.Anything).
		Return(mocks.TextResponse(`{"name": "カレーライス", "ingredients": [{"name": "塩", "unit": "少々"}]}`), nil)

	recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), []string{"カレー"})
	assert.Nil(t, recipe)
	assert.ErrorIs(t, err, types.ErrStructuredOutputParse)
}

func TestRecipeExtractor_Failures(t *testing.T) {
	t.Run("model error", func(t *testing.T) {
		model := new(mocks.MockModel)
		model.On("Complete", mock.Anything, mock.Anything).Return(nil, types.ErrModel)

		recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), []string{"x"})
		assert.Nil(t, recipe)
		assert.ErrorIs(t, err, types.ErrModel)
	})

	t.Run("unparseable output", func(t *testing.T) {
		model := new(mocks.MockModel)
		model.On("Complete", mock.Anything, mock.Anything).Return(mocks.TextResponse(`{"name": ""}`), nil)

		recipe, err := NewRecipeExtractor(model, pipelineConfig(), nil).Extract(context.Background(), []string{"x"})
		assert.Nil(t, recipe)
		assert.ErrorIs(t, err, types.ErrStructuredOutputParse)
		model.AssertNumberOfCalls(t, "Complete", 3)
	})
}
