package service

import (
	"context"
	"strings"
	"testing"

	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/mocks"
	"github.com/pageza/recipepdf/internal/retrieval"
	"github.com/pageza/recipepdf/internal/types"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		phrase string
		want   float64
	}{
		{"約10分", 10},
		{"5〜10分", 10},
		{"5～10分", 10},
		{"５〜１０分", 10},
		{"1時間30分", 90},
		{"1時間半", 90},
		{"30分〜1時間", 60},
		{"2 hours", 120},
		{"about 15 minutes", 15},
		{"20 min", 20},
		{"15", 15},
		{"30秒", 0.5},
		{"1分30秒", 1.5},
		{"90 seconds", 1.5},
		{"45 secs", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, ok := NormalizeDuration(tt.phrase)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := NormalizeDuration("じっくり煮込む")
	assert.False(t, ok)
}

func TestSumMinutes(t *testing.T) {
	assert.Equal(t, 0.0, SumMinutes(nil))
	assert.Equal(t, 25.5, SumMinutes([]float64{10, 15.5}))
}

func timeExtractor(model llm.Model, embedder *mocks.MockEmbedder) *CookingTimeExtractor {
	return NewCookingTimeExtractor(model, retrieval.NewIndex(embedder, 16, nil), pipelineConfig(), nil)
}

func TestCookingTimeExtractor_DirectAnswer(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return len(req.Tools) == 1 && req.Tools[0].Name == SumMinutesTool
	})).Return(mocks.TextResponse(`{"totalMinutes": 25, "durations": [{"phrase": "約10分", "minutes": 10}, {"phrase": "15分", "minutes": 15}]}`), nil)

	ct, err := timeExtractor(model, new(mocks.MockEmbedder)).
		ExtractFromChunks(context.Background(), []string{"約10分煮て、さらに15分"})
	require.NoError(t, err)
	assert.Equal(t, 25.0, ct.TotalMinutes)
	assert.Len(t, ct.Breakdown, 2)
}

func TestCookingTimeExtractor_NormalizesPhrases(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.Anything).
		Return(mocks.TextResponse(`{"durations": [{"phrase": "約10分"}, {"phrase": "5〜10分"}, {"phrase": "1時間30分"}]}`), nil)

	ct, err := timeExtractor(model, new(mocks.MockEmbedder)).
		ExtractFromChunks(context.Background(), []string{"..."})
	require.NoError(t, err)
	assert.Equal(t, 110.0, ct.TotalMinutes)
	assert.Equal(t, []types.Duration{
		{Phrase: "約10分", Minutes: 10},
		{Phrase: "5〜10分", Minutes: 10},
		{Phrase: "1時間30分", Minutes: 90},
	}, ct.Breakdown)
}

func TestCookingTimeExtractor_ToolCall(t *testing.T) {
	toolCall := &llm.Response{
		Kind: llm.ResponseToolCall,
		ToolCalls: []llm.ToolCall{{
			ID:        "call_1",
			Name:      SumMinutesTool,
			Arguments: `{"minutes": [10, 5]}`,
		}},
	}

	t.Run("final answer after tool result", func(t *testing.T) {
		model := new(mocks.MockModel)
		model.On("Complete", mock.Anything, mock.Anything).Return(toolCall, nil).Once()
		model.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
			last := req.Messages[len(req.Messages)-1]
			return len(req.Messages) == 4 &&
				req.Messages[2].Role == llm.RoleAssistant &&
				last.Role == llm.RoleTool && last.ToolCallID == "call_1" && last.Text == "15"
		})).Return(mocks.TextResponse(`{"totalMinutes": 15}`), nil).Once()

		ct, err := timeExtractor(model, new(mocks.MockEmbedder)).
			ExtractFromChunks(context.Background(), []string{"カレーライス、玉ねぎ2個、約15分で完成"})
		require.NoError(t, err)
		assert.Equal(t, 15.0, ct.TotalMinutes)
		model.AssertExpectations(t)
	})

	t.Run("tool sum when final answer is unusable", func(t *testing.T) {
		model := new(mocks.MockModel)
		model.On("Complete", mock.Anything, mock.Anything).Return(toolCall, nil).Once()
		model.On("Complete", mock.Anything, mock.Anything).Return(mocks.TextResponse("合計は15分です"), nil).Once()

		ct, err := timeExtractor(model, new(mocks.MockEmbedder)).
			ExtractFromChunks(context.Background(), []string{"..."})
		require.NoError(t, err)
		assert.Equal(t, 15.0, ct.TotalMinutes)
		assert.Len(t, ct.Breakdown, 2)
	})

	t.Run("tools are withdrawn after max rounds", func(t *testing.T) {
		model := new(mocks.MockModel)
		model.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
			return len(req.Tools) > 0
		})).Return(toolCall, nil)
		model.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
			return len(req.Tools) == 0
		})).Return(mocks.TextResponse(`{"totalMinutes": 15}`), nil)

		ct, err := timeExtractor(model, new(mocks.MockEmbedder)).
			ExtractFromChunks(context.Background(), []string{"..."})
		require.NoError(t, err)
		assert.Equal(t, 15.0, ct.TotalMinutes)
		model.AssertNumberOfCalls(t, "Complete", pipelineConfig().MaxToolRounds+1)
	})
}

func TestCookingTimeExtractor_ModelError(t *testing.T) {
	model := new(mocks.MockModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(nil, types.ErrModel)

	ct, err := timeExtractor(model, new(mocks.MockEmbedder)).
		ExtractFromChunks(context.Background(), []string{"..."})
	assert.Nil(t, ct)
	assert.ErrorIs(t, err, types.ErrModel)
}

func TestCookingTimeExtractor_ExtractTime(t *testing.T) {
	ctx := context.Background()
	set := &types.EmbeddedChunks{
		Dimensions: 2,
		Items: []types.ChunkEmbedding{
			{Chunk: types.Chunk{Index: 0, Text: "材料 玉ねぎ2個"}, Vector: pgvector.NewVector([]float32{1, 0})},
			{Chunk: types.Chunk{Index: 1, Text: "約15分で完成"}, Vector: pgvector.NewVector([]float32{0, 1})},
		},
	}

	embedder := new(mocks.MockEmbedder)
	embedder.On("EmbedQuery", ctx, pipelineConfig().TimeQuery).Return([]float32{0, 1}, nil)

	model := new(mocks.MockModel)
	model.On("Complete", ctx, mock.MatchedBy(func(req llm.Request) bool {
		prompt := req.Messages[1].Text
		// the best match comes first
		return len(prompt) > 0 && strings.Index(prompt, "約15分で完成") < strings.Index(prompt, "材料 玉ねぎ2個")
	})).Return(mocks.TextResponse(`{"totalMinutes": 15}`), nil)

	ct, err := timeExtractor(model, embedder).ExtractTime(ctx, set)
	require.NoError(t, err)
	assert.Equal(t, 15.0, ct.TotalMinutes)
	embedder.AssertExpectations(t)

	t.Run("no chunks skips the model", func(t *testing.T) {
		model := new(mocks.MockModel)
		ct, err := timeExtractor(model, new(mocks.MockEmbedder)).ExtractTime(ctx, &types.EmbeddedChunks{})
		assert.NoError(t, err)
		assert.Nil(t, ct)
		model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})
}
