package mocks

import (
	"context"

	"github.com/pageza/recipepdf/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockModel is a mock implementation of llm.Model
type MockModel struct {
	mock.Mock
}

// Complete mocks the Complete method
func (m *MockModel) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// TextResponse builds a plain text model response
func TextResponse(text string) *llm.Response {
	return &llm.Response{Kind: llm.ResponseText, Text: text}
}

// MockEmbedder is a mock implementation of llm.Embedder
type MockEmbedder struct {
	mock.Mock
}

// EmbedDocuments mocks the EmbedDocuments method
func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// EmbedQuery mocks the EmbedQuery method
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}
