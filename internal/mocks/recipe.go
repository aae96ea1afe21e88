package mocks

import (
	"context"

	"github.com/pageza/recipepdf/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockValidator is a mock recipe validator
type MockValidator struct {
	mock.Mock
}

// Validate mocks the Validate method
func (m *MockValidator) Validate(ctx context.Context, doc *types.Document) types.ValidationResult {
	args := m.Called(ctx, doc)
	return args.Get(0).(types.ValidationResult)
}

// MockRecipeExtractor is a mock recipe extractor
type MockRecipeExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method
func (m *MockRecipeExtractor) Extract(ctx context.Context, chunks []string) (*types.Recipe, error) {
	args := m.Called(ctx, chunks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// MockCookingTimeExtractor is a mock cooking time extractor
type MockCookingTimeExtractor struct {
	mock.Mock
}

// ExtractTime mocks the ExtractTime method
func (m *MockCookingTimeExtractor) ExtractTime(ctx context.Context, set *types.EmbeddedChunks) (*types.CookingTime, error) {
	args := m.Called(ctx, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CookingTime), args.Error(1)
}
