package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDownloader is a mock PDF downloader
type MockDownloader struct {
	mock.Mock
}

// Fetch mocks the Fetch method
func (m *MockDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockTextExtractor is a mock PDF text extractor
type MockTextExtractor struct {
	mock.Mock
}

// ExtractText mocks the ExtractText method
func (m *MockTextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}
