package service

import (
	"context"

	"github.com/pageza/recipepdf/internal/types"
)

// IDownloader fetches the raw bytes of a document
type IDownloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ITextExtractor extracts plain text from PDF bytes
type ITextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// IValidator classifies a document as a recipe or not. It never fails.
type IValidator interface {
	Validate(ctx context.Context, doc *types.Document) types.ValidationResult
}

// IRetriever embeds chunks and searches them
type IRetriever interface {
	EmbedAll(ctx context.Context, chunks []types.Chunk) (*types.EmbeddedChunks, error)
	ISearcher
}

// ISearcher returns the k chunks of set most similar to query
type ISearcher interface {
	Search(ctx context.Context, set *types.EmbeddedChunks, query string, k int) ([]string, error)
}

// IRecipeExtractor extracts a recipe from context chunks
type IRecipeExtractor interface {
	Extract(ctx context.Context, chunks []string) (*types.Recipe, error)
}

// ICookingTimeExtractor extracts the total cooking time from an embedded document
type ICookingTimeExtractor interface {
	ExtractTime(ctx context.Context, set *types.EmbeddedChunks) (*types.CookingTime, error)
}
