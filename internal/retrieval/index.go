// Package retrieval embeds document chunks and ranks them against queries
// by cosine similarity.
package retrieval

import (
	"context"
	"fmt"

	"github.com/pageza/recipepdf/internal/llm"
	"github.com/pageza/recipepdf/internal/types"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// Index embeds chunks and queries through an Embedder
type Index struct {
	embedder  llm.Embedder
	batchSize int
	logger    *zap.Logger
}

// NewIndex creates an Index. batchSize bounds the number of chunks sent in
// one embedding call; values below 1 send everything at once.
func NewIndex(embedder llm.Embedder, batchSize int, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{embedder: embedder, batchSize: batchSize, logger: logger}
}

// EmbedAll embeds every chunk. Any failed batch aborts the whole set.
func (x *Index) EmbedAll(ctx context.Context, chunks []types.Chunk) (*types.EmbeddedChunks, error) {
	set := &types.EmbeddedChunks{Items: make([]types.ChunkEmbedding, 0, len(chunks))}
	if len(chunks) == 0 {
		return set, nil
	}

	size := x.batchSize
	if size < 1 {
		size = len(chunks)
	}

	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := x.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to embed chunks %d-%d: %w", types.ErrEmbedding, start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d vectors, got %d", types.ErrEmbedding, len(batch), len(vectors))
		}

		for i, v := range vectors {
			if set.Dimensions == 0 {
				set.Dimensions = len(v)
			}
			if len(v) == 0 || len(v) != set.Dimensions {
				return nil, fmt.Errorf("%w: chunk %d has dimension %d, want %d",
					types.ErrEmbedding, batch[i].Index, len(v), set.Dimensions)
			}
			set.Items = append(set.Items, types.ChunkEmbedding{
				Chunk:  batch[i],
				Vector: pgvector.NewVector(v),
			})
		}
	}

	x.logger.Debug("embedded chunks",
		zap.Int("chunks", set.Len()),
		zap.Int("dimensions", set.Dimensions))

	return set, nil
}

// Query embeds a search string
func (x *Index) Query(ctx context.Context, text string) ([]float32, error) {
	v, err := x.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %w", types.ErrEmbedding, err)
	}
	return v, nil
}

// Search embeds query and returns the text of the k most similar chunks in
// set. An empty set returns no chunks without calling the embedder.
func (x *Index) Search(ctx context.Context, set *types.EmbeddedChunks, query string, k int) ([]string, error) {
	if set.Len() == 0 {
		return []string{}, nil
	}
	v, err := x.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if set.Dimensions != 0 && len(v) != set.Dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, want %d", types.ErrEmbedding, len(v), set.Dimensions)
	}
	return TopK(v, set, k), nil
}
