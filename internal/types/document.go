package types

import (
	pgvector "github.com/pgvector/pgvector-go"
)

// Document is a downloaded PDF together with its extracted plain text
type Document struct {
	URL   string
	Bytes []byte
	Text  string
}

// Chunk is a contiguous substring of a document's text.
// Start is the byte offset of Text within the document text.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	Text  string `json:"text"`
}

// End returns the byte offset just past the chunk
func (c Chunk) End() int {
	return c.Start + len(c.Text)
}

// ChunkEmbedding pairs a chunk with its embedding vector
type ChunkEmbedding struct {
	Chunk  Chunk
	Vector pgvector.Vector
}

// EmbeddedChunks is the read-only set of chunk embeddings built for one run
type EmbeddedChunks struct {
	Items      []ChunkEmbedding
	Dimensions int
}

// Len returns the number of embedded chunks
func (e *EmbeddedChunks) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Items)
}
