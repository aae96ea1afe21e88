// Package chunker splits document text into fixed-size, order-preserving chunks.
package chunker

import (
	"unicode/utf8"

	"github.com/pageza/recipepdf/internal/types"
)

// Chunk splits text into contiguous, non-overlapping chunks of chunkSize runes.
// The last chunk may be shorter. Empty text yields an empty slice.
// Concatenating the chunk texts in order reproduces text exactly.
func Chunk(text string, chunkSize int) []types.Chunk {
	chunks := make([]types.Chunk, 0)
	if text == "" || chunkSize <= 0 {
		return chunks
	}

	start := 0
	for start < len(text) {
		end := start
		for n := 0; n < chunkSize && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		chunks = append(chunks, types.Chunk{
			Index: len(chunks),
			Start: start,
			Text:  text[start:end],
		})
		start = end
	}
	return chunks
}

// Texts returns the text of each chunk in order
func Texts(chunks []types.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
