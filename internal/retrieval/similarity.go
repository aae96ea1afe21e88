package retrieval

import (
	"math"
	"sort"

	"github.com/pageza/recipepdf/internal/types"
)

// CosineSimilarity returns dot(a,b) / (|a| * |b|). Vectors of different
// length are compared over their common prefix; a zero vector scores 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Match is a chunk scored against a query
type Match struct {
	Chunk types.Chunk
	Score float64
}

// Rank scores every chunk in set against query and orders them by descending
// similarity. Equal scores keep the original chunk order.
func Rank(query []float32, set *types.EmbeddedChunks) []Match {
	if set.Len() == 0 {
		return []Match{}
	}
	matches := make([]Match, len(set.Items))
	for i, item := range set.Items {
		matches[i] = Match{Chunk: item.Chunk, Score: CosineSimilarity(query, item.Vector.Slice())}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// TopK returns the text of the k chunks most similar to query, most similar
// first. An empty set yields an empty slice and k larger than the set
// returns every chunk.
func TopK(query []float32, set *types.EmbeddedChunks, k int) []string {
	matches := Rank(query, set)
	if k < 0 {
		k = 0
	}
	if k < len(matches) {
		matches = matches[:k]
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Chunk.Text
	}
	return texts
}
