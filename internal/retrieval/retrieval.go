// Package retrieval finds the curriculum chunks most relevant to a free-text
// query. The vector path embeds chunk explanations once at startup and
// brute-force scans cosine similarity per query; the corpus is small enough
// that an ANN index would be overhead. A keyword retriever covers the
// no-credentials path.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/abhisek/mltutor/internal/knowledge"
)

// Result is one retrieved chunk with its relevance score.
type Result struct {
	Chunk *knowledge.Chunk
	Score float64
}

// Retriever finds the chunks most relevant to a query. An empty difficulty
// matches all chunks; otherwise only chunks tagged with it are considered.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, difficulty string) ([]Result, error)
}

// Embedder converts texts into dense vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is a brute-force cosine-similarity retriever over embedded chunks.
type Index struct {
	embedder Embedder
	chunks   []knowledge.Chunk
	vectors  [][]float32
}

// BuildIndex embeds every chunk in the base. Chunks are embedded as
// "subtopic: explanation" so short queries naming a subtopic rank it first.
func BuildIndex(ctx context.Context, embedder Embedder, base *knowledge.Base) (*Index, error) {
	chunks := base.Chunks()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Subtopic + ": " + c.Explanation
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed curriculum: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	return &Index{embedder: embedder, chunks: chunks, vectors: vectors}, nil
}

func (ix *Index) Retrieve(ctx context.Context, query string, topK int, difficulty string) ([]Result, error) {
	if topK <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	qvecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv := qvecs[0]

	results := make([]Result, 0, len(ix.chunks))
	for i := range ix.chunks {
		c := &ix.chunks[i]
		if difficulty != "" && c.Difficulty != difficulty {
			continue
		}
		results = append(results, Result{Chunk: c, Score: cosine(qv, ix.vectors[i])})
	}

	sortResults(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// KeywordRetriever scores chunks by query-token overlap. It is the
// degradation path when no embedding credentials are configured.
type KeywordRetriever struct {
	chunks []knowledge.Chunk
}

// NewKeywordRetriever builds a keyword retriever over the base.
func NewKeywordRetriever(base *knowledge.Base) *KeywordRetriever {
	return &KeywordRetriever{chunks: base.Chunks()}
}

func (r *KeywordRetriever) Retrieve(_ context.Context, query string, topK int, difficulty string) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(r.chunks))
	for i := range r.chunks {
		c := &r.chunks[i]
		if difficulty != "" && c.Difficulty != difficulty {
			continue
		}

		haystack := strings.ToLower(c.Subtopic + " " + c.Topic + " " + c.Explanation)
		hits := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		results = append(results, Result{Chunk: c, Score: float64(hits) / float64(len(tokens))})
	}

	sortResults(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// sortResults orders by score descending, dataset order for ties.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
