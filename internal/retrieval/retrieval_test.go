package retrieval

import (
	"context"
	"math"
	"testing"

	"github.com/abhisek/mltutor/internal/knowledge"
)

func testBase(t *testing.T) *knowledge.Base {
	t.Helper()
	base, err := knowledge.Parse([]byte(`[
		{"id": "c1", "topic": "Supervised Learning", "subtopic": "Linear Regression",
		 "difficulty": "foundational", "explanation": "Fitting a line through points to predict values.",
		 "assessment": "What does the slope mean?", "evaluation_rubric": {"basic": "line slope"}},
		{"id": "c2", "topic": "Supervised Learning", "subtopic": "Logistic Regression",
		 "difficulty": "competent", "explanation": "Classification with a sigmoid over a linear model.",
		 "assessment": "Why a sigmoid?", "evaluation_rubric": {"basic": "sigmoid probability"}},
		{"id": "c3", "topic": "Optimization", "subtopic": "Gradient Descent",
		 "difficulty": "foundational", "explanation": "Iteratively stepping down the loss gradient.",
		 "assessment": "What is a learning rate?", "evaluation_rubric": {"basic": "step size"}}
	]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return base
}

// fixedEmbedder returns hand-built vectors: chunks get axis-aligned unit
// vectors, queries get whatever the test configures.
type fixedEmbedder struct {
	byText map[string][]float32
	dims   int
}

func (f *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.byText[text]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, f.dims)
		}
	}
	return out, nil
}

func TestIndexRetrieveRanksBySimilarity(t *testing.T) {
	base := testBase(t)
	emb := &fixedEmbedder{
		dims: 3,
		byText: map[string][]float32{
			"Linear Regression: Fitting a line through points to predict values.":      {1, 0, 0},
			"Logistic Regression: Classification with a sigmoid over a linear model.":  {0, 1, 0},
			"Gradient Descent: Iteratively stepping down the loss gradient.":           {0, 0, 1},
			"how do I step down a gradient":                                            {0.1, 0, 0.9},
		},
	}

	ix, err := BuildIndex(context.Background(), emb, base)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	results, err := ix.Retrieve(context.Background(), "how do I step down a gradient", 2, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if results[0].Chunk.Subtopic != "Gradient Descent" {
		t.Errorf("top result = %q, want Gradient Descent", results[0].Chunk.Subtopic)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not sorted by score: %v then %v", results[0].Score, results[1].Score)
	}
}

func TestIndexRetrieveDifficultyFilter(t *testing.T) {
	base := testBase(t)
	emb := &fixedEmbedder{dims: 3, byText: map[string][]float32{
		"regression": {1, 1, 1},
	}}

	ix, err := BuildIndex(context.Background(), emb, base)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	results, err := ix.Retrieve(context.Background(), "regression", 10, "competent")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, r := range results {
		if r.Chunk.Difficulty != "competent" {
			t.Errorf("chunk %q has difficulty %q", r.Chunk.Subtopic, r.Chunk.Difficulty)
		}
	}
}

func TestKeywordRetriever(t *testing.T) {
	r := NewKeywordRetriever(testBase(t))

	results, err := r.Retrieve(context.Background(), "sigmoid classification", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 || results[0].Chunk.Subtopic != "Logistic Regression" {
		t.Fatalf("top result = %+v, want Logistic Regression", results)
	}
	if results[0].Score != 1.0 {
		t.Errorf("score = %v, want 1.0 (both tokens hit)", results[0].Score)
	}
}

func TestKeywordRetrieverNoMatches(t *testing.T) {
	r := NewKeywordRetriever(testBase(t))

	results, err := r.Retrieve(context.Background(), "quantum chromodynamics", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len = %d, want 0", len(results))
	}
}

func TestKeywordRetrieverEmptyQuery(t *testing.T) {
	r := NewKeywordRetriever(testBase(t))

	results, err := r.Retrieve(context.Background(), "   ", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("cosine = %v, want %v", got, tc.want)
			}
		})
	}
}
