package knowledge

// Difficulty tags carried by curriculum chunks.
const (
	DifficultyFoundational = "foundational"
	DifficultyCompetent    = "competent"
	DifficultyExpert       = "expert"
)

// Rubric maps a proficiency level name to a keyword-bearing description.
// The evaluator tokenizes each description and checks the learner's answer
// for keyword overlap, one pass/fail per level.
type Rubric map[string]string

// Assessment is a chunk's static checkpoint question. The dataset stores it
// either as a plain string or as an object with a "question" field and an
// optional "fallback" prompt; both shapes are resolved to this struct at
// load time so nothing downstream branches on the wire format.
type Assessment struct {
	Question string
	Fallback string
}

// Text returns the best available question text, or the generic prompt
// when the record carried neither shape.
func (a Assessment) Text() string {
	if a.Question != "" {
		return a.Question
	}
	if a.Fallback != "" {
		return a.Fallback
	}
	return "Explain the concept."
}

// Chunk is one addressable unit of curriculum content. Subtopic is the
// system's addressing unit: exactly one chunk exists per subtopic.
type Chunk struct {
	ID          string
	Topic       string
	Subtopic    string
	Difficulty  string
	Explanation string
	Assessment  Assessment
	Rubric      Rubric
}

// Base is the read-only knowledge base for a session's lifetime.
// Chunk order follows the dataset file; subtopic lookups are indexed.
type Base struct {
	chunks     []Chunk
	bySubtopic map[string]*Chunk
}

func newBase(chunks []Chunk) *Base {
	b := &Base{
		chunks:     chunks,
		bySubtopic: make(map[string]*Chunk, len(chunks)),
	}
	for i := range b.chunks {
		b.bySubtopic[b.chunks[i].Subtopic] = &b.chunks[i]
	}
	return b
}

// Len returns the number of chunks.
func (b *Base) Len() int { return len(b.chunks) }

// Chunks returns all chunks in dataset order.
func (b *Base) Chunks() []Chunk { return b.chunks }

// Subtopics returns all subtopic names in dataset order.
func (b *Base) Subtopics() []string {
	out := make([]string, len(b.chunks))
	for i := range b.chunks {
		out[i] = b.chunks[i].Subtopic
	}
	return out
}

// BySubtopic returns the chunk addressed by subtopic.
func (b *Base) BySubtopic(subtopic string) (*Chunk, bool) {
	c, ok := b.bySubtopic[subtopic]
	return c, ok
}

// First returns the first chunk in dataset order. It is the defensive
// fallback when a ledger key has no matching chunk; Load guarantees the
// base is non-empty, so First never returns nil for a loaded base.
func (b *Base) First() *Chunk {
	if len(b.chunks) == 0 {
		return nil
	}
	return &b.chunks[0]
}
