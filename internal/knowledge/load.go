package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// chunkSchema is the JSON Schema every dataset record must satisfy.
// A non-conforming record is a fatal startup error, not a per-turn one.
var chunkSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 1},
			"topic":       map[string]any{"type": "string", "minLength": 1},
			"subtopic":    map[string]any{"type": "string", "minLength": 1},
			"difficulty":  map[string]any{"type": "string", "minLength": 1},
			"explanation": map[string]any{"type": "string", "minLength": 1},
			"assessment": map[string]any{
				"oneOf": []any{
					map[string]any{"type": "string"},
					map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
							"fallback": map[string]any{"type": "string"},
						},
						"required": []any{"question"},
					},
				},
			},
			"evaluation_rubric": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
		"required": []any{
			"id", "topic", "subtopic", "difficulty",
			"explanation", "assessment", "evaluation_rubric",
		},
	},
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func datasetSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		// The compiler wants a parsed JSON value, so round-trip the
		// definition map through encoding/json first.
		raw, err := json.Marshal(chunkSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal dataset schema: %w", err)
			return
		}
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			compileErr = fmt.Errorf("parse dataset schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://knowledge-dataset.json"
		if err := c.AddResource(url, parsed); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}

// rawChunk is the wire shape of a dataset record. Assessment stays raw
// until resolveAssessment decides which of the two shapes it carries.
type rawChunk struct {
	ID          string            `json:"id"`
	Topic       string            `json:"topic"`
	Subtopic    string            `json:"subtopic"`
	Difficulty  string            `json:"difficulty"`
	Explanation string            `json:"explanation"`
	Assessment  json.RawMessage   `json:"assessment"`
	Rubric      map[string]string `json:"evaluation_rubric"`
}

func resolveAssessment(raw json.RawMessage) (Assessment, error) {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return Assessment{Question: plain}, nil
	}

	var structured struct {
		Question string `json:"question"`
		Fallback string `json:"fallback"`
	}
	if err := json.Unmarshal(raw, &structured); err != nil {
		return Assessment{}, fmt.Errorf("assessment is neither string nor object: %w", err)
	}
	return Assessment{Question: structured.Question, Fallback: structured.Fallback}, nil
}

// Parse validates and decodes a knowledge dataset. It enforces the
// startup preconditions: schema-conforming records, unique subtopics,
// and a non-empty dataset.
func Parse(data []byte) (*Base, error) {
	schema, err := datasetSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse knowledge dataset: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("knowledge dataset schema: %w", err)
	}

	var raws []rawChunk
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode knowledge dataset: %w", err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("knowledge dataset is empty")
	}

	seen := make(map[string]string, len(raws))
	chunks := make([]Chunk, 0, len(raws))
	for i, r := range raws {
		if prev, dup := seen[r.Subtopic]; dup {
			return nil, fmt.Errorf("duplicate subtopic %q (records %s and %s)", r.Subtopic, prev, r.ID)
		}
		seen[r.Subtopic] = r.ID

		assessment, err := resolveAssessment(r.Assessment)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}

		chunks = append(chunks, Chunk{
			ID:          r.ID,
			Topic:       r.Topic,
			Subtopic:    r.Subtopic,
			Difficulty:  r.Difficulty,
			Explanation: r.Explanation,
			Assessment:  assessment,
			Rubric:      Rubric(r.Rubric),
		})
	}

	return newBase(chunks), nil
}

// Load reads and parses the knowledge dataset at path.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge dataset: %w", err)
	}
	base, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}
