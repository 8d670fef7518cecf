package llm

// Friendly model aliases per provider. Unknown names pass through as
// literal model IDs.
var (
	geminiModels = map[string]string{
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	}
	openaiModels = map[string]string{
		"gpt-4o":      "gpt-4o",
		"gpt-4o-mini": "gpt-4o-mini",
	}
	anthropicModels = map[string]string{
		"claude-sonnet": "claude-sonnet-4-20250514",
		"claude-haiku":  "claude-haiku-4-5-20251001",
	}
)

func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
