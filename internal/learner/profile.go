package learner

import "strings"

// Persona is the inferred learner archetype governing explanation style
// and depth.
type Persona string

const (
	PersonaBeginner     Persona = "beginner"
	PersonaTheoryAware  Persona = "theory_aware"
	PersonaPractitioner Persona = "practitioner"
	PersonaAdvanced     Persona = "advanced"
	// PersonaDomainUser exists in the taxonomy for learners who consume ML
	// outputs without building models. The points table never assigns it;
	// it is kept for display compatibility with stored profiles.
	PersonaDomainUser Persona = "domain_user"
)

// Profile is derived exactly once per session from the completed
// onboarding answers. Immutable after creation.
type Profile struct {
	Persona Persona
	Intent  string
	// Score is the raw points total the persona was derived from.
	// Diagnostic only.
	Score int
}

// InferProfile derives a profile from the five onboarding answers using the
// points table. Answers are free text (onboarding is lenient), so each
// question contributes points by keyword rather than exact option match.
// The intent answer is copied verbatim and never affects the persona.
func InferProfile(answers map[string]string) Profile {
	points := selfLevelPoints(answers[QSelfLevel]) +
		conceptCheckPoints(answers[QConceptCheck]) +
		mathLevelPoints(answers[QMathLevel]) +
		practicalPoints(answers[QPractical])

	return Profile{
		Persona: personaFor(points),
		Intent:  answers[QIntent],
		Score:   points,
	}
}

func personaFor(points int) Persona {
	switch {
	case points <= 3:
		return PersonaBeginner
	case points <= 6:
		return PersonaTheoryAware
	case points <= 9:
		return PersonaPractitioner
	default:
		return PersonaAdvanced
	}
}

func selfLevelPoints(answer string) int {
	a := strings.ToLower(answer)
	switch {
	case strings.Contains(a, "deployed") || strings.Contains(a, "research"):
		return 3
	case strings.Contains(a, "trained"):
		return 2
	case strings.Contains(a, "basic"):
		return 1
	default:
		return 0
	}
}

func conceptCheckPoints(answer string) int {
	if strings.Contains(strings.ToLower(answer), conceptCheckCorrect) {
		return 2
	}
	return 0
}

func mathLevelPoints(answer string) int {
	a := strings.ToLower(answer)
	switch {
	case strings.Contains(a, "gradient") || strings.Contains(a, "optimization"):
		return 3
	case strings.Contains(a, "linear") || strings.Contains(a, "calculus"):
		return 2
	case strings.Contains(a, "algebra") || strings.Contains(a, "probability"):
		return 1
	default:
		return 0
	}
}

func practicalPoints(answer string) int {
	a := strings.ToLower(answer)
	switch {
	case strings.Contains(a, "tuning") || strings.Contains(a, "evaluation"):
		return 3
	case strings.Contains(a, "librar"):
		return 2
	default:
		return 0
	}
}
