package model

// Requirement is a single writing-standard rule from the requirements catalog
type Requirement struct {
	ID             string         `json:"id"`
	Description    string         `json:"description"`
	Reference      string         `json:"reference"` // Verbatim text from the style guide
	Category       string         `json:"category"`
	Classification Classification `json:"classification"`
	Where          string         `json:"where"` // Which part of the article the rule targets
	When           string         `json:"when"`  // Condition under which the rule applies
	Level          string         `json:"level,omitempty"`
}

// Classification ranks how strictly a requirement must be followed
type Classification string

const (
	ClassificationImperative Classification = "Imperative Standards"
	ClassificationBest       Classification = "Best Practices"
	ClassificationFlexible   Classification = "Flexible Guidelines"
)

// Known reports whether c is one of the fixed classifications
func (c Classification) Known() bool {
	switch c {
	case ClassificationImperative, ClassificationBest, ClassificationFlexible:
		return true
	default:
		return false
	}
}

// RequirementGroup is one category block of the catalog file
type RequirementGroup struct {
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Requirements []Requirement `json:"requirements"`
}

// RequirementsDocument is the root of requirements.json
type RequirementsDocument struct {
	Groups []RequirementGroup `json:"groups"`
}
