package model

// RequirementEvaluation is the judged outcome of one requirement against
// one unit of text (article, section or sentence).
//
// Score and Confidence are nil when the evaluator produced no number; such
// records are invalid and must never reach an average.
type RequirementEvaluation struct {
	RequirementID          string         `json:"requirement_id"`
	RequirementCategory    string         `json:"requirement_category"`
	Classification         Classification `json:"classification"`
	Applicable             bool           `json:"applicable"`
	ApplicabilityReasoning string         `json:"applicability_reasoning"`
	Score                  *float64       `json:"score"`      // 0-1 or null
	Confidence             *float64       `json:"confidence"` // 0-1 or null
	Evidence               string         `json:"evidence"`
	Reasoning              string         `json:"reasoning"`
	OverlapNotes           string         `json:"overlap_notes,omitempty"`
}

// IsValid reports whether both score and confidence are present
func (e RequirementEvaluation) IsValid() bool {
	return e.Score != nil && e.Confidence != nil
}

// ScoreValue returns the score, or 0 when it is missing
func (e RequirementEvaluation) ScoreValue() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// SentenceEvaluation holds the evaluations of a single sentence
type SentenceEvaluation struct {
	Index                  int                     `json:"index"` // 1-based
	Sentence               string                  `json:"sentence"`
	RequirementEvaluations []RequirementEvaluation `json:"requirement_evaluations"`
	MetaNotes              *string                 `json:"meta_notes,omitempty"`
}

// SectionEvaluation holds a section's own evaluations and those of its sentences
type SectionEvaluation struct {
	Index                  int                     `json:"index"` // 1-based
	Title                  string                  `json:"title"`
	SentenceEvaluations    []SentenceEvaluation    `json:"sentence_evaluations"`
	RequirementEvaluations []RequirementEvaluation `json:"requirement_evaluations"` // Whole-section judgements
	MetaNotes              *string                 `json:"meta_notes,omitempty"`
}

// ArticleEvaluation holds requirements judged against the article as a whole
type ArticleEvaluation struct {
	RequirementEvaluations []RequirementEvaluation `json:"requirement_evaluations"`
	MetaNotes              *string                 `json:"meta_notes,omitempty"`
}

// Evaluation is the root of evaluation.json
type Evaluation struct {
	Sections          []SectionEvaluation `json:"sections"`
	ArticleEvaluation ArticleEvaluation   `json:"article_evaluation"`
}

// EnrichedEvaluation is an evaluation joined with its catalog entry.
// Catalog fields are empty strings when the requirement is not in the catalog.
type EnrichedEvaluation struct {
	RequirementEvaluation
	Description string `json:"description"`
	Reference   string `json:"reference"`
	Where       string `json:"where"`
	When        string `json:"when"`
}
