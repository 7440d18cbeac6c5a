package model

import "time"

// Aggregate is an average score together with the number of data points behind it.
// A zero Score with a zero Count means "nothing to average", not "non-compliant".
type Aggregate struct {
	Score float64 `json:"score"` // 0-1
	Count int     `json:"count"`
}

// Empty reports whether the aggregate was computed from no data
func (a Aggregate) Empty() bool {
	return a.Count == 0
}

// Band is the coarse rating shown next to a score. It is empty when the
// score was computed from no data.
type Band string

const (
	BandHigh   Band = "high"   // >= 0.8
	BandMedium Band = "medium" // >= 0.5
	BandLow    Band = "low"
)

// Stats counts evaluations per band
type Stats struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// PanelKind is what the user clicked on
type PanelKind string

const (
	PanelSection  PanelKind = "section"
	PanelSentence PanelKind = "sentence"
	PanelArticle  PanelKind = "article"
)

// CategoryGroup is a run of evaluations sharing a requirement category
type CategoryGroup struct {
	Category    string               `json:"category"`
	Evaluations []EnrichedEvaluation `json:"evaluations"`
}

// Panel is the detailed scoring view for one selection
type Panel struct {
	Key           string               `json:"key"`
	Source        Source               `json:"source"`
	Kind          PanelKind            `json:"kind"`
	SectionIndex  int                  `json:"section_index,omitempty"`  // 1-based
	SentenceIndex int                  `json:"sentence_index,omitempty"` // 1-based
	Title         string               `json:"title,omitempty"`
	Text          string               `json:"text,omitempty"`
	Aggregate     Aggregate            `json:"aggregate"`
	Percent       int                  `json:"percent"`
	Band          Band                 `json:"band,omitempty"`
	Stats         Stats                `json:"stats"`
	Evaluations   []EnrichedEvaluation `json:"evaluations"`
	Groups        []CategoryGroup      `json:"groups"`
}

// SentenceScore is a sentence line in a report
type SentenceScore struct {
	Index     int       `json:"index"` // 1-based
	Text      string    `json:"text"`
	Aggregate Aggregate `json:"aggregate"`
}

// SectionScore is a section line in a report
type SectionScore struct {
	Index     int             `json:"index"` // 1-based
	Title     string          `json:"title"`
	Aggregate Aggregate       `json:"aggregate"`
	Band      Band            `json:"band,omitempty"`
	Sentences []SentenceScore `json:"sentences"`
}

// Report is the whole-article summary for one key and source
type Report struct {
	Key          string               `json:"key"`
	Source       Source               `json:"source"`
	GeneratedAt  time.Time            `json:"generated_at"`
	Article      Aggregate            `json:"article"` // Mean of section means
	Percent      int                  `json:"percent"`
	Band         Band                 `json:"band,omitempty"`
	Sections     []SectionScore       `json:"sections"`
	Requirements []EnrichedEvaluation `json:"requirements"` // Deduplicated across the article
	Stats        Stats                `json:"stats"`
	Dropped      int                  `json:"dropped"` // Evaluations removed for null score/confidence
}

// RequirementHit is one evaluation of a requirement and where it was made.
// SentenceIndex is 0 for a section-level evaluation.
type RequirementHit struct {
	SectionIndex  int                   `json:"section_index"` // 1-based
	SentenceIndex int                   `json:"sentence_index,omitempty"`
	Evaluation    RequirementEvaluation `json:"evaluation"`
}

// RequirementSectionScore is a requirement's mean within one section
type RequirementSectionScore struct {
	Index     int       `json:"index"` // 1-based
	Title     string    `json:"title"`
	Aggregate Aggregate `json:"aggregate"`
	Band      Band      `json:"band,omitempty"`
}

// RequirementDetail is how one article source fared on one requirement.
// Article-level evaluations are not part of it.
type RequirementDetail struct {
	RequirementID string                    `json:"requirement_id"`
	Key           string                    `json:"key"`
	Source        Source                    `json:"source"`
	Aggregate     Aggregate                 `json:"aggregate"`
	Percent       int                       `json:"percent"`
	Band          Band                      `json:"band,omitempty"`
	Sections      []RequirementSectionScore `json:"sections"`
	Evaluations   []RequirementHit          `json:"evaluations"`
}
