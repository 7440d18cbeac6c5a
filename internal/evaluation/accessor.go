// Package evaluation looks up and sanitizes evaluation documents.
//
// Sections and sentences are matched on their 1-based index field, never
// on slice position. Every lookup fails soft: a nil document or an index
// that does not resolve yields (nil, false) or an empty slice.
package evaluation

import "github.com/ppiankov/omnieval/internal/model"

// SectionByIndex returns the section whose index equals sectionIndex
func SectionByIndex(doc *model.Evaluation, sectionIndex int) (*model.SectionEvaluation, bool) {
	if doc == nil {
		return nil, false
	}
	for i := range doc.Sections {
		if doc.Sections[i].Index == sectionIndex {
			return &doc.Sections[i], true
		}
	}
	return nil, false
}

// SentenceByIndex resolves the section first, then the sentence within it
func SentenceByIndex(doc *model.Evaluation, sectionIndex, sentenceIndex int) (*model.SentenceEvaluation, bool) {
	section, ok := SectionByIndex(doc, sectionIndex)
	if !ok {
		return nil, false
	}
	for i := range section.SentenceEvaluations {
		if section.SentenceEvaluations[i].Index == sentenceIndex {
			return &section.SentenceEvaluations[i], true
		}
	}
	return nil, false
}

// RequirementEvaluationForSentence returns the first evaluation of
// requirementID on the given sentence
func RequirementEvaluationForSentence(doc *model.Evaluation, sectionIndex, sentenceIndex int, requirementID string) (*model.RequirementEvaluation, bool) {
	sentence, ok := SentenceByIndex(doc, sectionIndex, sentenceIndex)
	if !ok {
		return nil, false
	}
	for i := range sentence.RequirementEvaluations {
		if sentence.RequirementEvaluations[i].RequirementID == requirementID {
			return &sentence.RequirementEvaluations[i], true
		}
	}
	return nil, false
}

// RequirementEvaluationsForSection collects every evaluation of
// requirementID in a section: section-level entries first, then each
// sentence's entries in order. Section-level and sentence-level records
// are distinct and both kept.
func RequirementEvaluationsForSection(doc *model.Evaluation, sectionIndex int, requirementID string) []model.RequirementEvaluation {
	section, ok := SectionByIndex(doc, sectionIndex)
	if !ok {
		return []model.RequirementEvaluation{}
	}
	return collectSection(section, requirementID)
}

// RequirementEvaluationsForArticle applies the section traversal to every
// section in the document. Article-level evaluations are not included.
func RequirementEvaluationsForArticle(doc *model.Evaluation, requirementID string) []model.RequirementEvaluation {
	out := []model.RequirementEvaluation{}
	if doc == nil {
		return out
	}
	for i := range doc.Sections {
		out = append(out, collectSection(&doc.Sections[i], requirementID)...)
	}
	return out
}

func collectSection(section *model.SectionEvaluation, requirementID string) []model.RequirementEvaluation {
	out := []model.RequirementEvaluation{}
	for _, re := range section.RequirementEvaluations {
		if re.RequirementID == requirementID {
			out = append(out, re)
		}
	}
	for _, sentence := range section.SentenceEvaluations {
		for _, re := range sentence.RequirementEvaluations {
			if re.RequirementID == requirementID {
				out = append(out, re)
			}
		}
	}
	return out
}
