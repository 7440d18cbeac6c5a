// Package fixture builds evaluation documents for tests.
package fixture

import "github.com/ppiankov/omnieval/internal/model"

// F returns a pointer to v
func F(v float64) *float64 {
	return &v
}

// Eval is a valid evaluation of id with the given score and confidence 0.9
func Eval(id string, score float64) model.RequirementEvaluation {
	return model.RequirementEvaluation{
		RequirementID:       id,
		RequirementCategory: "Content",
		Classification:      model.ClassificationBest,
		Applicable:          true,
		Score:               F(score),
		Confidence:          F(0.9),
		Reasoning:           "reasoning for " + id,
	}
}

// NullScore is an evaluation of id with no score
func NullScore(id string) model.RequirementEvaluation {
	e := Eval(id, 0)
	e.Score = nil
	return e
}

// NullConfidence is an evaluation of id with no confidence
func NullConfidence(id string, score float64) model.RequirementEvaluation {
	e := Eval(id, score)
	e.Confidence = nil
	return e
}

// Sentence builds a sentence evaluation
func Sentence(index int, evals ...model.RequirementEvaluation) model.SentenceEvaluation {
	if evals == nil {
		evals = []model.RequirementEvaluation{}
	}
	return model.SentenceEvaluation{
		Index:                  index,
		Sentence:               "Sentence text.",
		RequirementEvaluations: evals,
	}
}

// Section builds a section evaluation with section-level evals and sentences
func Section(index int, evals []model.RequirementEvaluation, sentences ...model.SentenceEvaluation) model.SectionEvaluation {
	if evals == nil {
		evals = []model.RequirementEvaluation{}
	}
	if sentences == nil {
		sentences = []model.SentenceEvaluation{}
	}
	return model.SectionEvaluation{
		Index:                  index,
		Title:                  "Section",
		SentenceEvaluations:    sentences,
		RequirementEvaluations: evals,
	}
}

// Document builds an evaluation root
func Document(article []model.RequirementEvaluation, sections ...model.SectionEvaluation) *model.Evaluation {
	if article == nil {
		article = []model.RequirementEvaluation{}
	}
	if sections == nil {
		sections = []model.SectionEvaluation{}
	}
	return &model.Evaluation{
		Sections:          sections,
		ArticleEvaluation: model.ArticleEvaluation{RequirementEvaluations: article},
	}
}

// Catalog is a small requirements document covering ids 1-3
func Catalog() model.RequirementsDocument {
	return model.RequirementsDocument{
		Groups: []model.RequirementGroup{
			{
				Category: "Content",
				Requirements: []model.Requirement{
					{ID: "1", Description: "Neutral tone", Reference: "Write neutrally", Category: "Content", Classification: model.ClassificationImperative, Where: "Body", When: "Always"},
					{ID: "2", Description: "Cite sources", Reference: "Cite claims", Category: "Content", Classification: model.ClassificationBest, Where: "Body", When: "Claims"},
				},
			},
			{
				Category: "Style",
				Requirements: []model.Requirement{
					{ID: "3", Description: "Short lead", Reference: "Summarise in the lead", Category: "Style", Classification: model.ClassificationFlexible, Where: "Lead", When: "Always"},
				},
			},
		},
	}
}
