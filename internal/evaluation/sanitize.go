package evaluation

import "github.com/ppiankov/omnieval/internal/model"

// Sanitize returns a deep copy of doc in which every requirement
// evaluation list (article, section and sentence level) holds only
// entries with both a score and a confidence. The input is not modified.
// A nil document sanitizes to an empty one.
func Sanitize(doc *model.Evaluation) *model.Evaluation {
	out := &model.Evaluation{
		Sections: []model.SectionEvaluation{},
		ArticleEvaluation: model.ArticleEvaluation{
			RequirementEvaluations: []model.RequirementEvaluation{},
		},
	}
	if doc == nil {
		return out
	}

	out.Sections = make([]model.SectionEvaluation, len(doc.Sections))
	for i, section := range doc.Sections {
		sentences := make([]model.SentenceEvaluation, len(section.SentenceEvaluations))
		for j, sentence := range section.SentenceEvaluations {
			sentences[j] = model.SentenceEvaluation{
				Index:                  sentence.Index,
				Sentence:               sentence.Sentence,
				RequirementEvaluations: validOnly(sentence.RequirementEvaluations),
				MetaNotes:              cloneString(sentence.MetaNotes),
			}
		}
		out.Sections[i] = model.SectionEvaluation{
			Index:                  section.Index,
			Title:                  section.Title,
			SentenceEvaluations:    sentences,
			RequirementEvaluations: validOnly(section.RequirementEvaluations),
			MetaNotes:              cloneString(section.MetaNotes),
		}
	}

	out.ArticleEvaluation = model.ArticleEvaluation{
		RequirementEvaluations: validOnly(doc.ArticleEvaluation.RequirementEvaluations),
		MetaNotes:              cloneString(doc.ArticleEvaluation.MetaNotes),
	}

	return out
}

// InvalidCount is the number of entries Sanitize would remove
func InvalidCount(doc *model.Evaluation) int {
	if doc == nil {
		return 0
	}
	n := countInvalid(doc.ArticleEvaluation.RequirementEvaluations)
	for _, section := range doc.Sections {
		n += countInvalid(section.RequirementEvaluations)
		for _, sentence := range section.SentenceEvaluations {
			n += countInvalid(sentence.RequirementEvaluations)
		}
	}
	return n
}

func validOnly(evals []model.RequirementEvaluation) []model.RequirementEvaluation {
	out := make([]model.RequirementEvaluation, 0, len(evals))
	for _, e := range evals {
		if !e.IsValid() {
			continue
		}
		e.Score = cloneFloat(e.Score)
		e.Confidence = cloneFloat(e.Confidence)
		out = append(out, e)
	}
	return out
}

func countInvalid(evals []model.RequirementEvaluation) int {
	n := 0
	for _, e := range evals {
		if !e.IsValid() {
			n++
		}
	}
	return n
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
