// Package enrich joins requirement evaluations with catalog metadata.
package enrich

import (
	"github.com/ppiankov/omnieval/internal/evaluation"
	"github.com/ppiankov/omnieval/internal/model"
)

// Lookup resolves a requirement id against the catalog
type Lookup interface {
	Lookup(id string) (model.Requirement, bool)
}

// Enrich attaches description, reference, where and when from the catalog.
// A miss leaves those fields empty; the evaluation itself is never dropped
// or altered.
func Enrich(e model.RequirementEvaluation, catalog Lookup) model.EnrichedEvaluation {
	out := model.EnrichedEvaluation{RequirementEvaluation: e}
	if catalog == nil {
		return out
	}
	if req, ok := catalog.Lookup(e.RequirementID); ok {
		out.Description = req.Description
		out.Reference = req.Reference
		out.Where = req.Where
		out.When = req.When
	}
	return out
}

// EnrichAll applies Enrich element-wise
func EnrichAll(evals []model.RequirementEvaluation, catalog Lookup) []model.EnrichedEvaluation {
	out := make([]model.EnrichedEvaluation, len(evals))
	for i, e := range evals {
		out[i] = Enrich(e, catalog)
	}
	return out
}

// AllRequirementsForSentence returns the sentence's evaluations as stored
func AllRequirementsForSentence(doc *model.Evaluation, sectionIndex, sentenceIndex int) []model.RequirementEvaluation {
	sentence, ok := evaluation.SentenceByIndex(doc, sectionIndex, sentenceIndex)
	if !ok {
		return []model.RequirementEvaluation{}
	}
	return append([]model.RequirementEvaluation{}, sentence.RequirementEvaluations...)
}

// AllRequirementsForSection unions the section-level evaluations with every
// sentence's, keeping the first evaluation seen for each requirement id.
// Section-level entries come first.
func AllRequirementsForSection(doc *model.Evaluation, sectionIndex int) []model.RequirementEvaluation {
	section, ok := evaluation.SectionByIndex(doc, sectionIndex)
	if !ok {
		return []model.RequirementEvaluation{}
	}

	d := newDeduper()
	d.add(section.RequirementEvaluations)
	for _, sentence := range section.SentenceEvaluations {
		d.add(sentence.RequirementEvaluations)
	}
	return d.out
}

// AllRequirementsForArticle is the same union over article-level, then each
// section's own, then each sentence's evaluations.
func AllRequirementsForArticle(doc *model.Evaluation) []model.RequirementEvaluation {
	d := newDeduper()
	if doc == nil {
		return d.out
	}

	d.add(doc.ArticleEvaluation.RequirementEvaluations)
	for _, section := range doc.Sections {
		d.add(section.RequirementEvaluations)
		for _, sentence := range section.SentenceEvaluations {
			d.add(sentence.RequirementEvaluations)
		}
	}
	return d.out
}

// EnhancedRequirementsForSentence is AllRequirementsForSentence joined with the catalog
func EnhancedRequirementsForSentence(doc *model.Evaluation, sectionIndex, sentenceIndex int, catalog Lookup) []model.EnrichedEvaluation {
	return EnrichAll(AllRequirementsForSentence(doc, sectionIndex, sentenceIndex), catalog)
}

// EnhancedRequirementsForSection is AllRequirementsForSection joined with the catalog
func EnhancedRequirementsForSection(doc *model.Evaluation, sectionIndex int, catalog Lookup) []model.EnrichedEvaluation {
	return EnrichAll(AllRequirementsForSection(doc, sectionIndex), catalog)
}

// EnhancedRequirementsForArticle is AllRequirementsForArticle joined with the catalog
func EnhancedRequirementsForArticle(doc *model.Evaluation, catalog Lookup) []model.EnrichedEvaluation {
	return EnrichAll(AllRequirementsForArticle(doc), catalog)
}

// GroupByCategory splits evaluations by requirement category, groups in
// first-seen order and evaluations in input order within each group.
func GroupByCategory(evals []model.EnrichedEvaluation) []model.CategoryGroup {
	groups := []model.CategoryGroup{}
	pos := make(map[string]int)

	for _, e := range evals {
		i, ok := pos[e.RequirementCategory]
		if !ok {
			i = len(groups)
			pos[e.RequirementCategory] = i
			groups = append(groups, model.CategoryGroup{Category: e.RequirementCategory})
		}
		groups[i].Evaluations = append(groups[i].Evaluations, e)
	}

	return groups
}

type deduper struct {
	seen map[string]struct{}
	out  []model.RequirementEvaluation
}

func newDeduper() *deduper {
	return &deduper{
		seen: make(map[string]struct{}),
		out:  []model.RequirementEvaluation{},
	}
}

func (d *deduper) add(evals []model.RequirementEvaluation) {
	for _, e := range evals {
		if _, ok := d.seen[e.RequirementID]; ok {
			continue
		}
		d.seen[e.RequirementID] = struct{}{}
		d.out = append(d.out, e)
	}
}
