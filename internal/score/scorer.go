package score

import (
	"math"

	"github.com/ppiankov/omnieval/internal/evaluation"
	"github.com/ppiankov/omnieval/internal/model"
)

// Band thresholds
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.5
)

// Scorer averages requirement-evaluation scores at sentence, section and
// article granularity.
//
// Nothing here fails on missing data: an unresolved index or an empty pool
// averages to 0 with Count 0. Evaluations missing a score or a confidence
// are skipped so a document that was not sanitized still never averages one.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// SectionAggregate pools the section's own evaluations and every
// evaluation of every sentence in it into one flat list, then averages.
// A sentence with many evaluations therefore weighs more than one with few.
func (s *Scorer) SectionAggregate(doc *model.Evaluation, sectionIndex int) model.Aggregate {
	section, ok := evaluation.SectionByIndex(doc, sectionIndex)
	if !ok {
		return model.Aggregate{}
	}

	var acc accumulator
	acc.addAll(section.RequirementEvaluations)
	for _, sentence := range section.SentenceEvaluations {
		acc.addAll(sentence.RequirementEvaluations)
	}
	return acc.aggregate()
}

// SectionScore is SectionAggregate without the count
func (s *Scorer) SectionScore(doc *model.Evaluation, sectionIndex int) float64 {
	return s.SectionAggregate(doc, sectionIndex).Score
}

// SentenceAggregate averages the sentence's own evaluations only
func (s *Scorer) SentenceAggregate(doc *model.Evaluation, sectionIndex, sentenceIndex int) model.Aggregate {
	sentence, ok := evaluation.SentenceByIndex(doc, sectionIndex, sentenceIndex)
	if !ok {
		return model.Aggregate{}
	}

	var acc accumulator
	acc.addAll(sentence.RequirementEvaluations)
	return acc.aggregate()
}

// SentenceScore is SentenceAggregate without the count
func (s *Scorer) SentenceScore(doc *model.Evaluation, sectionIndex, sentenceIndex int) float64 {
	return s.SentenceAggregate(doc, sectionIndex, sentenceIndex).Score
}

// ArticleAggregate is the mean of SectionScore over every section, so it is
// a mean of means, unlike SectionAggregate which pools. Count is the number
// of sections. Sections with nothing to average contribute a 0.
func (s *Scorer) ArticleAggregate(doc *model.Evaluation) model.Aggregate {
	if doc == nil || len(doc.Sections) == 0 {
		return model.Aggregate{}
	}

	sum := 0.0
	for _, section := range doc.Sections {
		sum += s.SectionScore(doc, section.Index)
	}
	return model.Aggregate{
		Score: sum / float64(len(doc.Sections)),
		Count: len(doc.Sections),
	}
}

// ArticleScore is ArticleAggregate without the count
func (s *Scorer) ArticleScore(doc *model.Evaluation) float64 {
	return s.ArticleAggregate(doc).Score
}

// RequirementInSectionAggregate averages one requirement over the section pool
func (s *Scorer) RequirementInSectionAggregate(doc *model.Evaluation, sectionIndex int, requirementID string) model.Aggregate {
	var acc accumulator
	acc.addAll(evaluation.RequirementEvaluationsForSection(doc, sectionIndex, requirementID))
	return acc.aggregate()
}

// AverageScoreForRequirementInSection is RequirementInSectionAggregate without the count
func (s *Scorer) AverageScoreForRequirementInSection(doc *model.Evaluation, sectionIndex int, requirementID string) float64 {
	return s.RequirementInSectionAggregate(doc, sectionIndex, requirementID).Score
}

// RequirementInArticleAggregate averages one requirement over every
// section pool of the article, flat.
func (s *Scorer) RequirementInArticleAggregate(doc *model.Evaluation, requirementID string) model.Aggregate {
	var acc accumulator
	acc.addAll(evaluation.RequirementEvaluationsForArticle(doc, requirementID))
	return acc.aggregate()
}

// AverageScoreForRequirementInArticle is RequirementInArticleAggregate without the count
func (s *Scorer) AverageScoreForRequirementInArticle(doc *model.Evaluation, requirementID string) float64 {
	return s.RequirementInArticleAggregate(doc, requirementID).Score
}

// Stats counts evaluations per band. Evaluations without a score are ignored.
func Stats[E scored](evals []E) model.Stats {
	var st model.Stats
	for _, e := range evals {
		if !e.IsValid() {
			continue
		}
		st.Total++
		switch Band(e.ScoreValue()) {
		case model.BandHigh:
			st.High++
		case model.BandMedium:
			st.Medium++
		default:
			st.Low++
		}
	}
	return st
}

// Band classifies a 0-1 score
func Band(score float64) model.Band {
	if score >= HighThreshold {
		return model.BandHigh
	} else if score >= MediumThreshold {
		return model.BandMedium
	}
	return model.BandLow
}

// AggregateBand is Band for an aggregate; it is empty when there was
// nothing to average
func AggregateBand(agg model.Aggregate) model.Band {
	if agg.Empty() {
		return ""
	}
	return Band(agg.Score)
}

// Percent converts a 0-1 score to a rounded percentage
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

type scored interface {
	ScoreValue() float64
	IsValid() bool
}

type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) addAll(evals []model.RequirementEvaluation) {
	for _, e := range evals {
		if !e.IsValid() {
			continue
		}
		a.sum += *e.Score
		a.count++
	}
}

func (a *accumulator) aggregate() model.Aggregate {
	if a.count == 0 {
		return model.Aggregate{}
	}
	return model.Aggregate{
		Score: a.sum / float64(a.count),
		Count: a.count,
	}
}
