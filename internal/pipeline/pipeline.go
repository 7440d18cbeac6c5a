package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/omnieval/internal/cache"
	"github.com/ppiankov/omnieval/internal/catalog"
	"github.com/ppiankov/omnieval/internal/dataset"
	"github.com/ppiankov/omnieval/internal/enrich"
	"github.com/ppiankov/omnieval/internal/evaluation"
	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/score"
)

// ErrUnknownKind is returned for a panel kind other than section, sentence or article
var ErrUnknownKind = errors.New("unknown panel kind")

// Pipeline turns raw bundles into panels and reports. Every evaluation is
// sanitized before it is scored or enriched.
type Pipeline struct {
	registry *dataset.Registry
	catalog  *catalog.Catalog
	scorer   *score.Scorer
	renderer *Renderer
	memo     cache.Cache[*model.Evaluation]
	memoTTL  time.Duration
	logger   *zap.Logger
	config   *model.Config
}

// NewPipeline creates a new pipeline over a loaded registry
func NewPipeline(cfg *model.Config, registry *dataset.Registry, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	cat := catalog.New(registry.Requirements())
	if dups := cat.Duplicates(); len(dups) > 0 {
		logger.Warn("duplicate requirement ids in catalog, first occurrence wins", zap.Strings("ids", dups))
	}

	var memo cache.Cache[*model.Evaluation] = cache.Noop[*model.Evaluation]{}
	if cfg.Cache.Enabled {
		memo = cache.NewMemoryCache[*model.Evaluation](cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}

	return &Pipeline{
		registry: registry,
		catalog:  cat,
		scorer:   score.NewScorer(),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		memo:     memo,
		memoTTL:  cfg.Cache.TTL,
		logger:   logger,
		config:   cfg,
	}
}

// Catalog returns the requirements index
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// Registry returns the underlying data
func (p *Pipeline) Registry() *dataset.Registry {
	return p.registry
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// PanelRequest describes a click in the viewer. Section and Sentence are
// 0-based rendering positions; Sentence is ignored unless Kind is sentence
// and both are ignored for the article panel.
type PanelRequest struct {
	Key      string
	Source   model.Source
	Kind     model.PanelKind
	Section  int
	Sentence int
}

// Panel computes the side-panel view for one selection. An unknown key or
// source is an error; indices that do not resolve give an empty panel.
func (p *Pipeline) Panel(ctx context.Context, req PanelRequest) (*model.Panel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, doc, err := p.load(req.Key, req.Source)
	if err != nil {
		return nil, err
	}

	// Evaluation indices are 1-based
	sectionIndex := req.Section + 1
	sentenceIndex := req.Sentence + 1

	panel := &model.Panel{
		Key:    req.Key,
		Source: req.Source,
		Kind:   req.Kind,
	}

	switch req.Kind {
	case model.PanelSection:
		panel.SectionIndex = sectionIndex
		panel.Aggregate = p.scorer.SectionAggregate(doc, sectionIndex)
		panel.Evaluations = enrich.EnhancedRequirementsForSection(doc, sectionIndex, p.catalog)
		panel.Title, panel.Text = sectionText(data.Article, doc, req.Section)
	case model.PanelSentence:
		panel.SectionIndex = sectionIndex
		panel.SentenceIndex = sentenceIndex
		panel.Aggregate = p.scorer.SentenceAggregate(doc, sectionIndex, sentenceIndex)
		panel.Evaluations = enrich.EnhancedRequirementsForSentence(doc, sectionIndex, sentenceIndex, p.catalog)
		panel.Title, _ = sectionText(data.Article, doc, req.Section)
		panel.Text = sentenceText(data.Article, doc, req.Section, req.Sentence)
	case model.PanelArticle:
		panel.Aggregate = p.scorer.ArticleAggregate(doc)
		panel.Evaluations = enrich.EnhancedRequirementsForArticle(doc, p.catalog)
		if len(data.Article) > 0 {
			panel.Title = data.Article[0].Title
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	panel.Percent = score.Percent(panel.Aggregate.Score)
	panel.Band = score.AggregateBand(panel.Aggregate)
	panel.Stats = score.Stats(panel.Evaluations)
	panel.Groups = enrich.GroupByCategory(panel.Evaluations)

	p.logger.Debug("panel computed",
		zap.String("key", req.Key),
		zap.String("source", string(req.Source)),
		zap.String("kind", string(req.Kind)),
		zap.Int("section", sectionIndex),
		zap.Int("sentence", sentenceIndex),
		zap.Int("evaluations", len(panel.Evaluations)),
	)

	return panel, nil
}

// Report summarises a whole article: the article score, every section and
// sentence score, and the deduplicated article-wide requirements.
func (p *Pipeline) Report(ctx context.Context, key string, src model.Source) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, doc, err := p.load(key, src)
	if err != nil {
		return nil, err
	}

	article := p.scorer.ArticleAggregate(doc)
	requirements := enrich.EnhancedRequirementsForArticle(doc, p.catalog)

	report := &model.Report{
		Key:          key,
		Source:       src,
		GeneratedAt:  time.Now().UTC(),
		Article:      article,
		Percent:      score.Percent(article.Score),
		Band:         score.AggregateBand(article),
		Sections:     make([]model.SectionScore, 0, len(doc.Sections)),
		Requirements: requirements,
		Stats:        score.Stats(requirements),
		Dropped:      evaluation.InvalidCount(&data.Evaluation),
	}

	for _, section := range doc.Sections {
		agg := p.scorer.SectionAggregate(doc, section.Index)
		line := model.SectionScore{
			Index:     section.Index,
			Title:     section.Title,
			Aggregate: agg,
			Band:      score.AggregateBand(agg),
			Sentences: make([]model.SentenceScore, 0, len(section.SentenceEvaluations)),
		}
		for _, sentence := range section.SentenceEvaluations {
			line.Sentences = append(line.Sentences, model.SentenceScore{
				Index:     sentence.Index,
				Text:      sentence.Sentence,
				Aggregate: p.scorer.SentenceAggregate(doc, section.Index, sentence.Index),
			})
		}
		report.Sections = append(report.Sections, line)
	}

	return report, nil
}

// RequirementDetails scores each of ids on one article source. Every id
// gets an entry; one that was never evaluated has an empty aggregate.
// Evaluations lists each section's own entries, then the first entry per
// sentence.
func (p *Pipeline) RequirementDetails(ctx context.Context, key string, src model.Source, ids []string) (map[string]*model.RequirementDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, doc, err := p.load(key, src)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*model.RequirementDetail, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = p.requirementDetail(doc, key, src, id)
	}
	return out, nil
}

func (p *Pipeline) requirementDetail(doc *model.Evaluation, key string, src model.Source, id string) *model.RequirementDetail {
	agg := p.scorer.RequirementInArticleAggregate(doc, id)
	detail := &model.RequirementDetail{
		RequirementID: id,
		Key:           key,
		Source:        src,
		Aggregate:     agg,
		Percent:       score.Percent(agg.Score),
		Band:          score.AggregateBand(agg),
		Sections:      []model.RequirementSectionScore{},
		Evaluations:   []model.RequirementHit{},
	}

	for _, section := range doc.Sections {
		if sectionAgg := p.scorer.RequirementInSectionAggregate(doc, section.Index, id); !sectionAgg.Empty() {
			detail.Sections = append(detail.Sections, model.RequirementSectionScore{
				Index:     section.Index,
				Title:     section.Title,
				Aggregate: sectionAgg,
				Band:      score.AggregateBand(sectionAgg),
			})
		}

		for _, e := range section.RequirementEvaluations {
			if e.RequirementID == id {
				detail.Evaluations = append(detail.Evaluations, model.RequirementHit{SectionIndex: section.Index, Evaluation: e})
			}
		}
		for _, sentence := range section.SentenceEvaluations {
			if e, ok := evaluation.RequirementEvaluationForSentence(doc, section.Index, sentence.Index, id); ok {
				detail.Evaluations = append(detail.Evaluations, model.RequirementHit{
					SectionIndex:  section.Index,
					SentenceIndex: sentence.Index,
					Evaluation:    *e,
				})
			}
		}
	}

	return detail
}

// load returns the raw source data and its sanitized evaluation
func (p *Pipeline) load(key string, src model.Source) (model.SourceData, *model.Evaluation, error) {
	data, err := p.registry.Source(key, src)
	if err != nil {
		return model.SourceData{}, nil, err
	}

	cacheKey := cache.EvaluationKey(key, src)
	if doc, ok := p.memo.Get(cacheKey); ok {
		return data, doc, nil
	}

	doc := evaluation.Sanitize(&data.Evaluation)
	if dropped := evaluation.InvalidCount(&data.Evaluation); dropped > 0 {
		p.logger.Debug("dropped evaluations without score or confidence",
			zap.String("key", key),
			zap.String("source", string(src)),
			zap.Int("dropped", dropped),
		)
	}
	p.memo.Set(cacheKey, doc, p.memoTTL)

	return data, doc, nil
}

// sectionText prefers the rendered article and falls back to the evaluation title
func sectionText(article model.Article, doc *model.Evaluation, position int) (string, string) {
	if position >= 0 && position < len(article) {
		return article[position].Title, article[position].Content
	}
	if section, ok := evaluation.SectionByIndex(doc, position+1); ok {
		return section.Title, ""
	}
	return "", ""
}

func sentenceText(article model.Article, doc *model.Evaluation, section, sentence int) string {
	if section >= 0 && section < len(article) {
		sentences := article[section].Sentences
		if sentence >= 0 && sentence < len(sentences) {
			return sentences[sentence]
		}
	}
	if s, ok := evaluation.SentenceByIndex(doc, section+1, sentence+1); ok {
		return s.Sentence
	}
	return ""
}
