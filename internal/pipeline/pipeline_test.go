package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/omnieval/internal/dataset"
	"github.com/ppiankov/omnieval/internal/fixture"
	"github.com/ppiankov/omnieval/internal/model"
)

func testEvaluation() *model.Evaluation {
	return fixture.Document(
		[]model.RequirementEvaluation{fixture.Eval("1", 0.9)},
		fixture.Section(1, []model.RequirementEvaluation{fixture.Eval("3", 0.5)},
			fixture.Sentence(1, fixture.Eval("1", 1.0), fixture.NullScore("2")),
			fixture.Sentence(2, fixture.Eval("2", 0.0)),
		),
		fixture.Section(2, nil,
			fixture.Sentence(1, fixture.Eval("2", 1.0)),
		),
	)
}

func testArticle() model.Article {
	return model.Article{
		{Title: "Lead", Content: "ABCC11 is a gene. It encodes a transporter.", Index: 1, Sentences: []string{"ABCC11 is a gene.", "It encodes a transporter."}},
		{Title: "Function", Content: "The protein moves compounds.", Index: 2, Sentences: []string{"The protein moves compounds."}},
	}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	reg := dataset.NewRegistry(fixture.Catalog(), map[string]model.DataSet{
		"ABCC11": {
			WikiCrow:  model.SourceData{Article: testArticle(), Evaluation: *testEvaluation()},
			Wikipedia: model.SourceData{Article: model.Article{}, Evaluation: *fixture.Document(nil)},
		},
	})
	return NewPipeline(model.DefaultConfig(), reg, zap.NewNop())
}

func ids(evals []model.EnrichedEvaluation) []string {
	out := make([]string, 0, len(evals))
	for _, e := range evals {
		out = append(out, e.RequirementID)
	}
	return out
}

func TestPanel_Section(t *testing.T) {
	p := newTestPipeline(t)

	panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelSection, Section: 0})
	require.NoError(t, err)

	assert.Equal(t, 1, panel.SectionIndex)
	assert.Equal(t, "Lead", panel.Title)
	// 0.5 (section) + 1.0 + 0.0 (sentences); the null score is gone
	assert.InDelta(t, 0.5, panel.Aggregate.Score, 1e-9)
	assert.Equal(t, 3, panel.Aggregate.Count)
	assert.Equal(t, 50, panel.Percent)
	assert.Equal(t, model.BandMedium, panel.Band)
	assert.Equal(t, []string{"3", "1", "2"}, ids(panel.Evaluations))
}

func TestPanel_SentenceUsesOneBasedIndices(t *testing.T) {
	p := newTestPipeline(t)

	panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelSentence, Section: 0, Sentence: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, panel.SectionIndex)
	assert.Equal(t, 2, panel.SentenceIndex)
	assert.Equal(t, "It encodes a transporter.", panel.Text)
	assert.Equal(t, 0, panel.Percent)
	assert.Equal(t, model.BandLow, panel.Band)
	require.Len(t, panel.Evaluations, 1)
	assert.Equal(t, "Cite sources", panel.Evaluations[0].Description)
	assert.Equal(t, "Claims", panel.Evaluations[0].When)
}

func TestPanel_Article(t *testing.T) {
	p := newTestPipeline(t)

	panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelArticle})
	require.NoError(t, err)

	// Mean of section means: (0.5 + 1.0) / 2
	assert.InDelta(t, 0.75, panel.Aggregate.Score, 1e-9)
	assert.Equal(t, 2, panel.Aggregate.Count)
	assert.Equal(t, 75, panel.Percent)

	// Article-level first, then section 1, then its sentences; duplicates dropped
	assert.Equal(t, []string{"1", "3", "2"}, ids(panel.Evaluations))
	assert.InDelta(t, 0.9, *panel.Evaluations[0].Score, 1e-9)
	assert.Equal(t, model.Stats{Total: 3, High: 1, Medium: 1, Low: 1}, panel.Stats)

	require.Len(t, panel.Groups, 1)
	assert.Equal(t, "Content", panel.Groups[0].Category)
}

func TestPanel_MissingIndicesGiveEmptyPanel(t *testing.T) {
	p := newTestPipeline(t)

	panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelSection, Section: 9})
	require.NoError(t, err)
	assert.True(t, panel.Aggregate.Empty())
	assert.Empty(t, panel.Evaluations)
	assert.Empty(t, panel.Band, "nothing scored, no band")
}

func TestPanel_EmptySource(t *testing.T) {
	p := newTestPipeline(t)

	panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikipedia, Kind: model.PanelArticle})
	require.NoError(t, err)
	assert.Equal(t, model.Aggregate{}, panel.Aggregate)
	assert.Empty(t, panel.Evaluations)
}

func TestPanel_Errors(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.Panel(ctx, PanelRequest{Key: "NOPE", Source: model.SourceWikiCrow, Kind: model.PanelArticle})
	assert.ErrorIs(t, err, dataset.ErrUnknownArticle)

	_, err = p.Panel(ctx, PanelRequest{Key: "ABCC11", Source: "blog", Kind: model.PanelArticle})
	assert.ErrorIs(t, err, dataset.ErrUnknownSource)

	_, err = p.Panel(ctx, PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: "paragraph"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Panel(cancelled, PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelArticle})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPanel_DoesNotMutateRegistry(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelArticle})
	require.NoError(t, err)

	data, err := p.Registry().Source("ABCC11", model.SourceWikiCrow)
	require.NoError(t, err)
	assert.Len(t, data.Evaluation.Sections[0].SentenceEvaluations[0].RequirementEvaluations, 2)
}

func TestPanel_CacheDisabled(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	reg := dataset.NewRegistry(fixture.Catalog(), map[string]model.DataSet{
		"ABCC11": {WikiCrow: model.SourceData{Article: testArticle(), Evaluation: *testEvaluation()}},
	})
	p := NewPipeline(cfg, reg, nil)

	for i := 0; i < 2; i++ {
		panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelArticle})
		require.NoError(t, err)
		assert.Equal(t, 75, panel.Percent)
	}
}

func TestReport(t *testing.T) {
	p := newTestPipeline(t)

	report, err := p.Report(context.Background(), "ABCC11", model.SourceWikiCrow)
	require.NoError(t, err)

	assert.Equal(t, "ABCC11", report.Key)
	assert.Equal(t, 75, report.Percent)
	assert.Equal(t, model.BandMedium, report.Band)
	assert.Equal(t, 1, report.Dropped)
	assert.Equal(t, []string{"1", "3", "2"}, ids(report.Requirements))

	require.Len(t, report.Sections, 2)
	assert.Equal(t, 3, report.Sections[0].Aggregate.Count)
	require.Len(t, report.Sections[0].Sentences, 2)
	assert.Equal(t, 1, report.Sections[0].Sentences[0].Aggregate.Count, "null score is not counted")
	assert.InDelta(t, 1.0, report.Sections[1].Aggregate.Score, 1e-9)
	assert.Equal(t, model.BandHigh, report.Sections[1].Band)
}

func TestRequirementDetails(t *testing.T) {
	p := newTestPipeline(t)

	details, err := p.RequirementDetails(context.Background(), "ABCC11", model.SourceWikiCrow, []string{"2", "3", "1", "42", "2"})
	require.NoError(t, err)
	require.Len(t, details, 4)

	cites := details["2"]
	assert.Equal(t, model.Aggregate{Score: 0.5, Count: 2}, cites.Aggregate)
	assert.Equal(t, 50, cites.Percent)
	assert.Equal(t, model.BandMedium, cites.Band)
	require.Len(t, cites.Sections, 2)
	assert.Equal(t, model.RequirementSectionScore{Index: 1, Title: "Section", Aggregate: model.Aggregate{Score: 0, Count: 1}, Band: model.BandLow}, cites.Sections[0])
	assert.Equal(t, model.BandHigh, cites.Sections[1].Band)
	// The null-score entry on the first sentence is sanitized away
	require.Len(t, cites.Evaluations, 2)
	assert.Equal(t, [2]int{1, 2}, [2]int{cites.Evaluations[0].SectionIndex, cites.Evaluations[0].SentenceIndex})
	assert.Equal(t, [2]int{2, 1}, [2]int{cites.Evaluations[1].SectionIndex, cites.Evaluations[1].SentenceIndex})

	lead := details["3"]
	assert.Equal(t, model.Aggregate{Score: 0.5, Count: 1}, lead.Aggregate)
	require.Len(t, lead.Evaluations, 1)
	assert.Equal(t, 1, lead.Evaluations[0].SectionIndex)
	assert.Zero(t, lead.Evaluations[0].SentenceIndex)

	// Article-level evaluations stay out of the requirement view
	neutral := details["1"]
	assert.Equal(t, model.Aggregate{Score: 1.0, Count: 1}, neutral.Aggregate)
	require.Len(t, neutral.Evaluations, 1)
	assert.Equal(t, 1, neutral.Evaluations[0].SentenceIndex)

	missing := details["42"]
	assert.True(t, missing.Aggregate.Empty())
	assert.Empty(t, missing.Band)
	assert.Empty(t, missing.Sections)
	assert.Empty(t, missing.Evaluations)
}

func TestRequirementDetails_UnknownArticle(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.RequirementDetails(context.Background(), "NOPE", model.SourceWikiCrow, []string{"1"})
	assert.ErrorIs(t, err, dataset.ErrUnknownArticle)
}

func TestReport_UnscoredSectionHasNoBand(t *testing.T) {
	doc := fixture.Document(nil,
		fixture.Section(1, nil, fixture.Sentence(1, fixture.Eval("1", 0.2))),
		fixture.Section(2, nil, fixture.Sentence(1, fixture.NullScore("2"))),
	)
	reg := dataset.NewRegistry(fixture.Catalog(), map[string]model.DataSet{
		"K": {WikiCrow: model.SourceData{Evaluation: *doc}},
	})
	p := NewPipeline(model.DefaultConfig(), reg, zap.NewNop())

	report, err := p.Report(context.Background(), "K", model.SourceWikiCrow)
	require.NoError(t, err)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, model.BandLow, report.Sections[0].Band)
	assert.True(t, report.Sections[1].Aggregate.Empty())
	assert.Empty(t, report.Sections[1].Band)

	empty, err := p.Report(context.Background(), "K", model.SourceWikipedia)
	require.NoError(t, err)
	assert.Empty(t, empty.Band)
}

func TestNewPipeline_LogsDuplicateIDs(t *testing.T) {
	doc := fixture.Catalog()
	doc.Groups[1].Requirements = append(doc.Groups[1].Requirements, model.Requirement{ID: "1", Description: "Shadowed"})
	reg := dataset.NewRegistry(doc, map[string]model.DataSet{})

	p := NewPipeline(model.DefaultConfig(), reg, zap.NewNop())
	req, ok := p.Catalog().Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "Neutral tone", req.Description)
}
