package evaluation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/omnieval/internal/fixture"
	"github.com/ppiankov/omnieval/internal/model"
)

func dirtyDoc() *model.Evaluation {
	notes := "reviewed"
	doc := fixture.Document(
		[]model.RequirementEvaluation{fixture.Eval("1", 0.5), fixture.NullConfidence("2", 0.7)},
		fixture.Section(1,
			[]model.RequirementEvaluation{fixture.NullScore("3")},
			fixture.Sentence(1, fixture.Eval("1", 1), fixture.NullScore("2")),
			fixture.Sentence(2, fixture.Eval("2", 0)),
		),
		fixture.Section(2, nil, fixture.Sentence(1, fixture.NullScore("1"), fixture.NullConfidence("1", 0.3))),
	)
	doc.Sections[0].MetaNotes = &notes
	return doc
}

func TestSanitize_RemovesAllAndOnlyInvalid(t *testing.T) {
	doc := dirtyDoc()
	before := countAll(doc)
	invalid := InvalidCount(doc)
	require.Equal(t, 5, invalid)

	clean := Sanitize(doc)

	assert.Equal(t, before-invalid, countAll(clean))
	assert.Equal(t, 0, InvalidCount(clean))
	forEach(clean, func(e model.RequirementEvaluation) {
		assert.NotNil(t, e.Score)
		assert.NotNil(t, e.Confidence)
	})

	assert.Len(t, clean.ArticleEvaluation.RequirementEvaluations, 1)
	assert.Empty(t, clean.Sections[0].RequirementEvaluations)
	assert.Len(t, clean.Sections[0].SentenceEvaluations[0].RequirementEvaluations, 1)
	assert.Empty(t, clean.Sections[1].SentenceEvaluations[0].RequirementEvaluations)
}

func TestSanitize_PreservesStructure(t *testing.T) {
	clean := Sanitize(dirtyDoc())

	require.Len(t, clean.Sections, 2)
	assert.Equal(t, 1, clean.Sections[0].Index)
	assert.Equal(t, 2, clean.Sections[1].Index)
	require.Len(t, clean.Sections[0].SentenceEvaluations, 2)
	require.NotNil(t, clean.Sections[0].MetaNotes)
	assert.Equal(t, "reviewed", *clean.Sections[0].MetaNotes)
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	doc := dirtyDoc()
	snapshot := dirtyDoc()

	clean := Sanitize(doc)
	*clean.Sections[0].SentenceEvaluations[0].RequirementEvaluations[0].Score = 0.1

	if diff := cmp.Diff(snapshot, doc); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	once := Sanitize(dirtyDoc())
	twice := Sanitize(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("sanitize is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestSanitize_NilAndEmpty(t *testing.T) {
	clean := Sanitize(nil)
	require.NotNil(t, clean)
	assert.Empty(t, clean.Sections)
	assert.Empty(t, clean.ArticleEvaluation.RequirementEvaluations)

	assert.Equal(t, 0, InvalidCount(nil))
	assert.Empty(t, Sanitize(&model.Evaluation{}).Sections)
}

// Scenario C: a null score next to a valid one drops out of the sentence
func TestSanitize_NullScoreLeavesSentence(t *testing.T) {
	nullScore := fixture.NullScore("2")
	nullScore.Confidence = fixture.F(0.9)
	doc := fixture.Document(nil, fixture.Section(1, nil, fixture.Sentence(1, fixture.Eval("1", 0.6), nullScore)))

	clean := Sanitize(doc)

	before := doc.Sections[0].SentenceEvaluations[0].RequirementEvaluations
	after := clean.Sections[0].SentenceEvaluations[0].RequirementEvaluations
	assert.Len(t, after, len(before)-1)
	assert.Equal(t, "1", after[0].RequirementID)
}

func forEach(doc *model.Evaluation, fn func(model.RequirementEvaluation)) {
	for _, e := range doc.ArticleEvaluation.RequirementEvaluations {
		fn(e)
	}
	for _, section := range doc.Sections {
		for _, e := range section.RequirementEvaluations {
			fn(e)
		}
		for _, sentence := range section.SentenceEvaluations {
			for _, e := range sentence.RequirementEvaluations {
				fn(e)
			}
		}
	}
}

func countAll(doc *model.Evaluation) int {
	n := 0
	forEach(doc, func(model.RequirementEvaluation) { n++ })
	return n
}
