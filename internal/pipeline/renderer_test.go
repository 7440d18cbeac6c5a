package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/omnieval/internal/model"
)

func testReport(t *testing.T) *model.Report {
	t.Helper()
	report, err := newTestPipeline(t).Report(context.Background(), "ABCC11", model.SourceWikiCrow)
	require.NoError(t, err)
	return report
}

func TestRenderJSON(t *testing.T) {
	report := testReport(t)
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, NewRenderer(true).RenderJSON(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 75, decoded.Percent)
	assert.Len(t, decoded.Requirements, 3)
}

func TestRenderMarkdown(t *testing.T) {
	report := testReport(t)
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, NewRenderer(true).RenderMarkdown(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "# ABCC11 (wikicrow)"))
	assert.Contains(t, md, "**Article score:** 75% (medium) across 2 sections")
	assert.Contains(t, md, "| 1 | Section | 50% | medium | 3 |")
	assert.Contains(t, md, "| 3 | Short lead | 0.50 | 0.90 |")
	assert.Contains(t, md, "_1 evaluations without score or confidence were ignored._")
	assert.Contains(t, md, "Generated by omnieval")
}

func TestWriteMarkdown_NoFooter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteMarkdown(&buf, testReport(t)))
	assert.NotContains(t, buf.String(), "Generated by omnieval")
}

func TestWriteMarkdown_EscapesPipes(t *testing.T) {
	report := &model.Report{
		Key:      "K",
		Source:   model.SourceWikipedia,
		Sections: []model.SectionScore{{Index: 1, Title: "A | B"}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteMarkdown(&buf, report))
	assert.Contains(t, buf.String(), "| 1 | A \\| B | n/a | - | 0 |")
}

func TestWriteMarkdown_BandFollowsScore(t *testing.T) {
	report := &model.Report{
		Key:    "K",
		Source: model.SourceWikiCrow,
		Sections: []model.SectionScore{
			{Index: 1, Title: "Scored", Aggregate: model.Aggregate{Score: 0.9, Count: 2}, Band: model.BandHigh},
			{Index: 2, Title: "Unscored"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteMarkdown(&buf, report))
	md := buf.String()
	assert.Contains(t, md, "**Article score:** n/a (-) across 0 sections")
	assert.Contains(t, md, "| 1 | Scored | 90% | high | 2 |")
	assert.Contains(t, md, "| 2 | Unscored | n/a | - | 0 |")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, testReport(t))

	out := buf.String()
	assert.Contains(t, out, "ABCC11/wikicrow: 75% (medium)")
	assert.Contains(t, out, "requirements: 3 (high 1, medium 1, low 1)")
}

func TestRenderPanel(t *testing.T) {
	p := newTestPipeline(t)
	panel, err := p.Panel(context.Background(), PanelRequest{Key: "ABCC11", Source: model.SourceWikiCrow, Kind: model.PanelSentence})
	require.NoError(t, err)

	var buf bytes.Buffer
	p.Renderer().RenderPanel(&buf, panel)

	out := buf.String()
	assert.Contains(t, out, "sentence: Lead")
	assert.Contains(t, out, "Score: 100% (high)")
	assert.Contains(t, out, "[Content]")
	assert.Contains(t, out, "Neutral tone")
	assert.Contains(t, out, "reasoning for 1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
