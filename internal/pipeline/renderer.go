package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/score"
)

// Renderer writes reports and panels as JSON, Markdown or plain text
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := r.WriteMarkdown(f, report); err != nil {
		return err
	}
	return f.Close()
}

// WriteMarkdown renders the Markdown document to w
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", report.Key, report.Source)
	fmt.Fprintf(&b, "**Article score:** %s (%s) across %d sections\n\n", formatAggregate(report.Article), formatBand(report.Band), report.Article.Count)
	fmt.Fprintf(&b, "Requirements: %d total, %d high, %d medium, %d low\n", report.Stats.Total, report.Stats.High, report.Stats.Medium, report.Stats.Low)
	if report.Dropped > 0 {
		fmt.Fprintf(&b, "\n_%d evaluations without score or confidence were ignored._\n", report.Dropped)
	}

	b.WriteString("\n## Sections\n\n")
	b.WriteString("| # | Section | Score | Band | Evaluations |\n")
	b.WriteString("|---|---------|-------|------|-------------|\n")
	for _, s := range report.Sections {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %d |\n", s.Index, escapeCell(s.Title), formatAggregate(s.Aggregate), formatBand(s.Band), s.Aggregate.Count)
	}

	for _, s := range report.Sections {
		if len(s.Sentences) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %d. %s\n\n", s.Index, s.Title)
		for _, sent := range s.Sentences {
			fmt.Fprintf(&b, "- [%s] %s\n", formatAggregate(sent.Aggregate), sent.Text)
		}
	}

	if len(report.Requirements) > 0 {
		b.WriteString("\n## Requirements\n\n")
		b.WriteString("| ID | Description | Score | Confidence |\n")
		b.WriteString("|----|-------------|-------|------------|\n")
		for _, e := range report.Requirements {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", e.RequirementID, escapeCell(e.Description), formatPtr(e.Score), formatPtr(e.Confidence))
		}
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n_Generated by omnieval at %s_\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "%s/%s: %s (%s)\n", report.Key, report.Source, formatAggregate(report.Article), formatBand(report.Band))
	for _, s := range report.Sections {
		fmt.Fprintf(w, "  %2d. %-40s %s\n", s.Index, truncate(s.Title, 40), formatAggregate(s.Aggregate))
	}
	fmt.Fprintf(w, "  requirements: %d (high %d, medium %d, low %d)\n", report.Stats.Total, report.Stats.High, report.Stats.Medium, report.Stats.Low)
}

// RenderPanel prints one panel with its evaluations grouped by category
func (r *Renderer) RenderPanel(w io.Writer, panel *model.Panel) {
	title := panel.Title
	if title == "" {
		title = string(panel.Kind)
	}
	fmt.Fprintf(w, "%s: %s\n", panel.Kind, title)
	if panel.Text != "" {
		fmt.Fprintf(w, "  %q\n", truncate(panel.Text, 120))
	}
	fmt.Fprintf(w, "Score: %s (%s)\n", formatAggregate(panel.Aggregate), formatBand(panel.Band))

	for _, g := range panel.Groups {
		fmt.Fprintf(w, "\n[%s]\n", g.Category)
		for _, e := range g.Evaluations {
			fmt.Fprintf(w, "  #%-4s %-6s %s\n", e.RequirementID, formatPtr(e.Score), e.Description)
			if e.Reasoning != "" {
				fmt.Fprintf(w, "        %s\n", e.Reasoning)
			}
		}
	}
}

func formatAggregate(a model.Aggregate) string {
	if a.Empty() {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", score.Percent(a.Score))
}

func formatBand(b model.Band) string {
	if b == "" {
		return "-"
	}
	return string(b)
}

func formatPtr(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
