package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/omnieval/internal/model"
)

// Reporter builds the report for one article source
type Reporter interface {
	Report(ctx context.Context, key string, src model.Source) (*model.Report, error)
}

// Target names one article source to report on
type Target struct {
	Key    string
	Source model.Source
}

func (t Target) String() string {
	return t.Key + "/" + string(t.Source)
}

// ParseTarget parses "KEY/source". A bare "KEY" expands to every source.
func ParseTarget(s string) ([]Target, error) {
	key, source, found := strings.Cut(strings.TrimSpace(s), "/")
	if key == "" {
		return nil, fmt.Errorf("empty article key in %q", s)
	}
	if !found {
		targets := make([]Target, 0, len(model.Sources))
		for _, src := range model.Sources {
			targets = append(targets, Target{Key: key, Source: src})
		}
		return targets, nil
	}

	src, err := model.ParseSource(source)
	if err != nil {
		return nil, err
	}
	return []Target{{Key: key, Source: src}}, nil
}

// ReportJob represents one report job
type ReportJob struct {
	Target   Target
	Reporter Reporter
}

// Execute executes the report job
func (j *ReportJob) Execute(ctx context.Context) Result {
	report, err := j.Reporter.Report(ctx, j.Target.Key, j.Target.Source)
	if err != nil {
		return &ReportResult{Target: j.Target, Error: err}
	}
	return &ReportResult{Target: j.Target, Report: report}
}

// ReportResult represents the result of a report job
type ReportResult struct {
	Target Target
	Report *model.Report
	Error  error
}

// GetError returns the error from the report result
func (r *ReportResult) GetError() error {
	return r.Error
}

// BatchProcessor builds many reports concurrently
type BatchProcessor struct {
	reporter    Reporter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(reporter Reporter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		reporter:    reporter,
		concurrency: concurrency,
	}
}

// Process reports on every target and returns results in target order
func (b *BatchProcessor) Process(ctx context.Context, targets []Target) []*ReportResult {
	if len(targets) == 0 {
		return []*ReportResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, target := range targets {
		pool.Submit(&ReportJob{
			Target:   target,
			Reporter: b.reporter,
		})
	}

	results := pool.Wait()

	reports := make([]*ReportResult, len(results))
	for i, result := range results {
		reports[i] = result.(*ReportResult)
	}

	return reports
}

// ProcessFile reads targets from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ReportResult, error) {
	targets, err := ReadTargetsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	return b.Process(ctx, targets), nil
}

// ReadTargetsFromFile reads targets from a file, one per line.
// Blank lines and lines starting with # are skipped; duplicates are dropped.
func ReadTargetsFromFile(filePath string) ([]Target, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var targets []Target
	seen := make(map[Target]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed, err := ParseTarget(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		for _, t := range parsed {
			if !seen[t] {
				seen[t] = true
				targets = append(targets, t)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return targets, nil
}
