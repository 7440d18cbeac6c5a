package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/omnieval/internal/dataset"
	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchFile    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [KEY[/source]...]",
	Short: "Write reports for many articles in parallel",
	Long: `Batch writes a JSON and a Markdown report for every target.

A target is KEY/source, or a bare KEY for both sources. Targets come from
--file (one per line, # for comments) when it is set, in which case the
arguments are ignored; otherwise from the arguments, or, when there are
none, from every article in the data directory.

Example:
  omnieval batch
  omnieval batch ABCC11 APRT/wikicrow --output-dir ./reports
  omnieval batch --file targets.txt --concurrency 4`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./omnieval-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&batchFile, "file", "", "read targets from file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	targets, err := batchTargets(args, batchFile, p.Registry())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  omnieval batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Targets:      %d\n", len(targets))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results := processor.Process(ctx, targets)
	renderer := p.Renderer()
	out := cmd.OutOrStdout()

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Target, result.Error)
			continue
		}

		slug := sanitizeFilename(result.Target.Key + "-" + string(result.Target.Source))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Target, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Target, err)
			continue
		}

		successCount++
		if result.Report.Article.Empty() {
			fmt.Fprintf(out, "✓ %s (no scored sections)\n", result.Target)
		} else {
			fmt.Fprintf(out, "✓ %s (score: %d%%, %s)\n", result.Target, result.Report.Percent, result.Report.Band)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if skipped := len(targets) - len(results); skipped > 0 {
		return fmt.Errorf("batch interrupted: %d targets not processed: %w", skipped, ctx.Err())
	}
	return nil
}

// batchTargets picks targets from the file, else args, else every article
// in the registry. A file makes args ignored.
func batchTargets(args []string, file string, reg *dataset.Registry) ([]worker.Target, error) {
	if file != "" {
		return worker.ReadTargetsFromFile(file)
	}

	var targets []worker.Target
	if len(args) > 0 {
		for _, arg := range args {
			parsed, err := worker.ParseTarget(arg)
			if err != nil {
				return nil, err
			}
			targets = append(targets, parsed...)
		}
		return targets, nil
	}

	for _, key := range reg.Keys() {
		for _, src := range model.Sources {
			targets = append(targets, worker.Target{Key: key, Source: src})
		}
	}
	return targets, nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
