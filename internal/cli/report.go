package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	reportSource string
	outJSON      string
	outMD        string
	noFooter     bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <key>",
	Short: "Summarise one article's evaluation",
	Long: `Report computes the article score, every section and sentence score,
and the deduplicated list of requirements evaluated across the article.

A short summary is always printed. Use --json and --md to also write files.

Example:
  omnieval report ABCC11
  omnieval report ABCC11 --source wikipedia --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportSource, "source", "", "article source: wikipedia or wikicrow (default: data.default_source)")
	reportCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	reportCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	reportCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	src, err := resolveSource(reportSource, cfg)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Report(cmd.Context(), args[0], src)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	renderer := p.Renderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ JSON report written to: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Markdown report written to: %s\n", outMD)
		}
	}

	renderer.RenderSummary(cmd.OutOrStdout(), report)
	return nil
}
