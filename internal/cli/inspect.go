package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/pipeline"
)

var (
	inspectSource   string
	inspectSection  int
	inspectSentence int
	inspectArticle  bool
	inspectJSON     bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "Show the scoring panel for one section, sentence or article",
	Long: `Inspect prints what the viewer's side panel shows for one selection.

Indices are 0-based positions in the rendered article, exactly as a click
in the viewer would report them. Without --sentence the whole section is
shown; with --article the whole article is shown.

Example:
  omnieval inspect ABCC11 --section 0
  omnieval inspect ABCC11 --source wikipedia --section 2 --sentence 1
  omnieval inspect ABCC11 --article --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectSource, "source", "", "article source: wikipedia or wikicrow (default: data.default_source)")
	inspectCmd.Flags().IntVar(&inspectSection, "section", 0, "0-based section position")
	inspectCmd.Flags().IntVar(&inspectSentence, "sentence", -1, "0-based sentence position within the section")
	inspectCmd.Flags().BoolVar(&inspectArticle, "article", false, "show the whole-article panel")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the panel as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	src, err := resolveSource(inspectSource, cfg)
	if err != nil {
		return err
	}

	req := pipeline.PanelRequest{
		Key:     args[0],
		Source:  src,
		Kind:    model.PanelSection,
		Section: inspectSection,
	}
	switch {
	case inspectArticle:
		req.Kind = model.PanelArticle
	case inspectSentence >= 0:
		req.Kind = model.PanelSentence
		req.Sentence = inspectSentence
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	panel, err := p.Panel(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(panel)
	}

	p.Renderer().RenderPanel(cmd.OutOrStdout(), panel)
	return nil
}

// resolveSource falls back to the configured default source
func resolveSource(flag string, cfg *model.Config) (model.Source, error) {
	if flag == "" {
		flag = cfg.Data.DefaultSource
	}
	return model.ParseSource(flag)
}
