package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/score"
)

var (
	requirementsSearch string
	requirementsID     string
	requirementsJSON   bool
	requirementsKey    string
	requirementsSource string
)

// requirementsCmd represents the requirements command
var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Browse the requirements catalog",
	Long: `Requirements lists the catalog grouped by category and classification.

With --key every requirement is scored against that article: the mean over
its section and sentence evaluations, and with --id each evaluation.

Example:
  omnieval requirements
  omnieval requirements --search neutral
  omnieval requirements --id 12
  omnieval requirements --key ABCC11 --source wikipedia --id 12`,
	Args: cobra.NoArgs,
	RunE: runRequirements,
}

func init() {
	rootCmd.AddCommand(requirementsCmd)

	requirementsCmd.Flags().StringVar(&requirementsSearch, "search", "", "case-insensitive search in description and reference")
	requirementsCmd.Flags().StringVar(&requirementsID, "id", "", "show a single requirement")
	requirementsCmd.Flags().BoolVar(&requirementsJSON, "json", false, "print as JSON")
	requirementsCmd.Flags().StringVar(&requirementsKey, "key", "", "score requirements against this article")
	requirementsCmd.Flags().StringVar(&requirementsSource, "source", "", "article source for --key (default data.default_source)")
}

type scoredRequirement struct {
	model.Requirement
	Score *model.RequirementDetail `json:"score,omitempty"`
}

type scoredCatalog struct {
	Groups map[string]map[model.Classification][]model.Requirement `json:"groups"`
	Scores map[string]*model.RequirementDetail                     `json:"scores"`
}

func runRequirements(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	cat := p.Catalog()
	out := cmd.OutOrStdout()

	if requirementsSource != "" && requirementsKey == "" {
		return fmt.Errorf("--source requires --key")
	}
	src := model.Source(cfg.Data.DefaultSource)
	if requirementsSource != "" {
		if src, err = model.ParseSource(requirementsSource); err != nil {
			return err
		}
	}
	scoreIDs := func(ids []string) (map[string]*model.RequirementDetail, error) {
		if requirementsKey == "" {
			return nil, nil
		}
		return p.RequirementDetails(cmd.Context(), requirementsKey, src, ids)
	}

	if requirementsID != "" {
		req, ok := cat.Lookup(requirementsID)
		if !ok {
			return fmt.Errorf("requirement %q not found", requirementsID)
		}
		scores, err := scoreIDs([]string{req.ID})
		if err != nil {
			return err
		}
		if requirementsJSON {
			return printJSON(cmd, scoredRequirement{Requirement: req, Score: scores[req.ID]})
		}
		writeRequirement(out, req, scores[req.ID])
		return nil
	}

	grouped := cat.Search(requirementsSearch)
	scores, err := scoreIDs(requirementIDs(grouped))
	if err != nil {
		return err
	}
	if requirementsJSON {
		if scores == nil {
			return printJSON(cmd, grouped)
		}
		return printJSON(cmd, scoredCatalog{Groups: grouped, Scores: scores})
	}
	writeRequirements(out, grouped, scores)
	return nil
}

func writeRequirement(out io.Writer, req model.Requirement, detail *model.RequirementDetail) {
	fmt.Fprintf(out, "#%s %s\n", req.ID, req.Description)
	fmt.Fprintf(out, "  Category:       %s\n", req.Category)
	fmt.Fprintf(out, "  Classification: %s\n", req.Classification)
	fmt.Fprintf(out, "  Where:          %s\n", req.Where)
	fmt.Fprintf(out, "  When:           %s\n", req.When)
	fmt.Fprintf(out, "  Reference:      %s\n", req.Reference)
	if detail == nil {
		return
	}

	fmt.Fprintf(out, "\n%s/%s: %s\n", detail.Key, detail.Source, formatDetail(detail))
	for _, s := range detail.Sections {
		fmt.Fprintf(out, "  section %d %-30s %3d%% over %d\n", s.Index, s.Title, score.Percent(s.Aggregate.Score), s.Aggregate.Count)
	}
	for _, hit := range detail.Evaluations {
		where := fmt.Sprintf("%d", hit.SectionIndex)
		if hit.SentenceIndex > 0 {
			where = fmt.Sprintf("%d.%d", hit.SectionIndex, hit.SentenceIndex)
		}
		fmt.Fprintf(out, "  [%s] %-6s %s\n", where, formatScore(hit.Evaluation.Score), hit.Evaluation.Reasoning)
	}
}

func writeRequirements(out io.Writer, grouped map[string]map[model.Classification][]model.Requirement, scores map[string]*model.RequirementDetail) {
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	total := 0
	for _, category := range categories {
		fmt.Fprintf(out, "%s\n", category)
		byClass := grouped[category]
		for _, class := range classificationOrder(byClass) {
			fmt.Fprintf(out, "  %s\n", class)
			for _, req := range byClass[class] {
				if detail, ok := scores[req.ID]; ok {
					fmt.Fprintf(out, "    #%-4s %s [%s]\n", req.ID, req.Description, formatDetail(detail))
				} else {
					fmt.Fprintf(out, "    #%-4s %s\n", req.ID, req.Description)
				}
				total++
			}
		}
	}
	fmt.Fprintf(out, "\n%d requirements\n", total)
}

func requirementIDs(grouped map[string]map[model.Classification][]model.Requirement) []string {
	var ids []string
	for _, byClass := range grouped {
		for _, reqs := range byClass {
			for _, req := range reqs {
				ids = append(ids, req.ID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func formatDetail(d *model.RequirementDetail) string {
	if d.Aggregate.Empty() {
		return "not evaluated"
	}
	return fmt.Sprintf("%d%% %s over %d", d.Percent, d.Band, d.Aggregate.Count)
}

func formatScore(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}

// classificationOrder lists known classifications first, then the rest sorted
func classificationOrder(byClass map[model.Classification][]model.Requirement) []model.Classification {
	known := []model.Classification{
		model.ClassificationImperative,
		model.ClassificationBest,
		model.ClassificationFlexible,
	}

	var order []model.Classification
	for _, c := range known {
		if _, ok := byClass[c]; ok {
			order = append(order, c)
		}
	}

	var rest []model.Classification
	for c := range byClass {
		if !c.Known() {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return append(order, rest...)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
