package tui

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-dosimetry/pkg/draft"
)

//go:embed templates/*.tpl
var templateFS embed.FS

const summaryTemplate = "summary.tpl"

// Summary renders the review shown on the last wizard step.
type Summary struct {
	tpl *pongo2.Template
}

// NewSummary parses the embedded review template.
func NewSummary() (*Summary, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("tui: templates: %w", err)
	}
	set := pongo2.NewSet("dosimetry", pongo2.NewFSLoader(sub))
	tpl, err := set.FromFile(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("tui: parse %s: %w", summaryTemplate, err)
	}
	return &Summary{tpl: tpl}, nil
}

// Render formats d. Rows that would be dropped on submit are left out of the
// equipment lines; withArticle toggles the article block and its checks.
func (s *Summary) Render(d draft.Draft, withArticle bool) (string, error) {
	out, err := s.tpl.Execute(summaryContext(d, withArticle))
	if err != nil {
		return "", fmt.Errorf("tui: render summary: %w", err)
	}
	return out, nil
}

func summaryContext(d draft.Draft, withArticle bool) pongo2.Context {
	machines := make([]string, 0, len(d.Machines))
	for _, m := range d.KeptMachines() {
		machines = append(machines, label(m.Model, m.Manufacturer, m.Energy))
	}
	detectors := make([]string, 0, len(d.Detectors))
	for _, det := range d.KeptDetectors() {
		detectors = append(detectors, label(det.DetectorType, det.Model, det.Position))
	}
	phantoms := make([]string, 0, len(d.Phantoms))
	for _, p := range d.KeptPhantoms() {
		phantoms = append(phantoms, label(p.Name, p.PhantomType, p.Material))
	}

	columns := make([]map[string]any, 0, len(d.Dataset.Columns))
	for _, column := range d.Dataset.Columns {
		columns = append(columns, map[string]any{
			"name":        column.Name,
			"description": column.Description,
			"unit":        column.Unit,
			"type":        string(column.DataType),
		})
	}

	problems := make([]string, 0)
	for _, problem := range d.Problems(withArticle) {
		problems = append(problems, problem.String())
	}

	return pongo2.Context{
		"with_article": withArticle,
		"article": map[string]any{
			"title":   strings.TrimSpace(d.Article.Title),
			"authors": strings.TrimSpace(d.Article.Authors),
			"doi":     strings.TrimSpace(d.Article.DOI),
		},
		"description": strings.TrimSpace(d.Experience.Description),
		"machines":    machines,
		"detectors":   detectors,
		"phantoms":    phantoms,
		"dataset": map[string]any{
			"data_type":   d.Dataset.DataType,
			"file":        d.Dataset.File.Filename(),
			"format":      d.Dataset.Format(),
			"unit":        d.Dataset.Unit,
			"description": d.Dataset.Description,
		},
		"columns":  columns,
		"problems": problems,
	}
}

// label joins the first value with the non-empty details in parentheses.
func label(primary string, details ...string) string {
	primary = strings.TrimSpace(primary)
	var extra []string
	for _, detail := range details {
		if detail = strings.TrimSpace(detail); detail != "" {
			extra = append(extra, detail)
		}
	}
	switch {
	case primary == "" && len(extra) == 0:
		return "(unnamed)"
	case primary == "":
		return strings.Join(extra, ", ")
	case len(extra) == 0:
		return primary
	}
	return primary + " (" + strings.Join(extra, ", ") + ")"
}
