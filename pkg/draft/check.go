package draft

import "fmt"

// Problem is a presence-check finding. Problems are advisory: the wizard shows
// them on the summary step but only the article title gates navigation.
type Problem struct {
	Section string
	Message string
}

func (p Problem) String() string {
	return p.Section + ": " + p.Message
}

// HasTitle reports whether the article title is filled in. The wizard keeps
// its Continue action disabled on the article step until it is.
func (d Draft) HasTitle() bool {
	return !blank(d.Article.Title)
}

// HasFile reports whether a dataset file is attached.
func (d Draft) HasFile() bool {
	return d.Dataset.File != nil && (d.Dataset.File.Data != nil || d.Dataset.File.Path != "")
}

// Problems lists empty required fields. withArticle toggles the article
// checks, which do not apply when the experience targets an existing article.
func (d Draft) Problems(withArticle bool) []Problem {
	var out []Problem
	if withArticle && !d.HasTitle() {
		out = append(out, Problem{Section: "article", Message: "title is required"})
	}
	if blank(d.Experience.Description) {
		out = append(out, Problem{Section: "experience", Message: "description is required"})
	}
	if blank(d.Dataset.DataType) {
		out = append(out, Problem{Section: "data", Message: "data type is required"})
	}
	if !d.HasFile() {
		out = append(out, Problem{Section: "data", Message: "a dataset file is required"})
	}
	for i, column := range d.Dataset.Columns {
		if blank(column.Name) {
			out = append(out, Problem{Section: "columns", Message: fmt.Sprintf("column %d has no name", i+1)})
		}
		if blank(column.Description) {
			out = append(out, Problem{Section: "columns", Message: fmt.Sprintf("column %d has no description", i+1)})
		}
	}
	return out
}
