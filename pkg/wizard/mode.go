package wizard

import "github.com/goliatone/go-dosimetry/pkg/submit"

// Mode selects what the wizard produces. It is one of NewArticleMode,
// ExistingArticleMode or DraftMode.
type Mode interface {
	steps() []Step
	target() submit.Target
}

// NewArticleMode collects article metadata and submits article and experience
// together.
type NewArticleMode struct{}

// ExistingArticleMode attaches the experience to a stored article.
type ExistingArticleMode struct {
	ArticleID int64
}

// DraftMode collects an experience without any backend call; the finished
// draft is handed to the OnDraft callback, typically to fill a batch.
type DraftMode struct{}

func (NewArticleMode) steps() []Step      { return StepsWithArticle() }
func (ExistingArticleMode) steps() []Step { return StepsWithoutArticle() }
func (DraftMode) steps() []Step           { return StepsWithoutArticle() }

func (NewArticleMode) target() submit.Target        { return submit.NewArticle{} }
func (m ExistingArticleMode) target() submit.Target { return submit.ExistingArticle{ID: m.ArticleID} }
func (DraftMode) target() submit.Target             { return nil }
