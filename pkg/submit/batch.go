package submit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/portal"
)

// EntryResult pairs a batch entry with the identifiers it received.
type EntryResult struct {
	TempID string
	Result Result
}

// BatchResult reports what a batch submission created. On failure it holds
// the entries saved before the failing one, and FailedEntry names that entry.
type BatchResult struct {
	ArticleID   int64
	Entries     []EntryResult
	FailedEntry string
}

// SubmitBatch creates the batch article once, then submits each experience
// against it in insertion order. Validation happens before any call. A
// failing entry stops the batch; the article and earlier entries stay saved.
func (o *Orchestrator) SubmitBatch(ctx context.Context, b *draft.Batch) (BatchResult, error) {
	start := time.Now()
	res, failure := o.submitBatch(ctx, b)
	o.metrics.outcome(o.strategy, time.Since(start), failure)

	if failure != nil {
		o.logger.Warn("batch submission failed",
			zap.Int64("article_id", res.ArticleID),
			zap.Int("saved", len(res.Entries)),
			zap.String("entry", res.FailedEntry),
			zap.String("stage", string(failure.Stage)),
			zap.String("message", failure.Message))
		o.notifier.Notify(KindError, "Submission failed", failure.Message)
		return res, failure
	}

	o.logger.Info("batch submission complete",
		zap.Int64("article_id", res.ArticleID),
		zap.Int("experiences", len(res.Entries)))
	o.notifier.Notify(KindSuccess, "Submission successful!",
		fmt.Sprintf("Article %q with %d experiment(s) has been saved.", strings.TrimSpace(b.Article.Title), len(res.Entries)))
	return res, nil
}

func (o *Orchestrator) submitBatch(ctx context.Context, b *draft.Batch) (BatchResult, *Failure) {
	var res BatchResult
	if b == nil {
		return res, &Failure{Stage: StageArticle, Operation: "check batch", Message: draft.ErrEmptyBatch.Error(), Err: draft.ErrEmptyBatch}
	}
	if err := b.Check(); err != nil {
		return res, &Failure{Stage: StageArticle, Operation: "check batch", Message: err.Error(), Err: err}
	}

	entries := b.Entries()
	for _, entry := range entries {
		if !entry.Draft.HasFile() {
			res.FailedEntry = entry.TempID
			return res, &Failure{Stage: StageData, Operation: "check batch", Message: "A dataset file is required", Err: draft.ErrNoFile}
		}
	}

	trimmed := b.Article.Trimmed()
	article := portal.ArticleInput{Title: trimmed.Title, Authors: trimmed.Authors, DOI: trimmed.DOI}
	err := o.retry.do(ctx, "create article", func(ctx context.Context) error {
		created, err := o.backend.CreateArticle(ctx, article)
		res.ArticleID = created.ID
		return err
	})
	if err != nil {
		return res, o.fail("create article", err)
	}

	target := ExistingArticle{ID: res.ArticleID}
	for _, entry := range entries {
		d := entry.Draft.Trimmed()
		d.Article = trimmed
		result, failure := o.submit(ctx, d, target)
		if failure != nil {
			res.FailedEntry = entry.TempID
			return res, failure
		}
		o.logger.Debug("batch entry saved",
			zap.String("entry", entry.TempID),
			zap.Int64("experience_id", result.ExperienceID))
		res.Entries = append(res.Entries, EntryResult{TempID: entry.TempID, Result: result})
	}
	return res, nil
}
