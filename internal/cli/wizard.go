package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/submit"
	"github.com/goliatone/go-dosimetry/pkg/tui"
	"github.com/goliatone/go-dosimetry/pkg/wizard"
)

func (a *app) wizardCommand() *cobra.Command {
	var (
		articleID int64
		draftMode bool
	)
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Enter an experiment step by step",
		Long: `Wizard walks through the article, experiment, equipment, dataset and
column mapping steps and submits from the summary step. With --article-id
the article step is skipped and the experiment is attached to that article.
With --draft-mode experiments are collected into a batch for one article
and submitted together at the end.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().Int64Var(&articleID, "article-id", 0, "attach the experiment to this existing article")
	cmd.Flags().BoolVar(&draftMode, "draft-mode", false, "collect several experiments before submitting")
	cmd.MarkFlagsMutuallyExclusive("article-id", "draft-mode")

	cmd.RunE = a.runE(func(cmd *cobra.Command, _ []string) error {
		driver := a.driver
		if driver == nil {
			driver = tui.NewSurveyDriver(cmd.OutOrStdout())
		}
		var err error
		if draftMode {
			err = a.runDraftBatch(cmd, driver)
		} else {
			err = a.runWizard(cmd, driver, articleID)
		}
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
			return nil
		}
		return err
	})
	return cmd
}

func (a *app) runWizard(cmd *cobra.Command, driver tui.PromptDriver, articleID int64) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var mode wizard.Mode = wizard.NewArticleMode{}
	if articleID > 0 {
		article, err := a.stack.Client.GetArticle(ctx, articleID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Adding an experiment to article #%d %q\n", article.ID, article.Title)
		mode = wizard.ExistingArticleMode{ArticleID: article.ID}
	}

	c := wizard.New(mode,
		wizard.WithSubmitter(a.stack.Orchestrator),
		wizard.WithLogger(a.logger.Named("wizard")),
		wizard.OnSuccess(func(res submit.Result) { printResult(out, res) }),
	)
	return a.session(ctx, c, driver, out)
}

func (a *app) runDraftBatch(cmd *cobra.Command, driver tui.PromptDriver) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	article, err := tui.PromptArticle(ctx, driver, draft.Article{})
	if err != nil {
		return err
	}
	batch := draft.NewBatch(article)
	if err := batch.Check(); errors.Is(err, draft.ErrMissingTitle) {
		return err
	}

	c := wizard.New(wizard.DraftMode{},
		wizard.WithLogger(a.logger.Named("wizard")),
		wizard.OnDraft(func(d draft.Draft) {
			id := batch.Add(d)
			fmt.Fprintf(out, "Saved %s (%d in batch)\n", id, batch.Len())
		}),
	)
	if err := a.session(ctx, c, driver, out); err != nil {
		return err
	}

	if batch.Len() == 0 {
		fmt.Fprintln(out, "Nothing to submit.")
		return nil
	}
	ok, err := driver.Confirm(ctx, tui.ConfirmConfig{
		Message: fmt.Sprintf("Submit article %q with %d experiment(s)?", batch.Article.Title, batch.Len()),
		Default: true,
	})
	if err != nil || !ok {
		return err
	}
	res, err := a.stack.Orchestrator.SubmitBatch(ctx, batch)
	printBatch(out, res)
	return err
}

func (a *app) session(ctx context.Context, c *wizard.Controller, driver tui.PromptDriver, out io.Writer) error {
	s, err := tui.NewSession(c,
		tui.WithPromptDriver(driver),
		tui.WithOutput(out),
		tui.WithRepeat(true),
		tui.WithLogger(a.logger.Named("tui")),
	)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
