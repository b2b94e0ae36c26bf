package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dosimetry/pkg/draft"
	"github.com/goliatone/go-dosimetry/pkg/submit"
)

func (a *app) submitCommand() *cobra.Command {
	var articleID int64
	cmd := &cobra.Command{
		Use:   "submit DRAFT.yaml",
		Short: "Submit an experiment described in a YAML draft",
		Long: `Submit reads a draft file and sends it in one go. Without --article-id a
new article is created from the draft's article section; with it the
experiment is attached to that stored article.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().Int64Var(&articleID, "article-id", 0, "attach the experiment to this existing article")
	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		d, err := draft.LoadFile(args[0])
		if err != nil {
			return err
		}

		var target submit.Target = submit.NewArticle{}
		if articleID > 0 {
			target = submit.ExistingArticle{ID: articleID}
		}
		for _, problem := range d.Problems(articleID == 0) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", problem)
		}

		res, err := a.stack.Orchestrator.Submit(cmd.Context(), d, target)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	})
	return cmd
}

func (a *app) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch BATCH.yaml",
		Short: "Create an article and submit several experiments to it",
		Long: `Batch reads one article and a list of experiments from a YAML file. The
article is created first, then each experiment is submitted in order. A
failing experiment stops the batch; what was saved before it stays saved.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		b, err := draft.LoadBatchFile(args[0])
		if err != nil {
			return err
		}
		res, err := a.stack.Orchestrator.SubmitBatch(cmd.Context(), b)
		printBatch(cmd.OutOrStdout(), res)
		return err
	})
	return cmd
}

func printResult(out io.Writer, res submit.Result) {
	fmt.Fprintf(out, "article %d, experience %d, data %d (%d machine(s), %d detector(s), %d phantom(s))\n",
		res.ArticleID, res.ExperienceID, res.DataID, res.Machines, res.Detectors, res.Phantoms)
}

func printBatch(out io.Writer, res submit.BatchResult) {
	if res.ArticleID == 0 {
		return
	}
	fmt.Fprintf(out, "article %d\n", res.ArticleID)
	for _, entry := range res.Entries {
		fmt.Fprintf(out, "  %s: experience %d, data %d\n", entry.TempID, entry.Result.ExperienceID, entry.Result.DataID)
	}
	if res.FailedEntry != "" {
		fmt.Fprintf(out, "  %s: failed\n", res.FailedEntry)
	}
}
