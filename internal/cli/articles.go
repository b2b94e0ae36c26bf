package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dosimetry/pkg/contract"
)

func (a *app) articlesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Browse stored articles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Args:  cobra.NoArgs,
	}
	list.RunE = a.runE(func(cmd *cobra.Command, _ []string) error {
		articles, err := a.stack.Client.ListArticles(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tDOI")
		for _, article := range articles {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", article.ID, article.Title, article.Authors, article.DOI)
		}
		return w.Flush()
	})

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
	}
	show.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		id, err := parseID("article", args[0])
		if err != nil {
			return err
		}
		article, err := a.stack.Client.GetArticle(cmd.Context(), id)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 1, ' ', 0)
		fmt.Fprintf(w, "ID:\t%d\n", article.ID)
		fmt.Fprintf(w, "Title:\t%s\n", article.Title)
		fmt.Fprintf(w, "Authors:\t%s\n", article.Authors)
		fmt.Fprintf(w, "DOI:\t%s\n", article.DOI)
		return w.Flush()
	})

	experiences := &cobra.Command{
		Use:   "experiences ID",
		Short: "List the experiments attached to an article",
		Args:  cobra.ExactArgs(1),
	}
	experiences.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		id, err := parseID("article", args[0])
		if err != nil {
			return err
		}
		listing, err := a.stack.Client.ListArticleExperiences(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if listing.Title != "" {
			fmt.Fprintf(out, "%s\n\n", listing.Title)
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDESCRIPTION\tMACHINES\tDETECTORS\tPHANTOMS\tDATA")
		for _, exp := range listing.Experiences {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n",
				exp.ID, exp.Description, exp.MachineCount, exp.DetectorCount, exp.PhantomCount, exp.DataCount)
		}
		return w.Flush()
	})

	cmd.AddCommand(list, show, experiences)
	return cmd
}

func (a *app) healthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend answers",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.runE(func(cmd *cobra.Command, _ []string) error {
		health, err := a.stack.Client.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.stack.Client.BaseURL(), health.Status)
		return nil
	})
	return cmd
}

func (a *app) contractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "List the backend operations the client relies on",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.runE(func(cmd *cobra.Command, _ []string) error {
		v, err := contract.NewValidator(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tOPERATION")
		for _, op := range v.Operations() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", op.Method, op.Path, op.ID)
		}
		return w.Flush()
	})
	return cmd
}
