package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/projectboard/internal/domain/entities"
	"github.com/devilmonastery/projectboard/internal/pkg/logger"
	"github.com/devilmonastery/projectboard/internal/pkg/pagination"
)

func newArticleCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Read articles from the terminal",
	}

	var style string
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an article with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid article id %q", args[0])
			}

			a, err := openApp(cmd.Context(), opts.cfg, logger.WithArticle(logger.WithCommand(slog.Default(), "article show"), id))
			if err != nil {
				return err
			}
			defer a.Close()

			article, err := a.articles.GetArticleWithComments(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), articleMarkdown(article), style)
		},
	}
	show.Flags().StringVar(&style, "style", "auto", "glamour style (auto, dark, light, notty)")

	var searchType, query string
	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Example: `  board article list
  board article list --type hashtag --query "go spring"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := entities.ParseSearchType(searchType)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts.cfg, logger.WithCommand(slog.Default(), "article list"))
			if err != nil {
				return err
			}
			defer a.Close()

			pageable := pagination.Of(page, size)
			result, err := a.articles.SearchArticles(cmd.Context(), st, query, pageable)
			if err != nil {
				return err
			}
			writeArticleList(cmd.OutOrStdout(), result)
			return nil
		},
	}
	list.Flags().StringVar(&searchType, "type", "title", "search type (title, content, id, nickname, hashtag)")
	list.Flags().StringVar(&query, "query", "", "search keyword")
	list.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	list.Flags().IntVar(&size, "size", 20, "articles per page")

	cmd.AddCommand(show, list)
	return cmd
}

// articleMarkdown lays an article and its comment tree out as one document
func articleMarkdown(a *entities.ArticleWithComments) string {
	var b strings.Builder
	art := a.Article

	fmt.Fprintf(&b, "# %s\n\n", art.Title)
	fmt.Fprintf(&b, "*%s* · %s", art.AuthorName(), art.CreatedAt.Format("2006-01-02 15:04"))
	if tags := art.HashtagNames(); len(tags) > 0 {
		fmt.Fprintf(&b, " · #%s", strings.Join(tags, " #"))
	}
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(art.Content))
	b.WriteString("\n")

	if len(a.Comments) > 0 {
		b.WriteString("\n---\n\n## Comments\n\n")
		writeComments(&b, a.Comments, 0)
	}
	return b.String()
}

func writeComments(b *strings.Builder, nodes []*entities.CommentNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		author := n.Author.DisplayName()
		if author == "" {
			author = n.UserID
		}
		content := strings.ReplaceAll(strings.TrimSpace(n.Content), "\n", " ")
		fmt.Fprintf(b, "%s- **%s**: %s\n", indent, author, content)
		writeComments(b, n.Children, depth+1)
	}
}

func writeArticleList(w io.Writer, page pagination.Page[*entities.Article]) {
	for _, a := range page.Content {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.CreatedAt.Format("2006-01-02"), a.AuthorName(), a.Title)
	}
	fmt.Fprintf(w, "page %d/%d, %d articles\n", page.Number+1, max(page.TotalPages(), 1), page.TotalElements)
}

// printMarkdown styles the document with glamour when w is a terminal and
// writes it unchanged otherwise.
func printMarkdown(w io.Writer, markdown, style string) error {
	out := markdown
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if rendered, err := glamour.Render(markdown, style); err == nil {
			out = rendered
		}
	}
	_, err := io.WriteString(w, out)
	return err
}
