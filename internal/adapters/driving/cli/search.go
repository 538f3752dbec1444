package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

var (
	searchTake int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across all indexed documents.
Combines a lexical ranking and a semantic (vector) ranking with reciprocal
rank fusion.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from indexed documents",
	Long: `Retrieves the most relevant passages and asks the language model to
answer from them. The answer lists the documents it was built from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTake, "take", "n", 0, "maximum number of results (default retrieval.take)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd, askCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	if app.Retriever == nil {
		return errors.New("search service not configured")
	}

	opts := domain.RetrieveOptions{Site: site(app), Take: searchTake}
	res, err := app.Retriever.Retrieve(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, res)
	}
	return outputSearchTable(cmd, res)
}

func outputSearchJSON(cmd *cobra.Command, res *domain.RetrievalResult) error {
	sources := []domain.Source{}
	if res != nil {
		sources = res.Sources
	}
	data, err := json.MarshalIndent(sources, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, res *domain.RetrievalResult) error {
	if res.Len() == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, src := range res.Sources {
		title := src.Title
		if title == "" {
			title = src.ID
		}
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, title, src.Score)

		location := src.SourcePath
		if src.Page != nil {
			location = fmt.Sprintf("%s, side %d", location, *src.Page)
		}
		if location != "" {
			cmd.Printf("      %s\n", location)
		}
		if snippet := oneLine(res.Contexts[i], 200); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	if app.Answers == nil {
		return errors.New("answer service not configured")
	}

	answer, err := app.Answers.Answer(cmd.Context(), strings.Join(args, " "), site(app))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(answer.Text)
	printLinks(cmd.OutOrStdout(), answer.Links)
	return nil
}

// oneLine collapses whitespace and cuts s to max runes.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
