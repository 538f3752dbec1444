package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var crawlQuestion string

var crawlCmd = &cobra.Command{
	Use:   "crawl [url]",
	Short: "Crawl a site and ask questions about it",
	Long: `Crawls a site breadth first into memory and answers questions from the
crawled pages. Nothing is written to the store.

With -q the question is answered once. Without it kilde prompts for
questions until an empty line or "exit".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVarP(&crawlQuestion, "question", "q", "", "answer one question and exit")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	if app.Crawler == nil {
		return errors.New("crawler not configured")
	}

	startURL := app.Config.Crawler.StartURL
	if len(args) == 1 {
		startURL = args[0]
	}
	if startURL == "" {
		return errors.New("no URL given and crawler.start-url is not set")
	}

	session, err := app.Crawler.Crawl(cmd.Context(), startURL)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	cmd.Printf("Crawled %d pages from %s\n", session.Pages(), startURL)

	if crawlQuestion != "" {
		answer, err := session.Ask(cmd.Context(), crawlQuestion)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		cmd.Println(answer)
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" || q == "exit" {
			return nil
		}
		answer, err := session.Ask(cmd.Context(), q)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		cmd.Println(answer)
		cmd.Println()
	}
}
