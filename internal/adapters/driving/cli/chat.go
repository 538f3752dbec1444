package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat",
	Long: `Launch a terminal chat that answers questions from the indexed
documents and lists the sources of each answer.

Controls:
  Enter        - Ask
  ↑/↓          - Select source
  PgUp/PgDown  - Scroll transcript
  Ctrl+L       - Clear transcript
  Esc, Ctrl+C  - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}

	chat, err := tui.NewApp(&tui.Ports{Answer: app.Answers, Site: site(app)})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	chat.WithContext(cmd.Context())

	if err := chat.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
