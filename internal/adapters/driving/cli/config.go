package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
	Long: `Show and edit the kilde configuration file.

Settings are resolved from built-in defaults, then the config file, then
KILDE_* environment variables. Provider API keys also come from
OPENAI_API_KEY, GEMINI_API_KEY and ANTHROPIC_API_KEY.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Example: `  kilde config set caption.mode always
  kilde config set store.backend sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider> [key]",
	Short: "Store an API key for openai, gemini or anthropic",
	Long: `Stores an API key in the config file. When the key is not given it is
read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSetKey,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Ping the configured AI providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configSetKeyCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func settingsApp(cmd *cobra.Command) (*App, error) {
	app, err := loadApp(cmd, Options{SettingsOnly: true})
	if err != nil {
		return nil, err
	}
	if app.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return app, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	app, err := settingsApp(cmd)
	if err != nil {
		return err
	}
	settings, err := app.Settings.Show()
	if err != nil {
		return err
	}

	cmd.Printf("# %s\n", app.Settings.Path())
	width := 0
	for _, s := range settings {
		width = max(width, len(s.Key))
	}
	for _, s := range settings {
		cmd.Printf("%-*s = %s\n", width, s.Key, s.Value)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	app, err := settingsApp(cmd)
	if err != nil {
		return err
	}
	if err := app.Settings.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	app, err := settingsApp(cmd)
	if err != nil {
		return err
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	key := ""
	if len(args) == 2 {
		key = args[1]
	} else {
		cmd.Printf("API key for %s: ", provider)
		key, err = readSecret(cmd)
		cmd.Println()
		if err != nil {
			return err
		}
	}

	if err := app.Settings.SetAPIKey(provider, key); err != nil {
		return err
	}
	cmd.Printf("Saved %s key to %s\n", provider, app.Settings.Path())
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command) (string, error) {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	app, err := settingsApp(cmd)
	if err != nil {
		return err
	}
	checks, err := app.Settings.Check(cmd.Context())
	if err != nil {
		return err
	}

	failed := 0
	for _, c := range checks {
		status := "ok"
		if c.Err != nil {
			status = c.Err.Error()
			failed++
		}
		cmd.Printf("%-9s %s/%s: %s\n", c.Role, c.Provider, c.Model, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d provider check(s) failed", failed)
	}
	return nil
}
