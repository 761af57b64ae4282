package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/page-harvest/harvest/internal/intent"
	"github.com/page-harvest/harvest/internal/ui"
)

// authCmd groups credential management subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the OpenAI API key used for prompt analysis",
	Long: `Auth stores the OpenAI API key in the system keyring. When a key is
available (keyring or the HARVEST_OPENAI_API_KEY / OPENAI_API_KEY environment
variables), planning is augmented with a language model pass; without one the
built-in heuristics run alone.`,
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store an API key in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthSetKey,
}

var authClearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runAuthClearKey,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authClearKeyCmd)
}

func runAuthSetKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Fprint(os.Stderr, "API key: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if err := intent.StoreAPIKey(key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Fprintf(os.Stderr, "%s API key stored in keyring (%s)\n", ui.Success("✓"), intent.KeyringService)
	return nil
}

func runAuthClearKey(cmd *cobra.Command, args []string) error {
	if err := intent.ClearAPIKey(); err != nil {
		return fmt.Errorf("failed to clear API key: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s API key removed\n", ui.Success("✓"))
	return nil
}
