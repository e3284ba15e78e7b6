package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/stubro/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
	Long: `Store, remove or inspect the Gemini API key used by the AI level
designer. The key is kept in the system keyring, or in ~/.stubro/secrets.json
when no keyring is available.

The key is looked up in this order:
  1. --api-key flag
  2. $GEMINI_API_KEY
  3. Stored key`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key (prompts when omitted)",
	Args:  cobra.MaximumNArgs(1),
	Run:   runKeySet,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	Run:   runKeyClear,
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key comes from",
	Args:  cobra.NoArgs,
	Run:   runKeyStatus,
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyClearCmd, keyStatusCmd)
}

func runKeySet(_ *cobra.Command, args []string) {
	var value string
	if len(args) == 1 {
		value = args[0]
	} else {
		var err error
		if value, err = promptKey(); err != nil {
			fatal("%v", err)
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		fatal("empty API key")
	}
	if err := keyStore().SetAPIKey(value); err != nil {
		fatal("%v", err)
	}
	fmt.Println("API key stored.")
}

// promptKey reads the key without echo when stdin is a terminal.
func promptKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read API key: %w", err)
		}
		return line, nil
	}

	fmt.Fprint(os.Stderr, "Gemini API key: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return string(b), nil
}

func runKeyClear(_ *cobra.Command, _ []string) {
	if err := keyStore().DeleteAPIKey(); err != nil {
		fatal("%v", err)
	}
	fmt.Println("API key removed.")
}

func runKeyStatus(_ *cobra.Command, _ []string) {
	key, source := secrets.ResolveAPIKey("", apiKeyEnv, keyStore())
	if key == "" {
		fmt.Println("No API key configured. Run 'stubro key set' or export " + apiKeyEnv + ".")
		return
	}
	fmt.Printf("API key: %s (from %s)\n", mask(key), source)
}

// mask hides all but the last four characters.
func mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
