// init.go implements the "chatdock init" command with optional --guided flag.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/berth-dev/chatdock/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize chatdock in the current directory",
	Long: `Create the .chatdock/ directory with a default config.yaml and make sure
the runtime files (session database, event log, .env) are gitignored.`,
	RunE: runInit,
}

var guidedFlag bool

func init() {
	initCmd.Flags().BoolVar(&guidedFlag, "guided", false, "Interactive prompts for configuration overrides")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	stateDir := filepath.Join(dir, ".chatdock")
	if info, statErr := os.Stat(stateDir); statErr == nil && info.IsDir() {
		fmt.Fprintln(out, "Warning: .chatdock/ directory already exists.")
		fmt.Fprint(out, "Reinitialize? [y/N]: ")
		answer, _ := in.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := ensureGitignore(dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set up .gitignore: %v\n", err)
	}

	cfg := config.DefaultConfig()
	if guidedFlag {
		guidedOverrides(in, out, cfg)
	}

	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Chatdock initialized")
	fmt.Fprintf(out, "  API URL: %s\n", cfg.APIURL)
	fmt.Fprintf(out, "  Scope:   %s\n", cfg.Scope)
	fmt.Fprintln(out, "Configuration written to .chatdock/config.yaml")
	fmt.Fprintln(out, "Start chatting: chatdock (or run a local backend first: chatdock serve)")
	return nil
}

// guidedOverrides prompts for the settings users most often change.
func guidedOverrides(in *bufio.Reader, out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "--- Guided Configuration ---")

	prompt := func(label string, value *string) {
		fmt.Fprintf(out, "%s [%s]: ", label, *value)
		if answer, err := in.ReadString('\n'); err == nil {
			if answer = strings.TrimSpace(answer); answer != "" {
				*value = answer
			}
		}
	}

	prompt("API URL", &cfg.APIURL)
	prompt("Greeting", &cfg.Greeting)
	prompt("Scope", &cfg.Scope)
	prompt("Clinic name (serve)", &cfg.Server.ClinicName)

	fmt.Fprintln(out, "--- End Guided Configuration ---")
}

// ensureGitignore creates or appends to .gitignore with the runtime files
// that should never be committed. Entries already present are skipped.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	// config.yaml IS committed.
	requiredEntries := []string{
		".env",
		".chatdock/chatdock.db",
		".chatdock/log.jsonl",
		".chatdock/debug.log",
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by chatdock init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
