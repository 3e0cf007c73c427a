// clean.go implements the "chatdock clean" command for pruning old sessions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old sessions",
	Long: `Remove reset sessions and their transcripts from the session store.

By default, removes sessions older than the configured max_age_days (default 30).
Active sessions are never removed.
Use --dry-run to preview what would be removed.`,
	RunE: runClean,
}

var (
	maxAgeFlag int
	dryRunFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&maxAgeFlag, "max-age", 0, "Remove sessions older than N days (0 = use config)")
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	db, err := e.requireDB()
	if err != nil {
		return err
	}

	maxAge := maxAgeFlag
	if maxAge <= 0 {
		maxAge = e.cfg.Cleanup.MaxAgeDays
	}
	if maxAge <= 0 {
		maxAge = 30
	}

	pruned, err := db.PruneOlderThan(maxAge, dryRunFlag)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(pruned) == 0 {
		fmt.Fprintln(out, "No sessions to clean up.")
		return nil
	}

	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}

	for _, id := range pruned {
		fmt.Fprintf(out, "  %s %s\n", verb, id)
	}
	fmt.Fprintf(out, "%s %d session(s).\n", verb, len(pruned))

	return nil
}
