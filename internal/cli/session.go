// session.go implements "chatdock session" and "chatdock sessions".
package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/berth-dev/chatdock/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session [id]",
	Short: "Show a session and its transcript",
	Long: `Show the active session of the current scope, or the session with the
given id, followed by its recorded messages.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSession,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var limitFlag int

func init() {
	sessionsCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of sessions to list")
}

func runSession(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	db, err := e.requireDB()
	if err != nil {
		return err
	}

	var sess *session.Session
	if len(args) == 1 {
		sess, err = db.GetSession(args[0])
	} else {
		sess, err = db.GetActive(e.cfg.Scope)
	}
	if err != nil {
		return err
	}
	if sess == nil {
		return errors.New("no session found; start one with: chatdock")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session: %s\n", sess.ID)
	fmt.Fprintf(out, "Scope:   %s\n", sess.Scope)
	fmt.Fprintf(out, "Status:  %s\n", sess.Status)
	fmt.Fprintf(out, "Updated: %s\n", sess.UpdatedAt.Local().Format("2006-01-02 15:04"))

	messages, err := db.GetMessages(sess.ID)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	for _, m := range messages {
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), m.Role, m.Content)
	}
	return nil
}

func runSessions(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	db, err := e.requireDB()
	if err != nil {
		return err
	}

	summaries, err := db.ListSessions(limitFlag)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet.")
		return nil
	}

	return printSummaries(cmd.OutOrStdout(), summaries)
}

func printSummaries(w io.Writer, summaries []session.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCOPE\tSTATUS\tMESSAGES\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Scope, s.Status, s.Messages, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
