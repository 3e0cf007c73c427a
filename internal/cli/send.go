// send.go implements the one-shot "chatdock send" and "chatdock reset" commands.
package cli

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/berth-dev/chatdock/internal/chatbot"
	"github.com/berth-dev/chatdock/internal/render"
	"github.com/berth-dev/chatdock/internal/tui"
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Long: `Send a single message in the current scope's session and print the
exchange. A new session is created, and greeted, if none exists yet.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new conversation",
	Long: `Drop the backend conversation for the current session, replace the
session id and print the new opening message.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

// mutedView forwards to a View unless muted.
type mutedView struct {
	chatbot.View
	muted atomic.Bool
}

func (v *mutedView) AppendMessage(m render.Rendered) {
	if !v.muted.Load() {
		v.View.AppendMessage(m)
	}
}

func (v *mutedView) ClearMessages() {
	if !v.muted.Load() {
		v.View.ClearMessages()
	}
}

func (v *mutedView) SetBusy(busy bool) {
	if !v.muted.Load() {
		v.View.SetBusy(busy)
	}
}

// openQuiet builds a client whose initialization output is hidden.
func openQuiet(cmd *cobra.Command, e *env) (*chatbot.Client, error) {
	view := &mutedView{View: tui.NewLineView(cmd.OutOrStdout(), false)}
	client := e.newClient(view, render.Plain)

	view.muted.Store(true)
	err := client.Initialize(cmd.Context())
	view.muted.Store(false)
	if err != nil {
		return nil, fmt.Errorf("initializing chat: %w", err)
	}
	return client, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return fmt.Errorf("message is empty")
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := openQuiet(cmd, e)
	if err != nil {
		return err
	}

	client.SendMessage(cmd.Context(), message)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := openQuiet(cmd, e)
	if err != nil {
		return err
	}

	previous := client.SessionID()
	if err := client.ResetConversation(cmd.Context()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Session %s replaced by %s\n", previous, client.SessionID())
	return nil
}
