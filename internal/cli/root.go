// Package cli defines Cobra command definitions for the chatdock CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/berth-dev/chatdock/internal/render"
	"github.com/berth-dev/chatdock/internal/tui"
	"github.com/berth-dev/chatdock/internal/tui/views"
)

var (
	debug      bool
	scopeFlag  string
	apiURLFlag string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "chatdock",
	Short: "Terminal client for the clinic chatbot",
	Long: `Chatdock talks to a chatbot backend over HTTP. It keeps one session
per scope in .chatdock/, renders replies with bold text and highlighted
emoji, and can run a local development backend with "chatdock serve".`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runChat,
}

// runChat launches the TUI when stdout is a terminal and a line-mode chat
// on stdin/stdout otherwise.
func runChat(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if !tui.IsTTY() {
		view := tui.NewLineView(cmd.OutOrStdout(), false)
		client := e.newClient(view, render.Plain)
		return tui.NewFallbackRunner(client, cmd.InOrStdin()).Run(cmd.Context())
	}

	view := views.NewProgramView()
	client := e.newClient(view, render.Terminal)
	model := views.NewChatModel(client, e.cfg.Scope, 80, 24)

	p := tui.NewProgram(model)
	view.Attach(p.Send)
	return tui.Run(p)
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to .chatdock/debug.log")
	rootCmd.PersistentFlags().StringVar(&scopeFlag, "scope", "", "Session scope (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Chatbot backend base URL (overrides config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(serveCmd)
}
