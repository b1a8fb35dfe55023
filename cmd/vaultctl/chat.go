package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"apivault/internal/models"
	"apivault/internal/services"
)

func (c *cli) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the configured model",
	}

	var (
		sessionID string
		newChat   bool
	)
	send := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send one message and print the reply",
		Long: `Send appends the message to the most recent session (or --session, or a
new one with --new), waits for the provider and prints the reply. The
exchange is saved like it is in the app.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID != "" && !newChat {
				if err := c.requireSession(cmd, sessionID); err != nil {
					return err
				}
			}
			chat, initial, err := c.chatService(cmd, services.AutoConfirm(false))
			if err != nil {
				return err
			}
			switch {
			case newChat:
				// An empty active session (fresh store) already is a new chat.
				if len(initial.Messages) == 0 {
					break
				}
				if _, err := chat.NewChat(); err != nil {
					return err
				}
			case sessionID != "":
				if _, err := chat.LoadSession(sessionID); err != nil {
					return err
				}
			}

			state, err := chat.Send(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, state)
			}
			if n := len(state.Messages); n > 0 && state.Messages[n-1].Role == models.RoleAssistant {
				_, err = fmt.Fprintln(c.out, state.Messages[n-1].Content)
			}
			return err
		},
	}
	send.Flags().StringVar(&sessionID, "session", "", "session id to continue")
	send.Flags().BoolVar(&newChat, "new", false, "start a new session")

	cmd.AddCommand(send)
	return cmd
}
