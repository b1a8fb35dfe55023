package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"apivault/internal/assets"
	"apivault/internal/services"
)

// promptConfirmer asks on the terminal.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, _ string, message string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// requireSession fails with ErrSessionNotFound unless id is stored. It runs
// before the chat service initialises, which would otherwise create a first
// session on an empty store.
func (c *cli) requireSession(cmd *cobra.Command, id string) error {
	sessions, err := c.store.GetSessions(c.ctx(cmd))
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if s.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", services.ErrSessionNotFound, id)
}

func (c *cli) chatService(cmd *cobra.Command, confirmer services.Confirmer) (*services.ChatService, services.ChatState, error) {
	svc, err := services.NewServices(services.Deps{
		Store:        c.store,
		Legacy:       c.local,
		ProviderData: assets.ProvidersData,
		Confirmer:    confirmer,
		Logger:       c.log,
	})
	if err != nil {
		return nil, services.ChatState{}, err
	}
	svc.Startup(c.ctx(cmd))
	state, err := svc.Chat.Init()
	if err != nil {
		return nil, state, err
	}
	return svc.Chat, state, nil
}

func (c *cli) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and delete chat sessions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List chat sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.store.GetSessions(c.ctx(cmd))
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, sessions)
			}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					s.ID,
					s.Title,
					strconv.Itoa(len(s.Messages)),
					time.UnixMilli(s.UpdatedAt).Format(time.DateTime),
				})
			}
			return printTable(c.out, []string{"ID", "TITLE", "MESSAGES", "UPDATED"}, rows)
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirmer services.Confirmer = promptConfirmer{in: c.in, out: c.out}
			if yes {
				confirmer = services.AutoConfirm(true)
			}
			if err := c.requireSession(cmd, args[0]); err != nil {
				return err
			}
			chat, _, err := c.chatService(cmd, confirmer)
			if err != nil {
				return err
			}
			state, err := chat.DeleteSession(args[0])
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, state.Sessions)
			}
			_, err = fmt.Fprintf(c.out, "%d session(s) remain\n", len(state.Sessions))
			return err
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(list, del)
	return cmd
}
