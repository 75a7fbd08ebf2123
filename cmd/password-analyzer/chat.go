package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/model"
)

func (c *cli) newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Simulated secure chat",
	}

	cmd.AddCommand(c.newChatSendCmd())
	cmd.AddCommand(c.newChatHistoryCmd())

	return cmd
}

func printMessage(cmd *cobra.Command, m model.Message) {
	who := m.SenderName
	if m.IsCurrentUser {
		who = "You"
	}
	cmd.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(time.Kitchen), who, m.Content)
}

func (c *cli) newChatSendCmd() *cobra.Command {
	var channel string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "send MESSAGE...",
		Short: "Send a message and wait for the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := c.app.Session.RequireUser(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Sending (end-to-end encrypted)...")
			msgs, err := c.app.Chat.Send(cmd.Context(), me, model.Channel(channel), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, msgs)
			}
			for _, m := range msgs {
				printMessage(cmd, m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", string(model.ChannelGeneral), "general, support or security")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (c *cli) newChatHistoryCmd() *cobra.Command {
	var channel string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent messages of a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Session.RequireUser(cmd.Context())
			if err != nil {
				return err
			}

			msgs, err := c.app.Chat.History(cmd.Context(), me, model.Channel(channel), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, msgs)
			}
			if len(msgs) == 0 {
				cmd.Printf("No messages in #%s yet.\n", channel)
				return nil
			}
			for _, m := range msgs {
				printMessage(cmd, m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", string(model.ChannelGeneral), "general, support or security")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of messages")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
