package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newMessageCommand(rt *runtime) *cobra.Command {
	var teamID string
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Team chat",
	}
	cmd.PersistentFlags().StringVar(&teamID, "team", "", "team id (defaults to the first membership)")

	post := &cobra.Command{
		Use:   "post <text>",
		Short: "Post a message to the team",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/messages"); err != nil {
				return err
			}
			team, err := resolveTeam(rt, cmd, teamID)
			if err != nil {
				return err
			}
			if team == "" {
				rt.printer(cmd).line("No team yet. Invite someone with `dashctl invite send <email>`.")
				return nil
			}
			if _, err := rt.app.Remote.PostMessage(cmd.Context(), team, strings.Join(args, " ")); err != nil {
				return rt.fail("Failed to send message", err)
			}
			return renderMessages(rt, cmd, team)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show recent team messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/messages"); err != nil {
				return err
			}
			return renderMessages(rt, cmd, teamID)
		},
	}

	cmd.AddCommand(post, list)
	return cmd
}
