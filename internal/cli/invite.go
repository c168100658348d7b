package cli

import (
	"github.com/spf13/cobra"
)

func newInviteCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Manage team invitations",
	}
	cmd.AddCommand(newInviteSendCommand(rt))
	cmd.AddCommand(newInviteAcceptCommand(rt))
	cmd.AddCommand(newInviteCancelCommand(rt))
	cmd.AddCommand(newInviteResendCommand(rt))
	cmd.AddCommand(newInviteListCommand(rt))
	return cmd
}

func newInviteSendCommand(rt *runtime) *cobra.Command {
	var role, message string
	cmd := &cobra.Command{
		Use:   "send <email>",
		Short: "Invite someone to your team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/team"); err != nil {
				return err
			}
			if _, err := rt.app.Remote.SendInvitation(cmd.Context(), args[0], role, message); err != nil {
				return rt.fail("Failed to send invitation", err)
			}
			rt.notify("Invitation sent", "Invitation sent to "+args[0]+".")
			return listSent(rt, cmd)
		},
	}
	cmd.Flags().StringVar(&role, "role", "viewer", "member role (admin|manager|developer|viewer)")
	cmd.Flags().StringVar(&message, "message", "", "personal note included in the invitation")
	return cmd
}

func newInviteAcceptCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <invitation-id>",
		Short: "Accept an invitation addressed to you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/team"); err != nil {
				return err
			}
			if _, err := rt.app.Remote.AcceptInvitation(cmd.Context(), args[0]); err != nil {
				return rt.fail("Failed to accept invitation", err)
			}
			rt.notify("Invitation accepted", "You have joined the team.")
			return renderTeam(rt, cmd)
		},
	}
}

func newInviteCancelCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <invitation-id>",
		Short: "Cancel a pending invitation you sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/team"); err != nil {
				return err
			}
			if err := rt.app.Remote.CancelInvitation(cmd.Context(), args[0]); err != nil {
				return rt.fail("Failed to cancel invitation", err)
			}
			rt.notify("Invitation cancelled", "")
			return listSent(rt, cmd)
		},
	}
}

func newInviteResendCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "resend <invitation-id>",
		Short: "Bump a pending invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/team"); err != nil {
				return err
			}
			if err := rt.app.Remote.ResendInvitation(cmd.Context(), args[0]); err != nil {
				return rt.fail("Failed to resend invitation", err)
			}
			rt.notify("Invitation resent", "")
			return listSent(rt, cmd)
		},
	}
}

func newInviteListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members and pending invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.require("/team"); err != nil {
				return err
			}
			return renderTeam(rt, cmd)
		},
	}
}

func listSent(rt *runtime, cmd *cobra.Command) error {
	sent, err := rt.app.Remote.SentInvitations(cmd.Context())
	if err != nil {
		return rt.fail("Failed to load invitations", err)
	}
	p := rt.printer(cmd)
	p.heading("Pending invitations you sent")
	return p.invitations(sent)
}
