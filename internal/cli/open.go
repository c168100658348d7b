package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"progresshub/internal/guard"
)

var errMissingCode = errors.New("confirmation code is required")

const dashboardActivityLimit = 10

func newOpenCommand(rt *runtime) *cobra.Command {
	var teamID string
	cmd := &cobra.Command{
		Use:   "open [route]",
		Short: "Render a dashboard page",
		Long: `Render a dashboard page. Protected pages redirect to /auth when nobody is signed in.

Routes: /auth, /, /team, /projects, /documents, /messages, /reports`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			return openPage(rt, cmd, path, teamID)
		},
	}
	cmd.Flags().StringVar(&teamID, "team", "", "team for the messages page (defaults to the first membership)")
	return cmd
}

func openPage(rt *runtime, cmd *cobra.Command, path, teamID string) error {
	p := rt.printer(cmd)
	d := rt.guard.Resolve(path)
	switch d.Outcome {
	case guard.Placeholder:
		p.line("Loading...")
		return nil
	case guard.Misconfigured:
		p.line("ProgressHub is not configured.")
		p.line("Set PROGRESSHUB_URL and PROGRESSHUB_ANON_KEY and try again.")
		return rt.app.Session.Err()
	case guard.NotFound:
		return fmt.Errorf("unknown page %q", path)
	case guard.Redirect:
		p.line("Redirecting to %s", d.Location)
		return renderLogin(rt, cmd)
	}

	ctx := cmd.Context()
	switch d.Route.Path {
	case guard.LoginPath:
		return renderLogin(rt, cmd)
	case "/":
		p.heading("Dashboard")
		acts, err := rt.app.Remote.Activities(ctx, dashboardActivityLimit)
		if err != nil {
			return rt.fail("Failed to load activity", err)
		}
		return p.activities(acts)
	case "/team":
		return renderTeam(rt, cmd)
	case "/projects":
		p.heading("Projects")
		projects, err := rt.app.Remote.Projects(ctx)
		if err != nil {
			return rt.fail("Failed to load projects", err)
		}
		return p.projects(projects)
	case "/documents":
		p.heading("Documents")
		docs, err := rt.app.Remote.Documents(ctx)
		if err != nil {
			return rt.fail("Failed to load documents", err)
		}
		return p.documents(docs)
	case "/messages":
		return renderMessages(rt, cmd, teamID)
	case "/reports":
		p.heading("Reports")
		summary, err := rt.app.Remote.ReportSummary(ctx)
		if err != nil {
			return rt.fail("Failed to load reports", err)
		}
		return p.summary(summary)
	}
	return fmt.Errorf("unknown page %q", path)
}

func renderLogin(rt *runtime, cmd *cobra.Command) error {
	p := rt.printer(cmd)
	if id := rt.app.Session.CurrentIdentity(); id != nil {
		p.line("Signed in as %s", id.Email)
		return nil
	}
	p.line("Sign in with: dashctl login --email <email> --password <password>")
	p.line("New here? dashctl signup --email <email> --password <password>")
	return nil
}

func renderTeam(rt *runtime, cmd *cobra.Command) error {
	ctx := cmd.Context()
	p := rt.printer(cmd)

	memberships, err := rt.app.Remote.Memberships(ctx)
	if err != nil {
		return rt.fail("Failed to load team", err)
	}
	received, err := rt.app.Remote.ReceivedInvitations(ctx)
	if err != nil {
		return rt.fail("Failed to load invitations", err)
	}
	sent, err := rt.app.Remote.SentInvitations(ctx)
	if err != nil {
		return rt.fail("Failed to load invitations", err)
	}

	if p.json() {
		return p.emit(map[string]any{"memberships": memberships, "received": received, "sent": sent})
	}
	p.heading("Team members")
	if err := p.memberships(memberships); err != nil {
		return err
	}
	p.heading("Invitations for you")
	if err := p.invitations(received); err != nil {
		return err
	}
	p.heading("Pending invitations you sent")
	return p.invitations(sent)
}

func renderMessages(rt *runtime, cmd *cobra.Command, teamID string) error {
	p := rt.printer(cmd)
	teamID, err := resolveTeam(rt, cmd, teamID)
	if err != nil {
		return err
	}
	if teamID == "" {
		p.line("No team yet. Invite someone with `dashctl invite send <email>`.")
		return nil
	}
	msgs, err := rt.app.Remote.Messages(cmd.Context(), teamID)
	if err != nil {
		return rt.fail("Failed to load messages", err)
	}
	p.heading("Messages")
	return p.messages(msgs)
}

// resolveTeam usa la primera membresia cuando no se indica equipo.
func resolveTeam(rt *runtime, cmd *cobra.Command, teamID string) (string, error) {
	if teamID != "" {
		return teamID, nil
	}
	memberships, err := rt.app.Remote.Memberships(cmd.Context())
	if err != nil {
		return "", rt.fail("Failed to load team", err)
	}
	if len(memberships) == 0 {
		return "", nil
	}
	return memberships[0].TeamID, nil
}
