package cli

import (
	"github.com/spf13/cobra"
)

type credentials struct {
	Email    string
	Password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.Email, "email", "", "account email")
	cmd.Flags().StringVar(&c.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func newSignUpCommand(rt *runtime) *cobra.Command {
	creds := &credentials{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account; a confirmation code is sent by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resultErr(rt.app.Session.SignUp(cmd.Context(), creds.Email, creds.Password)); err != nil {
				return err
			}
			rt.printer(cmd).line("Check %s for your confirmation code, then run `dashctl confirm`.", creds.Email)
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newConfirmCommand(rt *runtime) *cobra.Command {
	var email, code string
	var resend bool
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the account with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resend {
				if err := rt.app.Session.Err(); err != nil {
					return err
				}
				if err := rt.app.Remote.ResendConfirmation(cmd.Context(), email); err != nil {
					return rt.fail("Resend failed", err)
				}
				rt.notify("Confirmation sent", "A new code was sent to "+email+".")
				return nil
			}
			if code == "" {
				return rt.fail("Confirmation failed", errMissingCode)
			}
			if err := resultErr(rt.app.Session.ConfirmSignUp(cmd.Context(), email, code)); err != nil {
				return err
			}
			return printIdentity(rt, cmd)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&code, "code", "", "confirmation code")
	cmd.Flags().BoolVar(&resend, "resend", false, "send a new confirmation code")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCommand(rt *runtime) *cobra.Command {
	creds := &credentials{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resultErr(rt.app.Session.SignIn(cmd.Context(), creds.Email, creds.Password)); err != nil {
				return err
			}
			return printIdentity(rt, cmd)
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt.app.Session.SignOut(cmd.Context())
			return nil
		},
	}
}

func newWhoAmICommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Session.Err(); err != nil {
				return err
			}
			return printIdentity(rt, cmd)
		},
	}
}

func printIdentity(rt *runtime, cmd *cobra.Command) error {
	p := rt.printer(cmd)
	id := rt.app.Session.CurrentIdentity()
	if p.json() {
		return p.emit(id)
	}
	if id == nil {
		p.line("not signed in")
		return nil
	}
	p.line("%s <%s> (%s)", id.Name(), id.Email, id.UserID)
	return nil
}
