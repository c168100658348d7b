package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"progresshub/internal/client"
	"progresshub/internal/domain"
	"progresshub/internal/guard"
	"progresshub/internal/session"
)

var ErrNotSignedIn = errors.New("not signed in: run `dashctl login` first")

// Remote es la parte del SDK que usan los comandos.
type Remote interface {
	ResendConfirmation(ctx context.Context, email string) error

	Memberships(ctx context.Context) ([]domain.TeamMembership, error)
	ReceivedInvitations(ctx context.Context) ([]domain.TeamInvitation, error)
	SentInvitations(ctx context.Context) ([]domain.TeamInvitation, error)
	SendInvitation(ctx context.Context, email, role, message string) (domain.TeamInvitation, error)
	AcceptInvitation(ctx context.Context, id string) (domain.TeamMembership, error)
	CancelInvitation(ctx context.Context, id string) error
	ResendInvitation(ctx context.Context, id string) error

	Messages(ctx context.Context, teamID string) ([]domain.Message, error)
	PostMessage(ctx context.Context, teamID, content string) (domain.Message, error)

	Projects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, in client.NewProject) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch client.ProjectPatch) (domain.Project, error)
	Documents(ctx context.Context) ([]domain.Document, error)
	ProjectDocuments(ctx context.Context, projectID string) ([]domain.Document, error)
	CreateDocument(ctx context.Context, in client.NewDocument) (domain.Document, error)
	Activities(ctx context.Context, limit int) ([]domain.Activity, error)
	ReportSummary(ctx context.Context) (domain.ReportSummary, error)

	TaskBoard(ctx context.Context, projectID string) (domain.TaskBoard, error)
	CreateTask(ctx context.Context, projectID string, in client.NewTask) (domain.Task, error)
	MoveTask(ctx context.Context, id, status string) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// App agrupa las dependencias de una ejecucion de dashctl.
type App struct {
	Session  *session.Store
	Remote   Remote
	Notifier session.Notifier
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string
}

var ValidFormats = []string{"text", "json"}

// AppFactory construye la App una vez parseadas las flags globales.
type AppFactory func(opts *RootOptions) (*App, error)

type runtime struct {
	opts  *RootOptions
	app   *App
	guard *guard.Guard
}

func NewRootCommand(factory AppFactory) *cobra.Command {
	rt := &runtime{opts: &RootOptions{}}

	cmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "ProgressHub dashboard client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(rt.opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", rt.opts.Format, ValidFormats)
			}
			app, err := factory(rt.opts)
			if err != nil {
				return err
			}
			if app.Notifier == nil {
				app.Notifier = session.NotifierFunc(func(session.Notification) {})
			}
			rt.app = app
			rt.guard = guard.New(app.Session)
			if err := app.Session.Init(cmd.Context()); err != nil && !errors.Is(err, session.ErrNotConfigured) {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&rt.opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().StringVar(&rt.opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSignUpCommand(rt))
	cmd.AddCommand(newConfirmCommand(rt))
	cmd.AddCommand(newLoginCommand(rt))
	cmd.AddCommand(newLogoutCommand(rt))
	cmd.AddCommand(newWhoAmICommand(rt))
	cmd.AddCommand(newOpenCommand(rt))
	cmd.AddCommand(newInviteCommand(rt))
	cmd.AddCommand(newProjectCommand(rt))
	cmd.AddCommand(newDocumentCommand(rt))
	cmd.AddCommand(newTaskCommand(rt))
	cmd.AddCommand(newMessageCommand(rt))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// require pasa la navegacion por el guard antes de tocar datos protegidos.
func (rt *runtime) require(path string) error {
	d := rt.guard.Resolve(path)
	switch d.Outcome {
	case guard.Render:
		return nil
	case guard.Misconfigured:
		return rt.app.Session.Err()
	case guard.Redirect:
		return ErrNotSignedIn
	case guard.NotFound:
		return fmt.Errorf("unknown page %q", path)
	}
	return errors.New("session still loading")
}

// reportedError ya se mostro al usuario como notificacion.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported indica si err ya fue notificado y no hace falta imprimirlo de nuevo.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// fail avisa al usuario con el mensaje remoto y lo devuelve como error.
func (rt *runtime) fail(title string, err error) error {
	rt.app.Notifier.Notify(session.Notification{
		Title:       title,
		Description: err.Error(),
		Variant:     session.VariantDestructive,
	})
	return &reportedError{err: err}
}

func (rt *runtime) notify(title, description string) {
	rt.app.Notifier.Notify(session.Notification{Title: title, Description: description, Variant: session.VariantDefault})
}

func (rt *runtime) printer(cmd *cobra.Command) *printer {
	return &printer{format: rt.opts.Format, w: cmd.OutOrStdout()}
}

// resultErr convierte un Result fallido; el store ya lo notifico.
func resultErr(res session.Result) error {
	if res.Success {
		return nil
	}
	return &reportedError{err: errors.New(res.Error)}
}
