package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progresshub/internal/client"
	"progresshub/internal/domain"
	"progresshub/internal/session"
)

type fakeBackend struct {
	signInErr error
}

func (b *fakeBackend) session() domain.AuthSession {
	return domain.AuthSession{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         domain.Identity{UserID: "u1", Email: "alice@example.com", DisplayName: "Alice"},
	}
}

func (b *fakeBackend) SignUp(context.Context, string, string, string) (domain.User, error) {
	return domain.User{ID: "u1", Email: "alice@example.com"}, nil
}

func (b *fakeBackend) ConfirmSignUp(context.Context, string, string) (domain.AuthSession, error) {
	return b.session(), nil
}

func (b *fakeBackend) SignIn(context.Context, string, string) (domain.AuthSession, error) {
	if b.signInErr != nil {
		return domain.AuthSession{}, b.signInErr
	}
	return b.session(), nil
}

func (b *fakeBackend) Refresh(context.Context, string) (domain.AuthSession, error) {
	return b.session(), nil
}

func (b *fakeBackend) SignOut(context.Context, string) error { return nil }

func (b *fakeBackend) GetUser(context.Context, string) (domain.Identity, error) {
	return b.session().User, nil
}

type memPersister struct{ saved *domain.AuthSession }

func (m *memPersister) Load() (*domain.AuthSession, error) { return m.saved, nil }
func (m *memPersister) Save(s domain.AuthSession) error    { m.saved = &s; return nil }
func (m *memPersister) Clear() error                       { m.saved = nil; return nil }

// fakeRemote guarda el estado como lo haria el backend; los listados se
// derivan siempre de aqui.
type fakeRemote struct {
	sent        []domain.TeamInvitation
	received    []domain.TeamInvitation
	memberships []domain.TeamMembership
	projects    []domain.Project
	documents   []domain.Document
	messages    []domain.Message
	tasks       []domain.Task
	sendErr     error
	resent      []string
	listCalls   int
}

func (f *fakeRemote) ResendConfirmation(context.Context, string) error { return nil }

func (f *fakeRemote) Memberships(context.Context) ([]domain.TeamMembership, error) {
	return f.memberships, nil
}

func (f *fakeRemote) ReceivedInvitations(context.Context) ([]domain.TeamInvitation, error) {
	return f.received, nil
}

func (f *fakeRemote) SentInvitations(context.Context) ([]domain.TeamInvitation, error) {
	f.listCalls++
	var out []domain.TeamInvitation
	for _, inv := range f.sent {
		if inv.Status == domain.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeRemote) SendInvitation(_ context.Context, email, role, message string) (domain.TeamInvitation, error) {
	if f.sendErr != nil {
		return domain.TeamInvitation{}, f.sendErr
	}
	inv := domain.TeamInvitation{ID: "inv-" + email, Email: email, Role: role, Message: message, Status: domain.InvitationPending}
	f.sent = append(f.sent, inv)
	return inv, nil
}

func (f *fakeRemote) AcceptInvitation(_ context.Context, id string) (domain.TeamMembership, error) {
	for i, inv := range f.received {
		if inv.ID == id {
			f.received = append(f.received[:i], f.received[i+1:]...)
			m := domain.TeamMembership{TeamID: inv.TeamID, UserID: "u1", Email: inv.Email, Role: inv.Role}
			f.memberships = append(f.memberships, m)
			return m, nil
		}
	}
	return domain.TeamMembership{}, &client.APIError{Status: http.StatusNotFound, Message: "invitation not found"}
}

func (f *fakeRemote) CancelInvitation(_ context.Context, id string) error {
	for i := range f.sent {
		if f.sent[i].ID == id {
			f.sent[i].Status = domain.InvitationCancelled
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Message: "invitation not found"}
}

func (f *fakeRemote) ResendInvitation(_ context.Context, id string) error {
	f.resent = append(f.resent, id)
	return nil
}

func (f *fakeRemote) Messages(_ context.Context, teamID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRemote) PostMessage(_ context.Context, teamID, content string) (domain.Message, error) {
	m := domain.Message{ID: "m", TeamID: teamID, UserID: "u1", Content: content, CreatedAt: time.Now()}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeRemote) Projects(context.Context) ([]domain.Project, error) { return f.projects, nil }

func (f *fakeRemote) CreateProject(_ context.Context, in client.NewProject) (domain.Project, error) {
	p := domain.Project{ID: "p" + in.Name, Name: in.Name, Progress: in.Progress, DueDate: in.DueDate}
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeRemote) UpdateProject(_ context.Context, id string, patch client.ProjectPatch) (domain.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			if patch.Progress != nil {
				f.projects[i].Progress = *patch.Progress
			}
			return f.projects[i], nil
		}
	}
	return domain.Project{}, &client.APIError{Status: http.StatusNotFound, Message: "project not found"}
}

func (f *fakeRemote) Documents(context.Context) ([]domain.Document, error) { return f.documents, nil }

func (f *fakeRemote) ProjectDocuments(_ context.Context, projectID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range f.documents {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRemote) CreateDocument(_ context.Context, in client.NewDocument) (domain.Document, error) {
	d := domain.Document{ID: "d" + in.Title, ProjectID: in.ProjectID, Title: in.Title, Type: in.Type}
	f.documents = append(f.documents, d)
	return d, nil
}

func (f *fakeRemote) Activities(context.Context, int) ([]domain.Activity, error) {
	return []domain.Activity{{Action: "created project Apollo", Timestamp: time.Now()}}, nil
}

func (f *fakeRemote) ReportSummary(context.Context) (domain.ReportSummary, error) {
	return domain.ReportSummary{ProjectCount: len(f.projects), DocumentsByType: map[string]int{"doc": 1}}, nil
}

type harness struct {
	backend   *fakeBackend
	remote    *fakeRemote
	persister *memPersister
	stderr    *bytes.Buffer
}

func newHarness() *harness {
	return &harness{
		backend:   &fakeBackend{},
		remote:    &fakeRemote{},
		persister: &memPersister{},
		stderr:    &bytes.Buffer{},
	}
}

// run ejecuta dashctl con una App nueva por invocacion, como el binario real.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	notifier := session.WriterNotifier{W: h.stderr}
	factory := func(opts *RootOptions) (*App, error) {
		store := session.New(h.backend, session.WithPersister(h.persister), session.WithNotifier(notifier))
		return &App{Session: store, Remote: h.remote, Notifier: notifier}, nil
	}
	out := &bytes.Buffer{}
	cmd := NewRootCommand(factory)
	cmd.SetOut(out)
	cmd.SetErr(h.stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.run(t, "login", "--email", "alice@example.com", "--password", "secret123")
	require.NoError(t, err)
}

func TestLoginWhoAmILogout(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not signed in")

	h.login(t)
	assert.Contains(t, h.stderr.String(), "Logged in successfully: Welcome back!")

	out, err = h.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice <alice@example.com>")

	_, err = h.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, h.stderr.String(), "Logged out: You have been logged out successfully.")

	out, err = h.run(t, "open", "/projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Redirecting to /auth")
}

func TestLoginFailureReportsRemoteMessage(t *testing.T) {
	h := newHarness()
	h.backend.signInErr = &client.APIError{Status: http.StatusUnauthorized, Message: "invalid login credentials"}

	_, err := h.run(t, "login", "--email", "alice@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "invalid login credentials", err.Error())
	assert.Contains(t, h.stderr.String(), "error: Login failed: invalid login credentials")
	assert.Nil(t, h.persister.saved)
}

func TestSignUpAndConfirm(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "signup", "--email", "alice@example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "dashctl confirm")
	assert.Contains(t, h.stderr.String(), "Sign up successful")

	_, err = h.run(t, "confirm", "--email", "alice@example.com")
	assert.ErrorIs(t, err, errMissingCode)

	out, err = h.run(t, "confirm", "--email", "alice@example.com", "--code", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")
	require.NotNil(t, h.persister.saved)
}

func TestProtectedCommandsRequireSignIn(t *testing.T) {
	h := newHarness()
	for _, args := range [][]string{
		{"invite", "list"},
		{"project", "list"},
		{"document", "list"},
		{"message", "list"},
	} {
		_, err := h.run(t, args...)
		assert.ErrorIs(t, err, ErrNotSignedIn, strings.Join(args, " "))
	}
}

func TestMisconfiguredStore(t *testing.T) {
	factory := func(opts *RootOptions) (*App, error) {
		return &App{Session: session.New(nil), Remote: &fakeRemote{}}, nil
	}
	out := &bytes.Buffer{}
	cmd := NewRootCommand(factory)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"open", "/"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, session.ErrNotConfigured)
	assert.Contains(t, out.String(), "not configured")
}

func TestInviteSendCancelRefetches(t *testing.T) {
	h := newHarness()
	h.login(t)

	out, err := h.run(t, "invite", "send", "bob@example.com", "--role", "developer")
	require.NoError(t, err)
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "developer")
	assert.Contains(t, h.stderr.String(), "Invitation sent")

	out, err = h.run(t, "invite", "cancel", "inv-bob@example.com")
	require.NoError(t, err)
	assert.NotContains(t, out, "bob@example.com")
	assert.Contains(t, out, "(none)")
	assert.Equal(t, 2, h.remote.listCalls)

	_, err = h.run(t, "invite", "resend", "inv-bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"inv-bob@example.com"}, h.remote.resent)
}

func TestInviteSendFailureNotifies(t *testing.T) {
	h := newHarness()
	h.login(t)
	h.remote.sendErr = &client.APIError{Status: http.StatusConflict, Message: "a pending invitation already exists for this email"}

	_, err := h.run(t, "invite", "send", "bob@example.com")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "error: Failed to send invitation: a pending invitation already exists for this email")
	assert.Zero(t, h.remote.listCalls)
}

func TestInviteAcceptShowsTeam(t *testing.T) {
	h := newHarness()
	h.login(t)
	h.remote.received = []domain.TeamInvitation{{ID: "inv1", TeamID: "team-1", Email: "alice@example.com", Role: "viewer", Status: domain.InvitationPending}}

	out, err := h.run(t, "invite", "accept", "inv1")
	require.NoError(t, err)
	assert.Contains(t, out, "team-1")
	assert.Empty(t, h.remote.received)

	_, err = h.run(t, "invite", "accept", "missing")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "invitation not found")
}

func TestProjectAndDocumentCommands(t *testing.T) {
	h := newHarness()
	h.login(t)

	out, err := h.run(t, "project", "create", "Apollo", "--progress", "10", "--due", "2026-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Apollo")
	assert.Contains(t, out, "10%")
	assert.Contains(t, out, "2026-12-31")

	_, err = h.run(t, "project", "create", "Bad", "--due", "tomorrow")
	assert.Error(t, err)

	out, err = h.run(t, "project", "update", "pApollo", "--progress", "55")
	require.NoError(t, err)
	assert.Contains(t, out, "55%")

	out, err = h.run(t, "document", "create", "Roadmap", "--project", "pApollo", "--type", "pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "Roadmap")
	assert.Contains(t, out, "pdf")

	out, err = h.run(t, "--format", "json", "document", "list", "--project", "pApollo")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Roadmap"`)
}

func TestMessageCommands(t *testing.T) {
	h := newHarness()
	h.login(t)

	out, err := h.run(t, "message", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No team yet")

	h.remote.memberships = []domain.TeamMembership{{TeamID: "team-1", UserID: "u1", Role: "admin"}}
	out, err = h.run(t, "message", "post", "hello", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "u1: hello team")
}

func TestOpenPages(t *testing.T) {
	h := newHarness()
	h.login(t)
	h.remote.projects = []domain.Project{{ID: "p1", Name: "Apollo", Progress: 40}}

	cases := map[string]string{
		"/":          "created project Apollo",
		"/projects":  "Apollo",
		"/team":      "Team members",
		"/reports":   "Projects:          1",
		"/documents": "(none)",
		"/auth":      "Signed in as alice@example.com",
	}
	for path, want := range cases {
		out, err := h.run(t, "open", path)
		require.NoError(t, err, path)
		assert.Contains(t, out, want, path)
	}

	_, err := h.run(t, "open", "/settings")
	assert.Error(t, err)
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "--format", "xml", "whoami")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid format"))
	assert.False(t, errors.Is(err, ErrNotSignedIn))
}

func TestReportedErrors(t *testing.T) {
	h := newHarness()
	h.backend.signInErr = errors.New("invalid login credentials")

	_, err := h.run(t, "login", "--email", "alice@example.com", "--password", "nope")
	assert.True(t, Reported(err))

	_, err = h.run(t, "project", "list")
	assert.False(t, Reported(err))
}

func (f *fakeRemote) TaskBoard(_ context.Context, projectID string) (domain.TaskBoard, error) {
	var tasks []domain.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, t)
		}
	}
	return domain.NewTaskBoard(projectID, tasks), nil
}

func (f *fakeRemote) CreateTask(_ context.Context, projectID string, in client.NewTask) (domain.Task, error) {
	status := in.Status
	if status == "" {
		status = domain.TaskTodo
	}
	t := domain.Task{ID: "t" + in.Title, ProjectID: projectID, Title: in.Title, Assignee: in.Assignee, Status: status}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeRemote) MoveTask(_ context.Context, id, status string) (domain.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
			return f.tasks[i], nil
		}
	}
	return domain.Task{}, &client.APIError{Status: http.StatusNotFound, Message: "task not found"}
}

func (f *fakeRemote) DeleteTask(_ context.Context, id string) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Message: "task not found"}
}

func TestTaskCommands(t *testing.T) {
	h := newHarness()
	h.login(t)

	_, err := h.run(t, "task", "board")
	assert.ErrorIs(t, err, errMissingProject)

	out, err := h.run(t, "task", "add", "Wireframes", "--project", "p1", "--assignee", "Ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Wireframes (Ana)")
	assert.Contains(t, out, "Tasks: 0/1")

	out, err = h.run(t, "task", "move", "tWireframes", domain.TaskDone)
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks: 1/1")

	_, err = h.run(t, "task", "move", "missing", domain.TaskDone)
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "Failed to move task: task not found")

	out, err = h.run(t, "task", "delete", "tWireframes", "--project", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks: 0/0")
}
