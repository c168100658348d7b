package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"progresshub/internal/domain"
	"progresshub/internal/email"
	"progresshub/internal/service"
)

const testAPIKey = "anon-key"

// uuidColumn imita a Postgres: un id mal formado falla con SQLSTATE 22P02.
func uuidColumn(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid: \"" + id + "\""}
	}
	return nil
}

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UpdateConfirmCode(_ context.Context, id, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.ConfirmCodeHash = codeHash
	user.ConfirmExpiresAt = &expiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) ConfirmEmail(_ context.Context, id string, confirmedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailConfirmedAt = &confirmedAt
	user.ConfirmCodeHash = ""
	user.ConfirmExpiresAt = nil
	m.usersByID[id] = user
	return nil
}

type mockEmailSender struct {
	mu          sync.Mutex
	codes       map[string]string
	invitations []email.Invitation
	err         error
}

func (m *mockEmailSender) SendConfirmationCode(_ context.Context, toEmail string, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[toEmail] = code
	return nil
}

func (m *mockEmailSender) SendInvitation(_ context.Context, inv email.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitations = append(m.invitations, inv)
	return m.err
}

func (m *mockEmailSender) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type mockTeamRepo struct {
	mu      sync.Mutex
	byOwner map[string]domain.Team
}

func (m *mockTeamRepo) EnsureForOwner(_ context.Context, team domain.Team) (domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byOwner == nil {
		m.byOwner = make(map[string]domain.Team)
	}
	if existing, ok := m.byOwner[team.OwnerID]; ok {
		return existing, nil
	}
	m.byOwner[team.OwnerID] = team
	return team, nil
}

func (m *mockTeamRepo) GetByOwner(_ context.Context, ownerID string) (domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.byOwner[ownerID]
	if !ok {
		return domain.Team{}, pgx.ErrNoRows
	}
	return team, nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, team := range m.byOwner {
		if team.ID == id {
			return team, nil
		}
	}
	return domain.Team{}, pgx.ErrNoRows
}

type mockMembershipRepo struct {
	mu   sync.Mutex
	rows []domain.TeamMembership
}

func (m *mockMembershipRepo) Upsert(_ context.Context, in domain.TeamMembership) (domain.TeamMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TeamID == in.TeamID && row.UserID == in.UserID {
			return row, nil
		}
	}
	m.rows = append(m.rows, in)
	return in, nil
}

func (m *mockMembershipRepo) Get(_ context.Context, teamID, userID string) (domain.TeamMembership, error) {
	if err := uuidColumn(teamID); err != nil {
		return domain.TeamMembership{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TeamID == teamID && row.UserID == userID {
			return row, nil
		}
	}
	return domain.TeamMembership{}, pgx.ErrNoRows
}

func (m *mockMembershipRepo) ExistsByEmail(_ context.Context, teamID, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TeamID == teamID && row.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMembershipRepo) ListForUser(_ context.Context, userID string) ([]domain.TeamMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	teams := map[string]bool{}
	for _, row := range m.rows {
		if row.UserID == userID {
			teams[row.TeamID] = true
		}
	}
	var out []domain.TeamMembership
	for _, row := range m.rows {
		if teams[row.TeamID] {
			out = append(out, row)
		}
	}
	return out, nil
}

type mockInvitationRepo struct {
	mu   sync.Mutex
	rows []domain.TeamInvitation
}

func (m *mockInvitationRepo) Create(_ context.Context, inv domain.TeamInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TeamID == inv.TeamID && row.Email == inv.Email && row.Status == domain.InvitationPending {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	m.rows = append(m.rows, inv)
	return nil
}

func (m *mockInvitationRepo) GetByID(_ context.Context, id string) (domain.TeamInvitation, error) {
	if err := uuidColumn(id); err != nil {
		return domain.TeamInvitation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return domain.TeamInvitation{}, pgx.ErrNoRows
}

func (m *mockInvitationRepo) GetForUpdate(ctx context.Context, id string) (domain.TeamInvitation, error) {
	return m.GetByID(ctx, id)
}

func (m *mockInvitationRepo) set(id string, fn func(*domain.TeamInvitation) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && fn(&m.rows[i]) {
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockInvitationRepo) MarkAccepted(_ context.Context, id, userID string, at time.Time) error {
	return m.set(id, func(inv *domain.TeamInvitation) bool {
		if inv.Status != domain.InvitationPending {
			return false
		}
		inv.Status, inv.AcceptedBy, inv.UpdatedAt = domain.InvitationAccepted, userID, at
		return true
	})
}

func (m *mockInvitationRepo) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	return m.set(id, func(inv *domain.TeamInvitation) bool {
		inv.Status, inv.UpdatedAt = status, at
		return true
	})
}

func (m *mockInvitationRepo) Touch(_ context.Context, id string, at time.Time) error {
	return m.set(id, func(inv *domain.TeamInvitation) bool {
		inv.UpdatedAt = at
		return true
	})
}

func (m *mockInvitationRepo) pending(keep func(domain.TeamInvitation) bool) []domain.TeamInvitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TeamInvitation
	for _, row := range m.rows {
		if row.Status == domain.InvitationPending && keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (m *mockInvitationRepo) ListPendingByEmail(_ context.Context, email string) ([]domain.TeamInvitation, error) {
	return m.pending(func(inv domain.TeamInvitation) bool { return inv.Email == email }), nil
}

func (m *mockInvitationRepo) ListPendingByInviter(_ context.Context, inviterID string) ([]domain.TeamInvitation, error) {
	return m.pending(func(inv domain.TeamInvitation) bool { return inv.InviterID == inviterID }), nil
}

type mockProjectRepo struct {
	mu   sync.Mutex
	rows []domain.Project
}

func (m *mockProjectRepo) Create(_ context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, p)
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (domain.Project, error) {
	if err := uuidColumn(id); err != nil {
		return domain.Project{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, pgx.ErrNoRows
}

func (m *mockProjectRepo) Update(_ context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == p.ID {
			m.rows[i] = p
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockProjectRepo) List(_ context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Project(nil), m.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockProjectRepo) Stats(_ context.Context) (int, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		return 0, 0, nil
	}
	total := 0
	for _, p := range m.rows {
		total += p.Progress
	}
	return len(m.rows), float64(total) / float64(len(m.rows)), nil
}

type mockDocumentRepo struct {
	mu   sync.Mutex
	rows []domain.Document
}

func (m *mockDocumentRepo) Create(_ context.Context, d domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, d)
	return nil
}

func (m *mockDocumentRepo) List(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Document(nil), m.rows...), nil
}

func (m *mockDocumentRepo) ListByProject(_ context.Context, projectID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Document
	for _, d := range m.rows {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) CountByType(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, d := range m.rows {
		counts[d.Type]++
	}
	return counts, nil
}

type mockActivityRepo struct {
	mu   sync.Mutex
	rows []domain.Activity
}

func (m *mockActivityRepo) Create(_ context.Context, a domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, a)
	return nil
}

func (m *mockActivityRepo) ListRecent(_ context.Context, limit int) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Activity(nil), m.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockActivityRepo) CountSince(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.rows {
		if !a.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

type mockMessageRepo struct {
	mu   sync.Mutex
	rows []domain.Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, msg)
	return nil
}

func (m *mockMessageRepo) ListByTeam(_ context.Context, teamID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.rows {
		if msg.TeamID == teamID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type mockLimiter struct {
	allow bool
}

func (m *mockLimiter) Allow(_ string) bool {
	return m.allow
}

type mockTaskRepo struct {
	mu   sync.Mutex
	rows []domain.Task
}

func (m *mockTaskRepo) Create(_ context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, t)
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (domain.Task, error) {
	if err := uuidColumn(id); err != nil {
		return domain.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, pgx.ErrNoRows
}

func (m *mockTaskRepo) ListByProject(_ context.Context, projectID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.rows {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Status = status
			m.rows[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockTaskRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// testServer arma el router completo sobre repositorios en memoria.
type testServer struct {
	router      *gin.Engine
	sender      *mockEmailSender
	jwt         *service.JWTService
	memberships *mockMembershipRepo
	teams       *mockTeamRepo
}

func newTestServer(t *testing.T, limiter service.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	sender := &mockEmailSender{}
	teams := &mockTeamRepo{}
	memberships := &mockMembershipRepo{}
	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, time.Hour, service.NewMemoryRefreshTokenStore())

	userSvc := service.NewUserService(logger, newMockUserRepo(), sender, limiter)
	inviteSvc := service.NewInvitationService(logger, teams, memberships, &mockInvitationRepo{}, nil, sender, nil, "http://app.test")
	projects := &mockProjectRepo{}
	activities := &mockActivityRepo{}
	workspaceSvc := service.NewWorkspaceService(logger, projects, &mockDocumentRepo{}, activities, nil)
	taskSvc := service.NewTaskService(logger, projects, &mockTaskRepo{}, activities, nil)
	messageSvc := service.NewMessageService(&mockMessageRepo{}, memberships)

	router := NewRouter(RouterDeps{
		Logger:    logger,
		APIKey:    testAPIKey,
		JWT:       jwtSvc,
		Users:     NewUserHandler(logger, userSvc, jwtSvc),
		Invites:   NewInvitationHandler(logger, inviteSvc),
		Workspace: NewWorkspaceHandler(logger, workspaceSvc),
		Tasks:     NewTaskHandler(logger, taskSvc),
		Chat:      NewChatHandler(logger, messageSvc),
	})
	return &testServer{router: router, sender: sender, jwt: jwtSvc, memberships: memberships, teams: teams}
}

func performRequest(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", testAPIKey)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	if token == "" {
		return performRequest(s.router, method, path, body)
	}
	return performRequest(s.router, method, path, body, "Authorization", "Bearer "+token)
}

// signIn registra, confirma y devuelve la sesion de email.
func (s *testServer) signIn(t *testing.T, email string) domain.AuthSession {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/signup", map[string]string{"email": email, "password": "secret123"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodPost, "/auth/confirm", map[string]string{"email": email, "code": s.sender.code(email)}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Session domain.AuthSession `json:"session"`
	}
	decode(t, rec, &resp)
	return resp.Session
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
