package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"progresshub/internal/client"
	"progresshub/internal/domain"
)

var (
	ErrNotConfigured = errors.New("remote store not configured: set PROGRESSHUB_URL and PROGRESSHUB_ANON_KEY")
	ErrNoSession     = errors.New("not signed in")
)

const defaultRefreshMargin = 30 * time.Second

// Backend es la parte de autenticacion del servicio remoto.
type Backend interface {
	SignUp(ctx context.Context, email, password, displayName string) (domain.User, error)
	ConfirmSignUp(ctx context.Context, email, code string) (domain.AuthSession, error)
	SignIn(ctx context.Context, email, password string) (domain.AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (domain.AuthSession, error)
	SignOut(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, accessToken string) (domain.Identity, error)
}

type State int

const (
	StateLoading State = iota
	StateReady
	StateMisconfigured
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMisconfigured:
		return "misconfigured"
	}
	return "unknown"
}

// Result es el resultado de SignIn / SignUp / ConfirmSignUp.
type Result struct {
	Success bool
	Error   string
}

// Store mantiene la identidad autenticada y avisa a los suscriptores cuando cambia.
type Store struct {
	backend   Backend
	persister Persister
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
	margin    time.Duration

	mu        sync.RWMutex
	state     State
	err       error
	session   *domain.AuthSession
	listeners map[int]func(*domain.Identity)
	nextID    int

	refreshGroup singleflight.Group
	saveMu       sync.Mutex
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRefreshMargin fija cuanto antes del vencimiento se renueva el token.
func WithRefreshMargin(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.margin = d
		}
	}
}

// New crea el store. Un backend nil deja el store en StateMisconfigured.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		notifier:  nopNotifier{},
		logger:    zap.NewNop(),
		now:       time.Now,
		margin:    defaultRefreshMargin,
		state:     StateLoading,
		listeners: make(map[int]func(*domain.Identity)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if backend == nil {
		s.state = StateMisconfigured
		s.err = ErrNotConfigured
	}
	return s
}

// Init recupera la sesion guardada y la valida contra el backend. Los errores se
// registran y dejan el store listo sin identidad.
func (s *Store) Init(ctx context.Context) error {
	if s.State() == StateMisconfigured {
		return ErrNotConfigured
	}

	var restored *domain.AuthSession
	if s.persister != nil {
		saved, err := s.persister.Load()
		if err != nil {
			s.logger.Warn("load saved session failed", zap.Error(err))
		} else if saved != nil {
			restored = s.validate(ctx, *saved)
		}
	}

	s.mu.Lock()
	s.session = restored
	s.state = StateReady
	s.mu.Unlock()

	s.syncSaved()
	s.emit()
	return nil
}

func (s *Store) validate(ctx context.Context, saved domain.AuthSession) *domain.AuthSession {
	if saved.ExpiresWithin(s.now(), s.margin) {
		fresh, err := s.backend.Refresh(ctx, saved.RefreshToken)
		if err != nil {
			s.logger.Warn("refresh saved session failed", zap.Error(err))
			return nil
		}
		return &fresh
	}
	identity, err := s.backend.GetUser(ctx, saved.AccessToken)
	if err != nil {
		s.logger.Warn("fetch current user failed", zap.Error(err))
		return nil
	}
	saved.User = identity
	return &saved
}

func (s *Store) SignIn(ctx context.Context, email, password string) Result {
	if s.State() == StateMisconfigured {
		return s.fail("Login failed", ErrNotConfigured)
	}
	sess, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return s.fail("Login failed", err)
	}
	s.establish(sess)
	s.notifier.Notify(Notification{Title: "Logged in successfully", Description: "Welcome back!", Variant: VariantDefault})
	return Result{Success: true}
}

// SignUp registra al usuario; la confirmacion llega por email y no abre sesion.
func (s *Store) SignUp(ctx context.Context, email, password string) Result {
	if s.State() == StateMisconfigured {
		return s.fail("Sign up failed", ErrNotConfigured)
	}
	if _, err := s.backend.SignUp(ctx, email, password, ""); err != nil {
		return s.fail("Sign up failed", err)
	}
	s.notifier.Notify(Notification{Title: "Sign up successful", Description: "Please check your email for confirmation.", Variant: VariantDefault})
	return Result{Success: true}
}

// ConfirmSignUp canjea el codigo recibido por email y abre la sesion.
func (s *Store) ConfirmSignUp(ctx context.Context, email, code string) Result {
	if s.State() == StateMisconfigured {
		return s.fail("Confirmation failed", ErrNotConfigured)
	}
	sess, err := s.backend.ConfirmSignUp(ctx, email, code)
	if err != nil {
		return s.fail("Confirmation failed", err)
	}
	s.establish(sess)
	s.notifier.Notify(Notification{Title: "Email confirmed", Description: "Your account is ready.", Variant: VariantDefault})
	return Result{Success: true}
}

// SignOut limpia la sesion local. La invalidacion remota es best-effort.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	current := s.session
	s.session = nil
	s.mu.Unlock()

	if current != nil && s.backend != nil {
		if err := s.backend.SignOut(ctx, current.RefreshToken); err != nil {
			s.logger.Warn("remote sign out failed", zap.Error(err))
		}
	}
	s.syncSaved()
	s.notifier.Notify(Notification{Title: "Logged out", Description: "You have been logged out successfully.", Variant: VariantDefault})
	s.emit()
}

// CurrentIdentity devuelve nil si no hay sesion.
func (s *Store) CurrentIdentity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	identity := s.session.User
	return &identity
}

// OnChange registra cb y devuelve la funcion para darlo de baja.
func (s *Store) OnChange(cb func(*domain.Identity)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = cb
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Loading() bool {
	return s.State() == StateLoading
}

// Err devuelve el error de configuracion, si lo hay.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// AccessToken devuelve un token vigente, renovandolo si vence dentro del margen.
// Renovaciones concurrentes comparten una sola llamada al backend.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	if s.State() == StateMisconfigured {
		return "", ErrNotConfigured
	}
	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()
	if current == nil {
		return "", ErrNoSession
	}
	if !current.ExpiresWithin(s.now(), s.margin) {
		return current.AccessToken, nil
	}

	v, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		return s.refresh(ctx, current.RefreshToken)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) refresh(ctx context.Context, refreshToken string) (string, error) {
	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()
	if current == nil {
		return "", ErrNoSession
	}
	if current.RefreshToken != refreshToken && !current.ExpiresWithin(s.now(), s.margin) {
		return current.AccessToken, nil
	}

	fresh, err := s.backend.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if !rejected(err) {
			return "", err
		}
		// Solo se limpia si nadie cambio la sesion mientras tanto.
		s.mu.Lock()
		replaced := s.session != current
		if !replaced {
			s.session = nil
		}
		s.mu.Unlock()
		if replaced {
			return s.currentToken()
		}
		s.logger.Info("session ended remotely", zap.Error(err))
		s.syncSaved()
		s.emit()
		return "", ErrNoSession
	}

	s.mu.Lock()
	replaced := s.session != current
	if !replaced {
		s.session = &fresh
	}
	s.mu.Unlock()
	if replaced {
		// SignOut o un nuevo SignIn ganaron la carrera: el token renovado sobra.
		s.logger.Info("discarding refreshed session for replaced session")
		if err := s.backend.SignOut(ctx, fresh.RefreshToken); err != nil {
			s.logger.Warn("revoke discarded refresh token failed", zap.Error(err))
		}
		return s.currentToken()
	}
	s.syncSaved()
	s.emit()
	return fresh.AccessToken, nil
}

func (s *Store) currentToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", ErrNoSession
	}
	return s.session.AccessToken, nil
}

// Watch renueva el token en segundo plano hasta que ctx termine.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.margin / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.CurrentIdentity() == nil {
				continue
			}
			if _, err := s.AccessToken(ctx); err != nil && !errors.Is(err, ErrNoSession) {
				s.logger.Warn("background token refresh failed", zap.Error(err))
			}
		}
	}
}

func (s *Store) establish(sess domain.AuthSession) {
	s.mu.Lock()
	s.session = &sess
	s.state = StateReady
	s.mu.Unlock()
	s.syncSaved()
	s.emit()
}

func (s *Store) fail(title string, err error) Result {
	msg := err.Error()
	s.notifier.Notify(Notification{Title: title, Description: msg, Variant: VariantDestructive})
	return Result{Success: false, Error: msg}
}

// syncSaved escribe en el persister la sesion vigente al momento de la llamada.
// Las escrituras se serializan, asi la ultima siempre refleja el estado final.
func (s *Store) syncSaved() {
	if s.persister == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()

	if current == nil {
		if err := s.persister.Clear(); err != nil {
			s.logger.Warn("clear session failed", zap.Error(err))
		}
		return
	}
	if err := s.persister.Save(*current); err != nil {
		s.logger.Warn("save session failed", zap.Error(err))
	}
}

func (s *Store) emit() {
	s.mu.RLock()
	var identity *domain.Identity
	if s.session != nil {
		id := s.session.User
		identity = &id
	}
	listeners := make([]func(*domain.Identity), 0, len(s.listeners))
	for _, cb := range s.listeners {
		listeners = append(listeners, cb)
	}
	s.mu.RUnlock()

	for _, cb := range listeners {
		cb(identity)
	}
}

// rejected indica que el backend invalido la sesion (no un fallo de red).
func rejected(err error) bool {
	return client.IsStatus(err, http.StatusUnauthorized) ||
		client.IsStatus(err, http.StatusForbidden) ||
		client.IsStatus(err, http.StatusBadRequest)
}
