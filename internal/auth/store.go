// ABOUTME: Auth session store: owns the current identity and its lifecycle.
// ABOUTME: Login, register, logout, and restore are explicit state transitions.
package auth

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/healthtrack/internal/apperr"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
)

// State is the store's current condition.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateLoggingOut     State = "logging_out"
	StateAuthenticated  State = "authenticated"
	StateError          State = "error"
)

// Default messages for remote failures that carry no text.
const (
	msgLogin    = "An error occurred during login"
	msgRegister = "An error occurred during registration"
	msgLogout   = "An error occurred during logout"
	msgRestore  = "An error occurred while checking authentication"
)

var errNoUser = errors.New("no user returned")

// Snapshot is a read-only copy of the store's state.
type Snapshot struct {
	State    State            `json:"state"`
	Identity *models.Identity `json:"identity,omitempty"`
	Err      *apperr.Error    `json:"error,omitempty"`
}

// IsAuthenticated reports whether an identity is held.
func (s Snapshot) IsAuthenticated() bool {
	return s.Identity != nil
}

// Store owns the authenticated identity. Remote failures are recorded in
// the snapshot rather than returned.
type Store struct {
	svc     backend.AuthService
	log     *log.Logger
	timeout time.Duration

	mu       sync.RWMutex
	state    State
	identity *models.Identity
	err      *apperr.Error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithPrefix("auth")
		}
	}
}

// WithTimeout bounds each remote call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// New creates a Store in the anonymous state.
func New(svc backend.AuthService, opts ...Option) *Store {
	s := &Store{
		svc:   svc,
		log:   log.New(io.Discard),
		state: StateAnonymous,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.err != nil {
		e := *s.err
		snap.Err = &e
	}
	return snap
}

// Identity returns the current identity, or nil.
func (s *Store) Identity() *models.Identity {
	return s.Snapshot().Identity
}

// Login validates the credentials and signs in. Validation failures are
// returned as apperr.FieldErrors without contacting the service; remote
// outcomes are only visible through Snapshot.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := ValidateLogin(email, password); err != nil {
		return err
	}
	s.authenticate(ctx, "login", msgLogin, func(ctx context.Context) (*models.Identity, error) {
		return s.svc.SignIn(ctx, email, password)
	})
	return nil
}

// Register validates the input and creates an account. It behaves like
// Login otherwise.
func (s *Store) Register(ctx context.Context, email, password, confirm string) error {
	if err := ValidateRegistration(email, password, confirm); err != nil {
		return err
	}
	s.authenticate(ctx, "register", msgRegister, func(ctx context.Context) (*models.Identity, error) {
		return s.svc.SignUp(ctx, email, password)
	})
	return nil
}

func (s *Store) authenticate(ctx context.Context, op, fallback string, call func(context.Context) (*models.Identity, error)) {
	s.transition(StateAuthenticating, s.currentIdentity(), nil)

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	id, err := call(ctx)
	if err == nil && id == nil {
		err = errNoUser
	}
	if err != nil {
		e := apperr.Normalize(apperr.KindAuth, err, fallback)
		s.log.Debug("authentication failed", "op", op, "err", e.Message)
		s.transition(StateError, nil, e)
		return
	}

	s.log.Debug("authenticated", "op", op, "user", id.ID)
	s.transition(StateAuthenticated, id, nil)
}

// Logout signs out. On failure the identity is kept and the previous state
// is restored with the error attached.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	prevState, prevIdentity := s.state, s.identity
	s.state = StateLoggingOut
	s.mu.Unlock()

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.svc.SignOut(ctx); err != nil {
		e := apperr.Normalize(apperr.KindAuth, err, msgLogout)
		s.log.Warn("logout failed", "err", e.Message)
		s.transition(prevState, prevIdentity, e)
		return
	}

	s.log.Debug("logged out")
	s.transition(StateAnonymous, nil, nil)
}

// RestoreSession checks the service for an existing session. It is meant
// to run once at startup and never fails: errors resolve to anonymous with
// the message attached, and "no session" is anonymous without one.
func (s *Store) RestoreSession(ctx context.Context) {
	s.transition(StateAuthenticating, nil, nil)

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	id, err := s.svc.GetSession(ctx)
	if err != nil {
		e := apperr.Normalize(apperr.KindAuth, err, msgRestore)
		s.log.Warn("session check failed", "err", e.Message)
		s.transition(StateAnonymous, nil, e)
		return
	}
	if id == nil {
		s.transition(StateAnonymous, nil, nil)
		return
	}

	s.log.Debug("session restored", "user", id.ID)
	s.transition(StateAuthenticated, id, nil)
}

func (s *Store) currentIdentity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Store) transition(state State, id *models.Identity, err *apperr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != nil {
		cp := *id
		id = &cp
	}
	s.state = state
	s.identity = id
	s.err = err
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
