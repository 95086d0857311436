package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fourgetech/payportal/internal/bankapi"
)

var (
	// ErrOperationInFlight rejects a session-mutating call while another one is
	// still running. A double-clicked submit reaches the store as two calls; the
	// second one fails fast instead of racing the first.
	ErrOperationInFlight = errors.New("session operation already in flight")

	// ErrNotAuthenticated indicates an authenticated-only operation was attempted
	// without a current session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthAPI is the slice of the banking API the store needs.
type AuthAPI interface {
	Login(ctx context.Context, req bankapi.LoginRequest) (bankapi.LoginResponse, error)
	Register(ctx context.Context, req bankapi.RegisterRequest) (bankapi.RegisterResponse, error)
}

// Store owns the portal's single session slot: the current Identity and bearer
// Credential, their durable mirror, and the lifecycle state machine
// Uninitialized → Restoring → {Authenticated, Anonymous}. All consumers receive the
// store by injection; there is no ambient session global.
type Store struct {
	mu       sync.Mutex
	state    State
	identity Identity
	token    string
	loading  bool
	busy     bool
	epoch    uint64

	storage Storage
	api     AuthAPI
	logger  *slog.Logger
}

// NewStore builds an unrestored store. Loading reports true until Restore has run.
func NewStore(storage Storage, api AuthAPI, logger *slog.Logger) *Store {
	return &Store{
		state:   StateUninitialized,
		loading: true,
		storage: storage,
		api:     api,
		logger:  logger,
	}
}

// Restore reads the durable slot and adopts a stored identity without revalidating
// the credential against the backend; expiry is enforced lazily, before the next
// authenticated call. Whatever the outcome, the store settles and loading clears.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	s.state = StateRestoring
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	identity, token, ok, err := s.storage.LoadSession(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.logger.Warn("session restore failed", "error", err)
		s.state = StateAnonymous
	case !ok:
		s.state = StateAnonymous
	default:
		s.identity = identity
		s.token = token
		s.state = StateAuthenticated
		s.logger.Info("session restored", "username", identity.Username)
	}
}

// Login authenticates against the backend and, on success, persists and adopts the
// returned Credential and Identity as a pair. A backend rejection or transport
// failure leaves the session state untouched. A Logout that lands while the call is
// in flight wins: the epoch moves, and the completed login discards its result
// instead of resurrecting the session. Loading covers the full duration of the call
// on every outcome path.
func (s *Store) Login(ctx context.Context, username, accountNumber, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	started := s.epoch
	s.mu.Unlock()

	resp, err := s.api.Login(ctx, bankapi.LoginRequest{
		Username:      username,
		AccountNumber: accountNumber,
		Password:      password,
	})
	if err != nil {
		var apiErr *bankapi.APIError
		if errors.As(err, &apiErr) {
			s.logger.Info("login rejected", "username", username, "status", apiErr.Status)
		} else {
			s.logger.Error("login request failed", "username", username, "error", err)
		}
		return err
	}

	identity := Identity{
		CustomerID: resp.CustomerID,
		FirstName:  resp.User.FirstName,
		LastName:   resp.User.LastName,
		Username:   resp.User.Username,
		Email:      resp.User.Email,
	}

	// Persist first: if the durable write fails the in-memory state stays
	// anonymous and the pair is never half-adopted.
	if err := s.storage.SaveSession(ctx, identity, resp.Token); err != nil {
		s.logger.Error("persist session failed", "error", err)
		return err
	}

	s.mu.Lock()
	if s.epoch != started {
		s.mu.Unlock()
		// A logout overtook this login; the just-persisted pair must not survive it.
		if err := s.storage.ClearSession(ctx); err != nil {
			s.logger.Warn("clear session storage failed", "error", err)
		}
		s.logger.Info("login superseded by logout", "username", username)
		return nil
	}
	s.identity = identity
	s.token = resp.Token
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// Register creates the customer account but never authenticates it; callers are
// expected to send the user through login afterwards regardless of outcome.
func (s *Store) Register(ctx context.Context, req bankapi.RegisterRequest) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if _, err := s.api.Register(ctx, req); err != nil {
		var apiErr *bankapi.APIError
		if errors.As(err, &apiErr) {
			s.logger.Info("registration rejected", "username", req.Username, "status", apiErr.Status)
		} else {
			s.logger.Error("registration request failed", "username", req.Username, "error", err)
		}
		return err
	}
	s.logger.Info("registration accepted", "username", req.Username)
	return nil
}

// Logout clears the Identity and Credential from memory and durable storage as a
// pair. It is idempotent and never fails: a storage error is logged and swallowed,
// since the in-memory session is gone either way. Bumping the epoch serializes it
// against an in-flight login without making it wait on one.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.identity = Identity{}
	s.token = ""
	s.state = StateAnonymous
	s.epoch++
	s.mu.Unlock()

	if err := s.storage.ClearSession(ctx); err != nil {
		s.logger.Warn("clear session storage failed", "error", err)
	}
}

// CheckCredential reports nil when an authenticated, unexpired credential is held.
// An expired credential is surfaced as ErrSessionExpired; callers are expected to
// force Logout and route the user back to login.
func (s *Store) CheckCredential(now time.Time) error {
	s.mu.Lock()
	state, token := s.state, s.token
	s.mu.Unlock()
	if state != StateAuthenticated {
		return ErrNotAuthenticated
	}
	return CheckExpiry(token, now)
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the current identity; zero value when not authenticated.
func (s *Store) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Credential returns the current bearer token; empty when not authenticated.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Loading reports whether a session operation (including the initial restore) is
// underway.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrOperationInFlight
	}
	s.busy = true
	s.loading = true
	return nil
}

func (s *Store) end() {
	s.mu.Lock()
	s.busy = false
	s.loading = false
	s.mu.Unlock()
}
