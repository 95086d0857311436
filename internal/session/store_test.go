package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fourgetech/payportal/internal/bankapi"
	"github.com/fourgetech/payportal/internal/logging"
)

type fakeAuthAPI struct {
	loginFn    func(ctx context.Context, req bankapi.LoginRequest) (bankapi.LoginResponse, error)
	registerFn func(ctx context.Context, req bankapi.RegisterRequest) (bankapi.RegisterResponse, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, req bankapi.LoginRequest) (bankapi.LoginResponse, error) {
	return f.loginFn(ctx, req)
}

func (f *fakeAuthAPI) Register(ctx context.Context, req bankapi.RegisterRequest) (bankapi.RegisterResponse, error) {
	return f.registerFn(ctx, req)
}

func loginSuccess(token string) *fakeAuthAPI {
	return &fakeAuthAPI{
		loginFn: func(_ context.Context, req bankapi.LoginRequest) (bankapi.LoginResponse, error) {
			return bankapi.LoginResponse{
				Token:      token,
				CustomerID: "cust-1",
				User: bankapi.UserPayload{
					FirstName: "Jane",
					LastName:  "Doe",
					Username:  req.Username,
					Email:     "jane@example.com",
				},
			}, nil
		},
	}
}

func TestStoreLoginAdoptsAndPersists(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, loginSuccess("tok-abc"), logging.Discard())

	if err := store.Login(ctx, "jdoe", "1234567890", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", store.State())
	}
	if store.Credential() != "tok-abc" {
		t.Fatalf("unexpected credential %q", store.Credential())
	}
	if got := store.Identity(); got.CustomerID != "cust-1" || got.Username != "jdoe" {
		t.Fatalf("unexpected identity %+v", got)
	}
	if store.Loading() {
		t.Fatal("loading still set after login")
	}

	identity, token, ok, err := storage.LoadSession(ctx)
	if err != nil || !ok {
		t.Fatalf("expected persisted session, got ok=%v err=%v", ok, err)
	}
	if token != "tok-abc" || identity.CustomerID != "cust-1" {
		t.Fatalf("persisted pair mismatch: %q %+v", token, identity)
	}
}

func TestStoreLoginRejectionMutatesNothing(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, bankapi.LoginRequest) (bankapi.LoginResponse, error) {
			return bankapi.LoginResponse{}, &bankapi.APIError{Status: 401, Message: "invalid credentials"}
		},
	}
	store := NewStore(storage, api, logging.Discard())

	err := store.Login(ctx, "jdoe", "1234567890", "wrong")
	var apiErr *bankapi.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if store.State() == StateAuthenticated || store.Credential() != "" {
		t.Fatal("rejected login mutated session state")
	}
	if store.Loading() {
		t.Fatal("loading still set after failed login")
	}
	if _, _, ok, _ := storage.LoadSession(ctx); ok {
		t.Fatal("rejected login persisted a session")
	}
}

type failingStorage struct{ Storage }

func (failingStorage) SaveSession(context.Context, Identity, string) error {
	return errors.New("disk on fire")
}

func TestStoreLoginPersistFailureStaysAnonymous(t *testing.T) {
	store := NewStore(failingStorage{NewMemoryStorage()}, loginSuccess("tok"), logging.Discard())
	if err := store.Login(context.Background(), "jdoe", "1234567890", "secret"); err == nil {
		t.Fatal("expected persist error")
	}
	if store.State() == StateAuthenticated || store.Credential() != "" {
		t.Fatal("half-adopted session after persist failure")
	}
}

func TestStoreRegisterNeverAuthenticates(t *testing.T) {
	storage := NewMemoryStorage()
	api := &fakeAuthAPI{
		registerFn: func(_ context.Context, req bankapi.RegisterRequest) (bankapi.RegisterResponse, error) {
			return bankapi.RegisterResponse{CustomerID: "cust-9"}, nil
		},
	}
	store := NewStore(storage, api, logging.Discard())

	if err := store.Register(context.Background(), bankapi.RegisterRequest{Username: "new"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if store.State() == StateAuthenticated || store.Credential() != "" {
		t.Fatal("register adopted a session")
	}
	if _, _, ok, _ := storage.LoadSession(context.Background()); ok {
		t.Fatal("register persisted a session")
	}
}

func TestStoreRestore(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	identity := Identity{CustomerID: "cust-1", Username: "jdoe"}
	if err := storage.SaveSession(ctx, identity, "tok-abc"); err != nil {
		t.Fatalf("seed storage: %v", err)
	}

	store := NewStore(storage, &fakeAuthAPI{}, logging.Discard())
	if !store.Loading() {
		t.Fatal("expected loading before restore")
	}
	store.Restore(ctx)

	if store.State() != StateAuthenticated {
		t.Fatalf("expected authenticated after restore, got %s", store.State())
	}
	if store.Credential() != "tok-abc" || store.Identity().Username != "jdoe" {
		t.Fatal("restored pair mismatch")
	}
	if store.Loading() {
		t.Fatal("loading still set after restore")
	}
}

func TestStoreRestoreEmptySlotSettlesAnonymous(t *testing.T) {
	store := NewStore(NewMemoryStorage(), &fakeAuthAPI{}, logging.Discard())
	store.Restore(context.Background())
	if store.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %s", store.State())
	}
	if store.Loading() {
		t.Fatal("loading still set after restore")
	}
}

func TestStoreLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage, loginSuccess("tok"), logging.Discard())
	if err := store.Login(ctx, "jdoe", "1234567890", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	store.Logout(ctx)
	store.Logout(ctx) // second logout is a no-op

	if store.State() != StateAnonymous || store.Credential() != "" {
		t.Fatal("logout left session state behind")
	}
	if _, _, ok, _ := storage.LoadSession(ctx); ok {
		t.Fatal("logout left durable session behind")
	}
}

func TestStoreRejectsConcurrentOperations(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAuthAPI{
		loginFn: func(context.Context, bankapi.LoginRequest) (bankapi.LoginResponse, error) {
			close(entered)
			<-release
			return bankapi.LoginResponse{Token: "tok"}, nil
		},
	}
	store := NewStore(NewMemoryStorage(), api, logging.Discard())

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), "jdoe", "1234567890", "secret")
	}()

	<-entered
	if !store.Loading() {
		t.Fatal("expected loading while login in flight")
	}
	if err := store.Login(context.Background(), "jdoe", "1234567890", "secret"); !errors.Is(err, ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight, got %v", err)
	}
	if err := store.Register(context.Background(), bankapi.RegisterRequest{}); !errors.Is(err, ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight for register, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first login: %v", err)
	}
	if store.Loading() {
		t.Fatal("loading still set after login settled")
	}
}

func TestStoreLogoutWinsOverInFlightLogin(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAuthAPI{
		loginFn: func(context.Context, bankapi.LoginRequest) (bankapi.LoginResponse, error) {
			close(entered)
			<-release
			return bankapi.LoginResponse{Token: "tok", CustomerID: "cust-1"}, nil
		},
	}
	storage := NewMemoryStorage()
	store := NewStore(storage, api, logging.Discard())

	done := make(chan error, 1)
	go func() {
		done <- store.Login(ctx, "jdoe", "1234567890", "secret")
	}()

	<-entered
	store.Logout(ctx)
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("login: %v", err)
	}

	if store.State() != StateAnonymous {
		t.Fatalf("logout overwritten by in-flight login: state=%s", store.State())
	}
	if store.Credential() != "" {
		t.Fatalf("logout overwritten by in-flight login: credential=%q", store.Credential())
	}
	if _, _, ok, _ := storage.LoadSession(ctx); ok {
		t.Fatal("durable slot repopulated after logout")
	}
}

func TestStoreCheckCredential(t *testing.T) {
	now := time.Now()
	valid := mintToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	expired := mintToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))})

	store := NewStore(NewMemoryStorage(), loginSuccess(valid), logging.Discard())
	if err := store.CheckCredential(now); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if err := store.Login(context.Background(), "jdoe", "1234567890", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.CheckCredential(now); err != nil {
		t.Fatalf("valid credential rejected: %v", err)
	}

	store = NewStore(NewMemoryStorage(), loginSuccess(expired), logging.Discard())
	if err := store.Login(context.Background(), "jdoe", "1234567890", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.CheckCredential(now); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}
