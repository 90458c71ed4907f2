package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/disuhitarth/EcommerceConcept/internal/auth"
	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/events"
	"github.com/disuhitarth/EcommerceConcept/internal/repository"
	apperrors "github.com/disuhitarth/EcommerceConcept/pkg/util"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type authFixture struct {
	svc      *AuthService
	sessions *repository.MemorySessionRepository
	clock    *fakeClock
	events   *eventRecorder
}

type eventRecorder struct {
	mu    sync.Mutex
	types []events.EventType
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *eventRecorder) count(t events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.types {
		if got == t {
			n++
		}
	}
	return n
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clock := newFakeClock()
	sessions := repository.NewMemorySessionRepository()
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := &eventRecorder{}
	for _, et := range []events.EventType{
		events.EventAccountCreated,
		events.EventSessionCreated,
		events.EventSessionInvalidated,
		events.EventSessionExpired,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	cfg := config.AuthConfig{SessionTTLHours: 7 * 24, MinPasswordLength: 8}
	svc := NewAuthService(cfg, AuthDependencies{
		Accounts:   repository.NewMemoryAccountRepository(),
		Sessions:   sessions,
		Hasher:     auth.NewPasswordHasher(auth.AlgorithmBcrypt, bcrypt.MinCost),
		Now:        clock.Now,
		Dispatcher: dispatcher,
	})
	return &authFixture{svc: svc, sessions: sessions, clock: clock, events: rec}
}

func validSignup() SignupInput {
	return SignupInput{Email: "a@x.com", Password: "longenough1", FirstName: "A", LastName: "B"}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	de := apperrors.ToDomainError(err)
	if de == nil {
		t.Fatalf("error = nil, want status %d", want)
	}
	if de.HTTPStatus != want {
		t.Errorf("HTTPStatus = %d, want %d", de.HTTPStatus, want)
	}
}

func TestAuthService_SignupThenWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, account, err := f.svc.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if account.Email != "a@x.com" || account.FirstName != "A" || account.LastName != "B" {
		t.Errorf("Signup() account = %+v", account)
	}
	if got, want := session.ExpiresAt.Sub(f.clock.Now()), 7*24*time.Hour; got != want {
		t.Errorf("session lifetime = %v, want %v", got, want)
	}
	if session.Token == "" {
		t.Error("session token is empty")
	}

	_, _, err = f.svc.Authenticate(ctx, "a@x.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_CreateAccountValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SignupInput)
		wantErr error
	}{
		{name: "missing email", mutate: func(in *SignupInput) { in.Email = "  " }, wantErr: ErrMissingField},
		{name: "missing password", mutate: func(in *SignupInput) { in.Password = "" }, wantErr: ErrMissingField},
		{name: "missing first name", mutate: func(in *SignupInput) { in.FirstName = "" }, wantErr: ErrMissingField},
		{name: "missing last name", mutate: func(in *SignupInput) { in.LastName = "" }, wantErr: ErrMissingField},
		{name: "seven characters", mutate: func(in *SignupInput) { in.Password = "short77" }, wantErr: ErrWeakPassword},
		{name: "beyond bcrypt limit", mutate: func(in *SignupInput) { in.Password = strings.Repeat("p", 80) }, wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			in := validSignup()
			tt.mutate(&in)

			_, err := f.svc.CreateAccount(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateAccount() error = %v, want %v", err, tt.wantErr)
			}
			assertStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestAuthService_CreateAccountDoesNotOpenSession(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.svc.CreateAccount(context.Background(), validSignup()); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if f.sessions.Size() != 0 {
		t.Errorf("sessions = %d, want 0", f.sessions.Size())
	}
}

func TestAuthService_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateAccount(ctx, validSignup()); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	dup := validSignup()
	dup.Email = " A@X.COM "
	_, err := f.svc.CreateAccount(ctx, dup)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateAccount(dup) error = %v, want ErrEmailTaken", err)
	}
	assertStatus(t, err, http.StatusConflict)

	if _, _, err := f.svc.Authenticate(ctx, "A@x.com", "longenough1"); err != nil {
		t.Errorf("Authenticate(mixed case) error = %v", err)
	}
}

func TestAuthService_ConcurrentSignupSameEmail(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newAuthFixture(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		taken     atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateAccount(ctx, validSignup())
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrEmailTaken):
				taken.Add(1)
			default:
				t.Errorf("CreateAccount() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded.Load() != 1 || taken.Load() != 9 {
		t.Errorf("succeeded=%d taken=%d, want 1 and 9", succeeded.Load(), taken.Load())
	}
}

func TestAuthService_AuthenticateFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.CreateAccount(ctx, validSignup()); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	tests := []struct {
		name       string
		email      string
		password   string
		wantErr    error
		wantStatus int
	}{
		{name: "unknown email", email: "nobody@x.com", password: "longenough1", wantErr: ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "wrong password", email: "a@x.com", password: "longenough2", wantErr: ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "missing email", email: "", password: "longenough1", wantErr: ErrMissingCredentials, wantStatus: http.StatusBadRequest},
		{name: "missing password", email: "a@x.com", password: "", wantErr: ErrMissingCredentials, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, account, err := f.svc.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if session != nil || account != nil {
				t.Error("Authenticate() returned values alongside an error")
			}
			assertStatus(t, err, tt.wantStatus)
		})
	}

	if f.sessions.Size() != 0 {
		t.Errorf("sessions = %d after failed logins, want 0", f.sessions.Size())
	}
}

func TestAuthService_EachLoginMintsFreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, _, err := f.svc.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	second, _, err := f.svc.Authenticate(ctx, "a@x.com", "longenough1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if first.Token == second.Token {
		t.Error("two logins returned the same token")
	}

	for _, token := range []string{first.Token, second.Token} {
		if _, err := f.svc.Resolve(ctx, token); err != nil {
			t.Errorf("Resolve(%q) error = %v, want both sessions live", token, err)
		}
	}
}

func TestAuthService_ResolveAndInvalidate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, _, err := f.svc.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	account, err := f.svc.Resolve(ctx, session.Token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if account.Email != "a@x.com" {
		t.Errorf("Resolve().Email = %q, want a@x.com", account.Email)
	}

	for i := 0; i < 2; i++ {
		if err := f.svc.Invalidate(ctx, session.Token); err != nil {
			t.Fatalf("Invalidate() call %d error = %v", i+1, err)
		}
	}
	if f.events.count(events.EventSessionInvalidated) != 1 {
		t.Errorf("session_invalidated events = %d, want 1", f.events.count(events.EventSessionInvalidated))
	}

	_, err = f.svc.Resolve(ctx, session.Token)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Resolve() after Invalidate error = %v, want ErrNotAuthenticated", err)
	}
}

func TestAuthService_InvalidateUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	for _, token := range []string{"", "never-issued"} {
		if err := f.svc.Invalidate(context.Background(), token); err != nil {
			t.Errorf("Invalidate(%q) error = %v, want nil", token, err)
		}
	}
}

func TestAuthService_ResolveMissingToken(t *testing.T) {
	f := newAuthFixture(t)

	for _, token := range []string{"", "never-issued"} {
		_, err := f.svc.Resolve(context.Background(), token)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotAuthenticated", token, err)
		}
		assertStatus(t, err, http.StatusUnauthorized)
	}
}

func TestAuthService_LazyExpiry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, _, err := f.svc.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	f.clock.Advance(7*24*time.Hour - time.Nanosecond)
	if _, err := f.svc.Resolve(ctx, session.Token); err != nil {
		t.Fatalf("Resolve() just before expiry error = %v", err)
	}

	f.clock.Advance(time.Nanosecond)
	if f.sessions.Size() != 1 {
		t.Fatalf("expired session swept before access, sessions = %d", f.sessions.Size())
	}

	_, err = f.svc.Resolve(ctx, session.Token)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Resolve() at expiresAt error = %v, want ErrSessionExpired", err)
	}
	if f.sessions.Size() != 0 {
		t.Errorf("expired session not purged, sessions = %d", f.sessions.Size())
	}
	if f.events.count(events.EventSessionExpired) != 1 {
		t.Errorf("session_expired events = %d, want 1", f.events.count(events.EventSessionExpired))
	}

	_, err = f.svc.Resolve(ctx, session.Token)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Resolve() after purge error = %v, want ErrNotAuthenticated", err)
	}
	if err := f.svc.Invalidate(ctx, session.Token); err != nil {
		t.Errorf("Invalidate() after purge error = %v", err)
	}
}

func TestAuthService_NoCredentialInOutput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, account, err := f.svc.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	resolved, err := f.svc.Resolve(ctx, session.Token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	for _, v := range []any{account, resolved, session} {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		out := strings.ToLower(string(raw))
		if strings.Contains(out, "longenough1") || strings.Contains(out, "password") || strings.Contains(out, "$2a$") {
			t.Errorf("credential leaked in %s", raw)
		}
	}
}

func TestAuthService_TokenGeneratorFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.CreateAccount(ctx, validSignup()); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	f.svc.tokens = func() (string, error) { return "", errors.New("entropy unavailable") }
	_, _, err := f.svc.Authenticate(ctx, "a@x.com", "longenough1")
	assertStatus(t, err, http.StatusInternalServerError)
}

func TestAuthService_RetriesTokenCollision(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.CreateAccount(ctx, validSignup()); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	var n int
	f.svc.tokens = func() (string, error) {
		n++
		if n <= 2 {
			return "fixed", nil
		}
		return fmt.Sprintf("token-%d", n), nil
	}

	first, _, err := f.svc.Authenticate(ctx, "a@x.com", "longenough1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	second, _, err := f.svc.Authenticate(ctx, "a@x.com", "longenough1")
	if err != nil {
		t.Fatalf("Authenticate() after collision error = %v", err)
	}
	if first.Token != "fixed" || second.Token != "token-3" {
		t.Errorf("tokens = %q, %q, want fixed, token-3", first.Token, second.Token)
	}
}

func TestAuthService_SeedAccountIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.svc.SeedAccount(ctx, validSignup()); err != nil {
			t.Fatalf("SeedAccount() call %d error = %v", i+1, err)
		}
	}
	if f.events.count(events.EventAccountCreated) != 1 {
		t.Errorf("account_created events = %d, want 1", f.events.count(events.EventAccountCreated))
	}
}
