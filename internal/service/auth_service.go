package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/auth"
	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/domain"
	"github.com/disuhitarth/EcommerceConcept/internal/events"
	"github.com/disuhitarth/EcommerceConcept/internal/observability"
	"github.com/disuhitarth/EcommerceConcept/internal/repository"
	apperrors "github.com/disuhitarth/EcommerceConcept/pkg/util"
)

// Session store errors. The text of each is the message shown to clients.
var (
	ErrMissingField       = errors.New("All fields are required")
	ErrMissingCredentials = errors.New("Email and password are required")
	ErrWeakPassword       = errors.New("Password must be at least 8 characters")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrNotAuthenticated   = errors.New("Not authenticated")
	ErrSessionExpired     = errors.New("Session expired")
)

const maxTokenAttempts = 3

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthService owns accounts and the sessions issued for them.
type AuthService struct {
	accounts   repository.AccountRepository
	sessions   repository.SessionRepository
	hasher     *auth.PasswordHasher
	tokens     auth.TokenGenerator
	now        func() time.Time
	ttl        time.Duration
	minPwLen   int
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators of the auth service.
// Tokens, Now and Logger default to auth.NewToken, time.Now and a no-op logger.
type AuthDependencies struct {
	Accounts   repository.AccountRepository
	Sessions   repository.SessionRepository
	Hasher     *auth.PasswordHasher
	Tokens     auth.TokenGenerator
	Now        func() time.Time
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	s := &AuthService{
		accounts:   deps.Accounts,
		sessions:   deps.Sessions,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		now:        deps.Now,
		ttl:        cfg.SessionTTL(),
		minPwLen:   cfg.MinPasswordLength,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if s.hasher == nil {
		s.hasher = auth.NewPasswordHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	}
	if s.tokens == nil {
		s.tokens = auth.NewToken
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.minPwLen <= 0 {
		s.minPwLen = 8
	}
	return s
}

// CreateAccount validates and stores a new account. It does not log the caller in.
func (s *AuthService) CreateAccount(ctx context.Context, in SignupInput) (*domain.PublicAccount, error) {
	email := domain.NormalizeEmail(in.Email)
	firstName := strings.Clone(strings.TrimSpace(in.FirstName))
	lastName := strings.Clone(strings.TrimSpace(in.LastName))

	if email == "" || in.Password == "" || firstName == "" || lastName == "" {
		return nil, validationErr(ErrMissingField)
	}
	if utf8.RuneCountInString(in.Password) < s.minPwLen {
		return nil, validationErr(ErrWeakPassword)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, validationErr(ErrWeakPassword)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        strings.Clone(strings.TrimSpace(in.Phone)),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, http.StatusConflict, ErrEmailTaken)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuth("signup")
	s.publish(ctx, events.NewEvent(events.EventAccountCreated, account.ID, events.AccountCreatedPayload{Email: email}))
	s.logger.Info("account created", zap.String("account_id", account.ID))
	return account.Public(), nil
}

// Signup creates the account and immediately opens a session for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.Session, *domain.PublicAccount, error) {
	if _, err := s.CreateAccount(ctx, in); err != nil {
		return nil, nil, err
	}
	return s.Authenticate(ctx, in.Email, in.Password)
}

// Authenticate verifies credentials and issues a new session.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Session, *domain.PublicAccount, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, validationErr(ErrMissingCredentials)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Keep the timing of unknown emails close to that of wrong passwords.
		_, _ = s.hasher.Compare(s.dummy(), password)
		s.metrics.RecordAuth("login_failed")
		return nil, nil, unauthorizedErr(ErrInvalidCredentials)
	}
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	ok, err := s.hasher.Compare(account.PasswordHash, password)
	if err != nil {
		s.logger.Error("stored credential unreadable", zap.String("account_id", account.ID), zap.Error(err))
		return nil, nil, apperrors.NewInternalError(err)
	}
	if !ok {
		s.metrics.RecordAuth("login_failed")
		return nil, nil, unauthorizedErr(ErrInvalidCredentials)
	}

	session, err := s.openSession(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordAuth("login")
	s.publish(ctx, events.NewEvent(events.EventSessionCreated, account.ID,
		events.SessionPayload{AccountID: account.ID, ExpiresAt: session.ExpiresAt}))
	return session, account.Public(), nil
}

func (s *AuthService) openSession(ctx context.Context, account *domain.Account) (*domain.Session, error) {
	now := s.now().UTC()
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.tokens()
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		session := &domain.Session{
			Token:     token,
			AccountID: account.ID,
			Email:     account.Email,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		err = s.sessions.Create(ctx, session)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		return session, nil
	}
	return nil, apperrors.NewInternalError(errors.New("could not mint a unique session token"))
}

// Invalidate removes the session. Unknown, empty and expired tokens are not errors.
func (s *AuthService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuth("logout")
	s.publish(ctx, events.NewEvent(events.EventSessionInvalidated, session.AccountID,
		events.SessionPayload{AccountID: session.AccountID, ExpiresAt: session.ExpiresAt}))
	return nil
}

// Resolve returns the account owning a live session. Expired sessions are
// purged here, on first access after expiry.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.PublicAccount, error) {
	if token == "" {
		return nil, unauthorizedErr(ErrNotAuthenticated)
	}

	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthorizedErr(ErrNotAuthenticated)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if session.ExpiredAt(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn("failed to purge expired session", zap.String("account_id", session.AccountID), zap.Error(err))
		}
		s.metrics.RecordAuth("expired")
		s.publish(ctx, events.NewEvent(events.EventSessionExpired, session.AccountID,
			events.SessionPayload{AccountID: session.AccountID, ExpiresAt: session.ExpiresAt}))
		return nil, unauthorizedErr(ErrSessionExpired)
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if errors.Is(err, repository.ErrNotFound) {
		_ = s.sessions.Delete(ctx, token)
		return nil, unauthorizedErr(ErrNotAuthenticated)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return account.Public(), nil
}

// SeedAccount creates a demo account at startup. An existing account is left untouched.
func (s *AuthService) SeedAccount(ctx context.Context, in SignupInput) error {
	_, err := s.CreateAccount(ctx, in)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("failed to prepare dummy hash", zap.Error(err))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func validationErr(err error) error {
	return apperrors.Wrap(apperrors.CodeValidation, http.StatusBadRequest, err)
}

func unauthorizedErr(err error) error {
	return apperrors.Wrap(apperrors.CodeUnauthorized, http.StatusUnauthorized, err)
}
