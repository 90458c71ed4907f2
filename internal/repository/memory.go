package repository

import (
	"context"
	"sync"
	"time"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

// MemoryAccountRepository keeps accounts in process memory.
// Safe for concurrent use; values are copied in and out.
type MemoryAccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Account
	byEmail map[string]string
}

// NewMemoryAccountRepository creates an empty in-memory account store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byID:    make(map[string]*domain.Account),
		byEmail: make(map[string]string),
	}
}

// Create stores the account unless its email is taken. Like the postgres
// repository it fills CreatedAt and UpdatedAt on the caller's account.
func (r *MemoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byID[account.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	r.byID[account.ID] = &stored
	r.byEmail[account.Email] = account.ID
	return nil
}

// GetByID looks up an account by id.
func (r *MemoryAccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *account
	return &out, nil
}

// GetByEmail looks up an account by normalized email.
func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

// MemorySessionRepository keeps sessions in process memory.
// Expired sessions stay until they are read or deleted; there is no sweeper.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemorySessionRepository creates an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domain.Session)}
}

// Create stores a new session.
func (r *MemorySessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.Token]; exists {
		return ErrDuplicate
	}
	r.sessions[session.Token] = *session
	return nil
}

// Get returns a copy of the session stored under token.
func (r *MemorySessionRepository) Get(_ context.Context, token string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

// Delete removes the session; deleting an unknown token is a no-op.
func (r *MemorySessionRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}

// Size returns the number of stored sessions, expired ones included.
func (r *MemorySessionRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Compile-time interface verification.
var (
	_ AccountRepository = (*MemoryAccountRepository)(nil)
	_ SessionRepository = (*MemorySessionRepository)(nil)
)
