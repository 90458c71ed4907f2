package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

const sessionKeyPrefix = "session:"

// RedisSessionRepository stores sessions as JSON values keyed by token.
//
// Keys outlive ExpiresAt by a grace window so the next access after expiry can
// still tell an expired session from an unknown one. Redis removes the key once
// the grace window passes.
type RedisSessionRepository struct {
	client *redis.Client
	grace  time.Duration
	now    func() time.Time
}

// NewRedisSessionRepository creates a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, grace time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, grace: grace, now: time.Now}
}

func (r *RedisSessionRepository) key(token string) string {
	return sessionKeyPrefix + token
}

// Create stores the session with a key TTL of its remaining lifetime plus grace.
func (r *RedisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.Token == "" || session.AccountID == "" {
		return errors.New("session: missing token or account id")
	}

	ttl := session.ExpiresAt.Sub(r.now()) + r.grace
	if ttl <= 0 {
		return errors.New("session: expires_at must be in the future")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(session.Token), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

// Get loads the session stored under token.
func (r *RedisSessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	val, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &session, nil
}

// Delete removes the session key.
func (r *RedisSessionRepository) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

var _ SessionRepository = (*RedisSessionRepository)(nil)
