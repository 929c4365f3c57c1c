package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/megano/shop-backend/pkg/config"
	redisclient "github.com/megano/shop-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

const sessionMarker = "active"

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager tracks which access-token session IDs are live in Redis, so that
// sign-out can revoke a token before its JWT expiry.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl < accessTTL {
		return nil, fmt.Errorf("session ttl (%s) must cover the access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// NewSessionID returns a fresh identifier for use as a JWT jti.
func NewSessionID() string {
	return uuid.NewString()
}

// Start registers the session ID so subsequent requests pass the middleware check.
func (m *Manager) Start(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(sessionID), sessionMarker, m.ttl)
}

// HasSession reports whether the session ID is still registered.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	_, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke deletes the session registration tied to the session ID.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}
