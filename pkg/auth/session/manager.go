package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/florista/bouquet-bff/pkg/config"
	"github.com/florista/bouquet-bff/pkg/enums"
	redisclient "github.com/florista/bouquet-bff/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when the access id has no live session.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Profile is the user snapshot cached with the session.
type Profile struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Phone string         `json:"phone,omitempty"`
	Role  enums.UserRole `json:"role"`
}

// Session binds a BFF access token to the backend token it was exchanged for.
// The backend token never leaves the server.
type Session struct {
	AccessID     string    `json:"-"`
	BackendToken string    `json:"backend_token"`
	User         Profile   `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Manager stores login sessions in Redis keyed by access id.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// Reader exposes the read-only surface needed by middleware.
type Reader interface {
	Get(ctx context.Context, accessID string) (*Session, error)
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
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// TTL is how long new sessions live.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create stores a new session and returns it with its access id populated.
func (m *Manager) Create(ctx context.Context, backendToken string, user Profile) (*Session, error) {
	if strings.TrimSpace(backendToken) == "" {
		return nil, fmt.Errorf("backend token is required")
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	now := m.now().UTC()
	sess := &Session{
		AccessID:     NewAccessID(),
		BackendToken: backendToken,
		User:         user,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(sess.AccessID), payload, m.ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads the session for accessID.
func (m *Manager) Get(ctx context.Context, accessID string) (*Session, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	sess.AccessID = accessID
	return &sess, nil
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// NewAccessID produces a stable identifier used as the JWT jti/Redis key.
func NewAccessID() string {
	return uuid.NewString()
}
