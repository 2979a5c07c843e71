package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrNoSession           = errors.New("admin session not found")
)

// Store is the redis surface the manager relies on.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// Session is the server-side record of an authenticated back-office login.
type Session struct {
	AccessID     string            `json:"access_id"`
	AccountID    uuid.UUID         `json:"account_id"`
	Role         enums.AccountRole `json:"role"`
	RefreshToken string            `json:"refresh_token"`
	IssuedAt     time.Time         `json:"issued_at"`
}

// Manager creates, rotates, and revokes admin sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	Lookup(ctx context.Context, accessID string) (*Session, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}, nil
}

// Generate opens a session for the account under accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, accountID uuid.UUID, role enums.AccountRole) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	sess := Session{
		AccessID:     accessID,
		AccountID:    accountID,
		Role:         role,
		RefreshToken: token,
		IssuedAt:     m.now().UTC(),
	}
	if err := m.write(ctx, sess); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate swaps the session under oldAccessID for a fresh one when the refresh token matches.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (*Session, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return nil, ErrInvalidRefreshToken
	}
	current, err := m.Lookup(ctx, oldAccessID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(current.RefreshToken), []byte(provided)) != 1 {
		return nil, ErrInvalidRefreshToken
	}

	token, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	next := Session{
		AccessID:     NewAccessID(),
		AccountID:    current.AccountID,
		Role:         current.Role,
		RefreshToken: token,
		IssuedAt:     m.now().UTC(),
	}
	if err := m.write(ctx, next); err != nil {
		return nil, err
	}
	if err := m.store.Del(ctx, m.store.AccessSessionKey(oldAccessID)); err != nil {
		return nil, err
	}
	return &next, nil
}

// Revoke ends the session tied to accessID.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// Lookup returns the live session for accessID or ErrNoSession.
func (m *Manager) Lookup(ctx context.Context, accessID string) (*Session, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, ErrNoSession
	}
	raw, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (m *Manager) write(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Set(ctx, m.store.AccessSessionKey(sess.AccessID), string(payload), m.ttl)
}

// NewAccessID produces the identifier used as JWT jti and redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
