package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bracula/campus/internal/metrics"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
	"github.com/bracula/campus/pkg/utils"
)

const tokenBytes = 32

// Session lifecycle events recorded in metrics.
const (
	EventCreated   = "created"
	EventDestroyed = "destroyed"
	EventExpired   = "expired"
	EventInvalid   = "invalid"
)

// ErrNotFound is returned by a Store when no live record exists for a key.
var ErrNotFound = errors.New("session not found")

var errExpired = errors.New("session expired")

// Identity is the authenticated user bound to a session, with the display
// fields cached for cheap reads.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Session is the server-side record behind a token.
type Session struct {
	Identity
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Store persists sessions under the SHA-256 of their token.
//
// Touch runs fn against the stored record while holding that key exclusively
// and persists the mutated record with the ttl fn returns. If fn fails the
// record is removed and the error is returned. Different keys never contend.
type Store interface {
	Create(ctx context.Context, key string, s Session, ttl time.Duration) error
	Touch(ctx context.Context, key string, fn func(s *Session) (time.Duration, error)) (Session, error)
	Delete(ctx context.Context, key string) error
}

// Options configures session expiry.
type Options struct {
	IdleTimeout time.Duration
	// AbsoluteTimeout caps a session's age regardless of activity; 0 disables it.
	AbsoluteTimeout time.Duration
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	store    Store
	idle     time.Duration
	absolute time.Duration
	now      func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Manager{store: store, idle: opts.IdleTimeout, absolute: opts.AbsoluteTimeout, now: opts.Clock}
}

// IdleTimeout is the inactivity window after which a session is invalid.
func (m *Manager) IdleTimeout() time.Duration { return m.idle }

// Create stores a new session for id and returns its opaque token.
func (m *Manager) Create(ctx context.Context, id Identity) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "generate session token failed")
	}
	token := hex.EncodeToString(buf)
	key := utils.SHA256Hex(token)

	now := m.now()
	s := Session{Identity: id, CreatedAt: now, LastSeen: now}
	if err := m.store.Create(ctx, key, s, m.ttl(s, now)); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "store session failed")
	}
	metrics.RecordSession(EventCreated)
	logger.L().Debug("session created", zap.Int64("user_id", id.UserID), logger.SessionRef(key))
	return token, nil
}

// Resolve returns the session behind token and slides its idle expiry.
// An empty token is simply unauthenticated: (nil, nil). Malformed, unknown
// and expired tokens fail with session_invalid.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	if !wellFormed(token) {
		metrics.RecordSession(EventInvalid)
		return nil, invalidSession()
	}

	key := utils.SHA256Hex(token)
	s, err := m.store.Touch(ctx, key, func(s *Session) (time.Duration, error) {
		now := m.now()
		if m.expired(*s, now) {
			return 0, errExpired
		}
		s.LastSeen = now
		return m.ttl(*s, now), nil
	})
	switch {
	case err == nil:
		return &s, nil
	case errors.Is(err, errExpired):
		metrics.RecordSession(EventExpired)
		logger.L().Debug("session expired", logger.SessionRef(key))
		return nil, invalidSession()
	case errors.Is(err, ErrNotFound):
		metrics.RecordSession(EventInvalid)
		return nil, invalidSession()
	default:
		return nil, appErr.Wrap(err, appErr.CodeInternal, "load session failed")
	}
}

// Destroy removes the session. Unknown, malformed and already destroyed
// tokens are not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if !wellFormed(token) {
		return nil
	}
	key := utils.SHA256Hex(token)
	if err := m.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return appErr.Wrap(err, appErr.CodeInternal, "delete session failed")
	}
	metrics.RecordSession(EventDestroyed)
	return nil
}

func (m *Manager) expired(s Session, now time.Time) bool {
	if now.Sub(s.LastSeen) >= m.idle {
		return true
	}
	return m.absolute > 0 && now.Sub(s.CreatedAt) >= m.absolute
}

// ttl is the time left until the earlier of idle and absolute expiry.
func (m *Manager) ttl(s Session, now time.Time) time.Duration {
	ttl := m.idle
	if m.absolute > 0 {
		if left := s.CreatedAt.Add(m.absolute).Sub(now); left < ttl {
			ttl = left
		}
	}
	return ttl
}

func wellFormed(token string) bool {
	if len(token) != hex.EncodedLen(tokenBytes) {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

func invalidSession() error {
	return appErr.New(appErr.CodeSessionInvalid, "session invalid")
}
