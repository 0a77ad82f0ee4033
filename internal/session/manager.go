// Package session stores per-visitor state (Google identity and shopping
// cart) in redis, keyed by an opaque cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"swaply/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CookieName carries the session id.
const CookieName = "swaply_session"

const keyPrefix = "session:"

// ErrNoSession is returned when the request carries no live session.
var ErrNoSession = errors.New("no active session")

// Session is the per-visitor document.
type Session struct {
	ID       string                 `json:"-"`
	Identity *domain.GoogleIdentity `json:"identity,omitempty"`
	Cart     []domain.CartItem      `json:"cart,omitempty"`
}

// LoggedIn reports whether a Google identity is attached.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Identity != nil && s.Identity.ID != ""
}

// ClearCart empties the cart.
func (s *Session) ClearCart() {
	s.Cart = nil
}

// Manager loads and persists sessions.
type Manager struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewManager creates a Manager. Sessions expire after ttl of inactivity;
// every save refreshes the expiry.
func NewManager(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Manager {
	return &Manager{rdb: rdb, ttl: ttl, log: log}
}

// Get loads the session named by the request cookie. A missing cookie or an
// expired redis key yields ErrNoSession.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	data, err := m.rdb.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess := &Session{ID: cookie.Value}
	if err := json.Unmarshal(data, sess); err != nil {
		m.log.Warn("Discarding undecodable session", zap.String("session_id", cookie.Value), zap.Error(err))
		return nil, ErrNoSession
	}
	return sess, nil
}

// Save persists the session, allocating an id and setting the cookie for a
// fresh one.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.rdb.Set(ctx, keyPrefix+sess.ID, data, m.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Destroy deletes the session and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err == nil && cookie.Value != "" {
		if err := m.rdb.Del(ctx, keyPrefix+cookie.Value).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
