package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"swaply/internal/domain"
	"swaply/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return session.NewManager(rdb, time.Hour, zap.NewNop())
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	manager := newSessionManager(t)
	handler := RequireSession(manager, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "please login first", resp.Error)
}

func TestRequireSessionRejectsSessionWithoutIdentity(t *testing.T) {
	manager := newSessionManager(t)
	ctx := context.Background()

	sess := &session.Session{Cart: []domain.CartItem{{BookID: "1", Quantity: 1}}}
	saveRec := httptest.NewRecorder()
	require.NoError(t, manager.Save(ctx, saveRec, sess))

	handler := RequireSession(manager, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest("GET", "/api/cart", nil)
	for _, c := range saveRec.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSessionPassesSessionToHandler(t *testing.T) {
	manager := newSessionManager(t)
	ctx := context.Background()

	sess := &session.Session{Identity: &domain.GoogleIdentity{ID: "u1", Email: "a@gmail.com"}}
	saveRec := httptest.NewRecorder()
	require.NoError(t, manager.Save(ctx, saveRec, sess))

	var seen *session.Session
	handler := RequireSession(manager, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/cart", nil)
	for _, c := range saveRec.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "a@gmail.com", seen.Identity.Email)
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp APIError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "internal server error", resp.Error)
}
