package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"swaply/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewManager(rdb, time.Hour, zap.NewNop()), mr
}

func requestWithCookie(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess := &Session{
		Identity: &domain.GoogleIdentity{ID: "123", Email: "a@gmail.com", Name: "A"},
		Cart:     []domain.CartItem{{BookID: "7", Title: "Dune", Price: 250, Quantity: 2}},
	}

	w := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, w, sess))
	require.NotEmpty(t, sess.ID, "fresh session gets an id")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	got, err := m.Get(ctx, requestWithCookie(w))
	require.NoError(t, err)
	assert.True(t, got.LoggedIn())
	assert.Equal(t, "a@gmail.com", got.Identity.Email)
	require.Len(t, got.Cart, 1)
	assert.Equal(t, "Dune", got.Cart[0].Title)
}

func TestGetWithoutCookie(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(context.Background(), httptest.NewRequest("GET", "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGetAfterExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	sess := &Session{Identity: &domain.GoogleIdentity{ID: "123"}}
	w := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, w, sess))

	mr.FastForward(2 * time.Hour)

	_, err := m.Get(ctx, requestWithCookie(w))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDestroy(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess := &Session{Identity: &domain.GoogleIdentity{ID: "123"}}
	w := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, w, sess))

	r := requestWithCookie(w)
	w2 := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, w2, r))

	_, err := m.Get(ctx, r)
	assert.ErrorIs(t, err, ErrNoSession)

	cookies := w2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie is expired")
}

func TestSaveRefreshesExistingSession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess := &Session{Identity: &domain.GoogleIdentity{ID: "123"}}
	w := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, w, sess))
	id := sess.ID

	sess.Cart = append(sess.Cart, domain.CartItem{BookID: "1", Quantity: 1})
	w2 := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, w2, sess))

	assert.Equal(t, id, sess.ID, "saving again keeps the id")
	assert.Empty(t, w2.Result().Cookies(), "no second cookie issued")
}

func TestLoggedIn(t *testing.T) {
	assert.False(t, (&Session{}).LoggedIn())
	assert.False(t, (*Session)(nil).LoggedIn())
	assert.True(t, (&Session{Identity: &domain.GoogleIdentity{ID: "x"}}).LoggedIn())
}
