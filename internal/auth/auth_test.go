package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"GeoSuite/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu     sync.Mutex
	users  map[string]string
	ids    map[string]int
	nextID int
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]string{}, ids: map[string]int{}}
}

func (m *memRepo) CreateUser(_ context.Context, login, _, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, repo.ErrUserExists
	}
	m.nextID++
	m.users[login] = password
	m.ids[login] = m.nextID
	return m.nextID, nil
}

func (m *memRepo) GetByLogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.users[login]
	if !ok {
		return 0, "", repo.ErrNotFound
	}
	return m.ids[login], hash, nil
}

func newEnv() *Authenv {
	return &Authenv{JWTkey: []byte("test-key"), Repo: newMemRepo()}
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestRegisterLoginAndAuthorize(t *testing.T) {
	env := newEnv()

	w := post(env.RegisterHandler, `{"login":"ana","email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = post(env.RegisterHandler, `{"login":"ana","email":"ana@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(env.LoginHandler, `{"login":"ana","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(env.LoginHandler, `{"login":"ana","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	var seen int
	protected := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/history", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, seen)
}

func TestRegisterValidation(t *testing.T) {
	env := newEnv()
	assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, `{"login":"a","email":"","password":"secret1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, `{"login":"a","email":"a@b.c","password":"123"}`).Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	env := newEnv()
	protected := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := &Authenv{JWTkey: []byte("other-key")}
	token, _, err := other.issueToken(7, "eve")
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenRoundTrip(t *testing.T) {
	env := newEnv()
	token, _, err := env.issueToken(42, "ben")
	require.NoError(t, err)
	id, login, err := env.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.Equal(t, "ben", login)
}

func TestLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimiterSweepEvictsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	for i := range 500 {
		limiter.getLimiter(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	assert.Equal(t, 500, limiter.Len())

	clock = clock.Add(LimiterTTL / 2)
	limiter.getLimiter("10.1.0.0")
	assert.Equal(t, 500, limiter.Len())

	clock = clock.Add(LimiterTTL/2 + time.Second)
	limiter.getLimiter("10.9.9.9")
	assert.Equal(t, 2, limiter.Len(), "idle clients dropped on the next request after the TTL")

	clock = clock.Add(2 * LimiterTTL)
	assert.Equal(t, 2, limiter.Sweep())
	assert.Equal(t, 0, limiter.Len())
}

func TestUserIDMissing(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)
}
