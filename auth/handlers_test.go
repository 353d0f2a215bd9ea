package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirPedr/homero/config"
	"github.com/SirPedr/homero/password"
)

type testServer struct {
	router *chi.Mux
	store  *memoryStore
	issuer *TokenIssuer
}

func newTestServer(t *testing.T, cfg *config.AuthConfig, production bool) *testServer {
	t.Helper()

	store := newMemoryStore()
	issuer := NewTokenIssuer(cfg)
	svc := NewService(store, password.NewHasher(password.DefaultParams()), issuer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handlers := NewHandlers(svc, production)

	r := chi.NewRouter()
	r.Post("/register", handlers.HandleRegister())
	r.Post("/login", handlers.HandleLogin())

	return &testServer{router: r, store: store, issuer: issuer}
}

func (ts *testServer) post(t *testing.T, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

const registerBody = `{"username":"testuser","email":"test@example.com","password":"password123"}`

func TestRegisterLoginScenario(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), false)

	// First registration succeeds and inserts exactly one row.
	rec := ts.post(t, "/register", registerBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ts.store.count())

	// An immediate repeat conflicts and leaves the single row in place.
	rec = ts.post(t, "/register", registerBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
	assert.Equal(t, 1, ts.store.count())

	// Login with the same credentials returns the user payload.
	rec = ts.post(t, "/login", `{"username":"testuser","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "testuser", resp.User.Username)
	assert.Equal(t, "test@example.com", resp.User.Email)
	assert.Equal(t, ts.store.byUsername("testuser").ID, resp.User.UserID)
}

func TestLogin_SetsAuthCookies(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), false)
	require.Equal(t, http.StatusOK, ts.post(t, "/register", registerBody).Code)

	rec := ts.post(t, "/login", `{"username":"testuser","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access := byName["access_token"]
	require.NotNil(t, access)
	assert.Equal(t, 900, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)

	refresh := byName["refresh_token"]
	require.NotNil(t, refresh)
	assert.Equal(t, 604800, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)

	// The cookie values are real tokens under the right secrets.
	_, err := ts.issuer.VerifyAccessToken(access.Value)
	assert.NoError(t, err)
	_, err = ts.issuer.VerifyRefreshToken(refresh.Value)
	assert.NoError(t, err)
}

func TestLogin_SecureCookiesInProduction(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), true)
	require.Equal(t, http.StatusOK, ts.post(t, "/register", registerBody).Code)

	rec := ts.post(t, "/login", `{"username":"testuser","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		assert.True(t, c.Secure, "cookie %s must be Secure in production", c.Name)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), false)
	require.Equal(t, http.StatusOK, ts.post(t, "/register", registerBody).Code)

	cases := []struct {
		name string
		body string
	}{
		{"unknown username", `{"username":"ghost","password":"password123"}`},
		{"wrong password", `{"username":"testuser","password":"wrongpassword"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.post(t, "/login", tc.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid username or password")
			assert.Empty(t, rec.Result().Cookies(), "no cookies on failed login")
		})
	}
}

func TestRegister_ValidationResponses(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), false)

	cases := []struct {
		name string
		body string
	}{
		{"empty username", `{"username":"","email":"test@example.com","password":"password123"}`},
		{"whitespace-only username", `{"username":"   ","email":"test@example.com","password":"password123"}`},
		{"username longer than 255 characters", fmt.Sprintf(`{"username":%q,"email":"test@example.com","password":"password123"}`, strings.Repeat("a", 256))},
		{"invalid email", `{"username":"testuser","email":"invalid-email","password":"password123"}`},
		{"short password", `{"username":"testuser","email":"test@example.com","password":"1234567"}`},
		{"long password", fmt.Sprintf(`{"username":"testuser","email":"test@example.com","password":%q}`, strings.Repeat("a", 101))},
		{"missing fields", `{}`},
		{"non-string username", `{"username":42,"email":"test@example.com","password":"password123"}`},
		{"malformed json", `{"username":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.post(t, "/register", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
	assert.Equal(t, 0, ts.store.count(), "no row inserted on any failure path")
}

func TestRegister_BoundaryLengthsAccepted(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), false)

	cases := []struct {
		name string
		body string
	}{
		{"password length 8", `{"username":"user1","email":"u1@example.com","password":"12345678"}`},
		{"password length 100", fmt.Sprintf(`{"username":"user2","email":"u2@example.com","password":%q}`, strings.Repeat("a", 100))},
		{"username length 255", fmt.Sprintf(`{"username":%q,"email":"u3@example.com","password":"password123"}`, strings.Repeat("a", 255))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.post(t, "/register", tc.body)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestLogin_ValidationResponses(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, testAuthConfig(), false)

	for name, body := range map[string]string{
		"missing password": `{"username":"testuser"}`,
		"missing username": `{"password":"password123"}`,
		"empty payload":    `{}`,
		"malformed json":   `not json`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := ts.post(t, "/login", body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestMiddleware_ProtectsRoutes(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testAuthConfig())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Middleware(issuer))
		r.Get("/me", func(w http.ResponseWriter, req *http.Request) {
			claims, ok := ClaimsFromContext(req.Context())
			require.True(t, ok)
			WriteJSON(w, http.StatusOK, claims.Username)
		})
	})

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		token, err := issuer.IssueAccessToken(testUser())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "testuser")
	})

	t.Run("bearer header fallback", func(t *testing.T) {
		token, err := issuer.IssueAccessToken(testUser())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredCfg := testAuthConfig()
		expiredCfg.AccessTokenDuration = -time.Minute
		token, err := NewTokenIssuer(expiredCfg).IssueAccessToken(testUser())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired")
	})

	t.Run("wrong secret", func(t *testing.T) {
		wrongCfg := testAuthConfig()
		wrongCfg.AccessSecret = "another-secret"
		token, err := NewTokenIssuer(wrongCfg).IssueAccessToken(testUser())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
