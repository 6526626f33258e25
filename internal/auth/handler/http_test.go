package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-tracker/server/internal/auth/service"
	"task-tracker/server/internal/security"
	sessiondomain "task-tracker/server/internal/session/domain"
	"task-tracker/server/internal/session/ledger"
	userdomain "task-tracker/server/internal/user/domain"
)

const testPassword = "P@SSWORD"

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*userdomain.User
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	copied := *u
	r.byID[u.ID] = &copied
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*sessiondomain.RefreshSession
}

func (r *memSessionRepo) Create(_ context.Context, s *sessiondomain.RefreshSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	copied := *s
	r.sessions[s.SecretDigest] = &copied
	return nil
}

func (r *memSessionRepo) GetByDigest(_ context.Context, digest string) (*sessiondomain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[digest]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *memSessionRepo) Rotate(ctx context.Context, digest string, userID int64, at time.Time, replacement *sessiondomain.RefreshSession) (bool, error) {
	r.mu.Lock()
	s, ok := r.sessions[digest]
	if !ok || s.UserID != userID || s.Revoked || !at.Before(s.ExpiresAt) {
		r.mu.Unlock()
		return false, nil
	}
	s.Revoked = true
	revokedAt := at
	s.RevokedAt = &revokedAt
	r.mu.Unlock()
	return true, r.Create(ctx, replacement)
}

func (r *memSessionRepo) RevokeAllByUser(_ context.Context, userID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Revoked {
			s.Revoked = true
			revokedAt := at
			s.RevokedAt = &revokedAt
		}
	}
	return nil
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	users := &memUserRepo{byID: make(map[int64]*userdomain.User)}
	sessions := ledger.New(&memSessionRepo{sessions: make(map[string]*sessiondomain.RefreshSession)}, 7*24*time.Hour)
	codec := security.NewTokenCodec([]byte("test-signing-key"), "task-tracker-auth")
	svc := service.NewAuthService(users, sessions, security.NewHasher(bcrypt.MinCost), codec, 30*time.Minute)

	r := mux.NewRouter()
	New(svc, zerolog.Nop(), nil, false, 7*24*time.Hour).Register(r)
	return r
}

func doSignup(t *testing.T, r *mux.Router, username, email string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"username":"` + username + `","email":"` + email + `","password":"` + testPassword + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doLogin(t *testing.T, r *mux.Router, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	t.Fatal("refresh_token cookie not set")
	return nil
}

func doRefresh(t *testing.T, r *mux.Router, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := doSignup(t, r, "alice", "alice@x.com")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var public userdomain.Public
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &public))
	assert.Equal(t, "alice", public.Username)
	assert.NotZero(t, public.ID)

	rec = doLogin(t, r, "alice", testPassword)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, public.ID, tok.UserID)

	cookie := refreshCookie(t, rec)
	assert.Equal(t, "/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	rec = doRefresh(t, r, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := refreshCookie(t, rec)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	// The consumed secret no longer rotates.
	rec = doRefresh(t, r, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestSignupConflict(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doSignup(t, r, "alice", "alice@x.com").Code)

	rec := doSignup(t, r, "alice", "other@x.com")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with the same username exists already.")

	rec = doSignup(t, r, "bob", "alice@x.com")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with the same email exists already.")
}

func TestSignupValidation(t *testing.T) {
	r := newTestRouter(t)

	body := `{"username":"alice","email":"alice@x.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 8 characters")
}

func TestWrongPassword(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doSignup(t, r, "alice", "alice@x.com").Code)

	rec := doLogin(t, r, "alice", "wrongpass")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect")

	// Unknown user reads the same.
	rec = doLogin(t, r, "mallory", testPassword)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect")
}

func TestRefreshWithoutCookie(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doSignup(t, r, "alice", "alice@x.com").Code)
	loginRec := doLogin(t, r, "alice", testPassword)
	require.Equal(t, http.StatusOK, loginRec.Code)
	var tok tokenResponse
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &tok))
	cookie := refreshCookie(t, loginRec)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Logged out")

	// The response clears the cookie.
	cleared := refreshCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The revoked session no longer refreshes.
	require.Equal(t, http.StatusUnauthorized, doRefresh(t, r, cookie).Code)

	// Logout is idempotent while the access token is still valid.
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRequiresBearer(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
