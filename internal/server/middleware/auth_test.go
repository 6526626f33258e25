package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	userdomain "task-tracker/server/internal/user/domain"
)

type fakeVerifier struct {
	user *userdomain.User
}

func (f *fakeVerifier) VerifyAccess(_ context.Context, token string) (*userdomain.User, error) {
	if f.user != nil && token == "good-token" {
		return f.user, nil
	}
	return nil, errors.New("invalid token")
}

func TestRequireAuth_NoToken(t *testing.T) {
	handler := RequireAuth(&fakeVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/task/list", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	handler := RequireAuth(&fakeVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/task/list", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	verifier := &fakeVerifier{user: &userdomain.User{ID: 7, Username: "alice"}}

	var got *userdomain.User
	handler := RequireAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/task/list", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || got.ID != 7 {
		t.Errorf("user in context = %+v, want ID 7", got)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"extra whitespace", "  Bearer  abc123  ", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearer(req); got != tt.want {
				t.Errorf("extractBearer(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestGetUser_Empty(t *testing.T) {
	if u, ok := GetUser(context.Background()); ok || u != nil {
		t.Errorf("GetUser on empty context = %v, %v; want nil, false", u, ok)
	}
}
