package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"task-tracker/server/internal/security"
	sessiondomain "task-tracker/server/internal/session/domain"
	"task-tracker/server/internal/session/ledger"
	userdomain "task-tracker/server/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP status codes.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh secret")
)

// ValidationError reports malformed input. It is a client fault, never a
// server fault.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// TokenPair is the outcome of Login and Refresh: a short-lived access token
// for the Authorization header and a raw refresh secret for the cookie.
type TokenPair struct {
	AccessToken   string
	RefreshSecret string
	UserID        int64
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// SessionLedger is the minimal refresh session ledger needed by the auth service.
type SessionLedger interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Validate(ctx context.Context, rawSecret string) (*sessiondomain.RefreshSession, error)
	Rotate(ctx context.Context, rawSecret string, userID int64) (string, error)
	RevokeAll(ctx context.Context, userID int64) error
}

// Hasher digests and verifies passwords. The concrete algorithm is injected
// so it can change without touching this package.
type Hasher interface {
	Digest(password []byte) (string, error)
	Matches(password []byte, hash string) bool
}

// AuthService implements signup, login, logout, refresh rotation, and access
// token verification.
type AuthService struct {
	users     UserRepo
	sessions  SessionLedger
	hasher    Hasher
	codec     *security.TokenCodec
	accessTTL time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	users UserRepo,
	sessions SessionLedger,
	hasher Hasher,
	codec *security.TokenCodec,
	accessTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		codec:     codec,
		accessTTL: accessTTL,
	}
}

// Signup creates a user with the given username, email, and password.
// Returns the public view of the created user, never the password digest.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*userdomain.Public, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		return nil, validationErrorf("username is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	byName, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if byName != nil {
		return nil, ErrUsernameTaken
	}
	byEmail, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if byEmail != nil {
		return nil, ErrEmailTaken
	}
	hashed, err := s.hasher.Digest([]byte(password))
	if err != nil {
		return nil, err
	}
	user := &userdomain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup can slip past the lookups above; the store's
		// unique constraint decides, and its verdict maps to the same
		// conflict errors.
		switch {
		case errors.Is(err, userdomain.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, userdomain.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// Login authenticates with username and password. On success it mints one
// access token and one refresh secret. Unknown user and wrong password fail
// identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Matches([]byte(password), user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.mintPair(ctx, user.ID, s.sessions.Issue)
}

// Refresh consumes the presented refresh secret and returns a fresh token
// pair. After a successful call the old secret is permanently unusable.
func (s *AuthService) Refresh(ctx context.Context, rawSecret string) (*TokenPair, error) {
	if rawSecret == "" {
		return nil, ErrInvalidRefresh
	}
	sess, err := s.sessions.Validate(ctx, rawSecret)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidOrExpired) || errors.Is(err, ledger.ErrSecretReused) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	issue := func(ctx context.Context, userID int64) (string, error) {
		return s.sessions.Rotate(ctx, rawSecret, userID)
	}
	pair, err := s.mintPair(ctx, sess.UserID, issue)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidOrExpired) || errors.Is(err, ledger.ErrSecretReused) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	return pair, nil
}

// Logout revokes every active refresh session of the acting user. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.sessions.RevokeAll(ctx, userID)
}

// VerifyAccess checks the access token and returns the user it identifies.
// Fails with ErrInvalidCredentials for a missing, malformed, expired, or
// wrong-kind token, and for a subject that no longer resolves to a user.
func (s *AuthService) VerifyAccess(ctx context.Context, token string) (*userdomain.User, error) {
	claims, err := s.codec.VerifyKind(token, security.TokenKindAccess)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) mintPair(ctx context.Context, userID int64, issueSecret func(context.Context, int64) (string, error)) (*TokenPair, error) {
	secret, err := issueSecret(ctx, userID)
	if err != nil {
		return nil, err
	}
	access, err := s.codec.Issue(strconv.FormatInt(userID, 10), security.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshSecret: secret, UserID: userID}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationErrorf("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return validationErrorf("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return validationErrorf("password must be at least 8 characters")
	}
	return nil
}
