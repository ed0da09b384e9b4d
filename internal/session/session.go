// Package session holds the client-side authentication state: a bearer token,
// the portal role and the user record, persisted in an injected kv.Store.
//
// The role and user record are only reported while a token is stored.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/kv"
	"backend-touristsafety/internal/logger"
)

// Storage keys, shared with the browser client.
const (
	TokenKey    = "tourist_safety_token"
	UserTypeKey = "user_type"
	UserInfoKey = "user_info"
)

// LoginPath is where Logout sends the user.
const LoginPath = "/login"

var (
	ErrInvalidCredentials = identity.ErrInvalidCredentials
	ErrLoginFailed        = errors.New("login failed")
	ErrRegisterFailed     = errors.New("registration failed")
)

// Backend authenticates against whatever holds the accounts.
type Backend interface {
	Login(ctx context.Context, creds identity.Credentials) (identity.Grant, error)
	Register(ctx context.Context, reg identity.Registration) (identity.Grant, error)
}

// Navigator moves the user interface to another entry point.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Result is the outcome of Login and Register. Failures are reported here, never as panics
// or separate error returns, so callers can branch on Success.
type Result struct {
	Success  bool              `json:"success"`
	Token    string            `json:"token,omitempty"`
	Role     identity.Role     `json:"userType,omitempty"`
	UserInfo identity.UserInfo `json:"userInfo"`
	Err      error             `json:"-"`
}

// Message returns the user-facing failure message, empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	if errors.Is(r.Err, ErrInvalidCredentials) {
		return "Invalid credentials"
	}
	if errors.Is(r.Err, ErrRegisterFailed) {
		return "Registration failed"
	}
	return "Login failed"
}

type Session struct {
	store     kv.Store
	backend   Backend
	navigator Navigator
}

type Option func(*Session)

func WithNavigator(n Navigator) Option {
	return func(s *Session) { s.navigator = n }
}

func New(store kv.Store, backend Backend, opts ...Option) *Session {
	s := &Session{store: store, backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Login(ctx context.Context, email, password string, role identity.Role) Result {
	grant, err := s.backend.Login(ctx, identity.Credentials{Email: email, Password: password, Role: role})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return Result{Err: ErrInvalidCredentials}
		}
		logger.L().Warn("session_login_error", "role", role.String(), "err", err)
		return Result{Err: fmt.Errorf("%w: %v", ErrLoginFailed, err)}
	}
	if err := s.persist(ctx, grant); err != nil {
		logger.L().Warn("session_persist_error", "err", err)
		return Result{Err: fmt.Errorf("%w: %v", ErrLoginFailed, err)}
	}
	return Result{Success: true, Token: grant.Token, Role: grant.Role, UserInfo: grant.UserInfo}
}

func (s *Session) Register(ctx context.Context, reg identity.Registration) Result {
	grant, err := s.backend.Register(ctx, reg)
	if err == nil {
		err = s.persist(ctx, grant)
	}
	if err != nil {
		logger.L().Warn("session_register_error", "err", err)
		return Result{Err: fmt.Errorf("%w: %v", ErrRegisterFailed, err)}
	}
	return Result{Success: true, Token: grant.Token, Role: grant.Role, UserInfo: grant.UserInfo}
}

// Logout clears the stored session and navigates to the login entry point.
// Removal keeps going past store errors so as much state as possible is dropped.
func (s *Session) Logout(ctx context.Context) {
	for _, key := range []string{TokenKey, UserTypeKey, UserInfoKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			logger.L().Warn("session_clear_error", "key", key, "err", err)
		}
	}
	if s.navigator != nil {
		s.navigator.Navigate(LoginPath)
	}
}

func (s *Session) Token(ctx context.Context) string {
	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil || !ok {
		return ""
	}
	return token
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// UserType returns RoleNone when logged out.
func (s *Session) UserType(ctx context.Context) identity.Role {
	if !s.IsAuthenticated(ctx) {
		return identity.RoleNone
	}
	v, ok, err := s.store.Get(ctx, UserTypeKey)
	if err != nil || !ok {
		return identity.RoleNone
	}
	return identity.ParseRole(v)
}

func (s *Session) UserInfo(ctx context.Context) (identity.UserInfo, bool) {
	if !s.IsAuthenticated(ctx) {
		return identity.UserInfo{}, false
	}
	v, ok, err := s.store.Get(ctx, UserInfoKey)
	if err != nil || !ok {
		return identity.UserInfo{}, false
	}
	var info identity.UserInfo
	if err := json.Unmarshal([]byte(v), &info); err != nil {
		return identity.UserInfo{}, false
	}
	return info, true
}

// AuthHeader returns the Authorization header for the current token, or an empty map.
func (s *Session) AuthHeader(ctx context.Context) map[string]string {
	token := s.Token(ctx)
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// persist drops any previous token first and writes the new one last, so a
// stored token always belongs to the stored role and user.
func (s *Session) persist(ctx context.Context, grant identity.Grant) error {
	info, err := json.Marshal(grant.UserInfo)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, TokenKey); err != nil {
		return err
	}
	if err := s.store.Set(ctx, UserInfoKey, string(info)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, UserTypeKey, string(grant.Role)); err != nil {
		return err
	}
	return s.store.Set(ctx, TokenKey, grant.Token)
}
