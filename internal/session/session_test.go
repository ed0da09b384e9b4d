package session

import (
	"context"
	"errors"
	"testing"

	"backend-touristsafety/internal/auth"
	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/kv"

	"golang.org/x/crypto/bcrypt"
)

func newDemoSession(t *testing.T, opts ...Option) (*Session, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	backend := auth.NewService("test-secret", auth.WithLatency(0, 0), auth.WithBcryptCost(bcrypt.MinCost))
	return New(store, backend, opts...), store
}

type fakeBackend struct {
	grant identity.Grant
	err   error
}

func (f fakeBackend) Login(context.Context, identity.Credentials) (identity.Grant, error) {
	return f.grant, f.err
}

func (f fakeBackend) Register(context.Context, identity.Registration) (identity.Grant, error) {
	return f.grant, f.err
}

type failingStore struct {
	*kv.MemoryStore
	failSet    bool
	failSetKey string
	failGet    bool
	failRemove bool
}

var errStore = errors.New("store down")

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStore
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet || (f.failSetKey != "" && key == f.failSetKey) {
		return errStore
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errStore
	}
	return f.MemoryStore.Remove(ctx, key)
}

func TestLoginLogoutScenario(t *testing.T) {
	var navigated []string
	s, store := newDemoSession(t, WithNavigator(NavigatorFunc(func(p string) { navigated = append(navigated, p) })))
	ctx := context.Background()

	if s.IsAuthenticated(ctx) {
		t.Fatalf("expected logged out before login")
	}

	res := s.Login(ctx, "tourist@demo.com", "demo123", identity.RoleTourist)
	if !res.Success || res.Err != nil || res.Message() != "" {
		t.Fatalf("expected success, got %+v", res)
	}
	if !s.IsAuthenticated(ctx) {
		t.Fatalf("expected authenticated after login")
	}
	if s.UserType(ctx) != identity.RoleTourist {
		t.Fatalf("unexpected role %q", s.UserType(ctx))
	}
	info, ok := s.UserInfo(ctx)
	if !ok || info.Name != "John Doe" || info.ID != "tourist-001" {
		t.Fatalf("unexpected user info %+v", info)
	}
	if s.Token(ctx) != res.Token {
		t.Fatalf("expected stored token to match result")
	}

	s.Logout(ctx)
	if s.IsAuthenticated(ctx) {
		t.Fatalf("expected logged out after logout")
	}
	if store.Len() != 0 {
		t.Fatalf("expected all keys removed, %d left", store.Len())
	}
	if len(navigated) != 1 || navigated[0] != LoginPath {
		t.Fatalf("expected navigation to login, got %v", navigated)
	}
}

func TestLoginPolice(t *testing.T) {
	s, _ := newDemoSession(t)
	ctx := context.Background()

	res := s.Login(ctx, "police@demo.com", "demo123", identity.RolePolice)
	if !res.Success || res.Role != identity.RolePolice {
		t.Fatalf("expected police login, got %+v", res)
	}
	if info, _ := s.UserInfo(ctx); info.Name != "Officer Smith" {
		t.Fatalf("unexpected officer %+v", info)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s, store := newDemoSession(t)
	ctx := context.Background()

	cases := []struct {
		email, password string
		role            identity.Role
	}{
		{"tourist@demo.com", "wrong", identity.RoleTourist},
		{"police@demo.com", "demo123", identity.RoleTourist},
		{"tourist@demo.com", "demo123", identity.RolePolice},
	}
	for _, tc := range cases {
		res := s.Login(ctx, tc.email, tc.password, tc.role)
		if res.Success || !errors.Is(res.Err, ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %+v", res)
		}
		if res.Message() != "Invalid credentials" {
			t.Fatalf("unexpected message %q", res.Message())
		}
	}
	if s.IsAuthenticated(ctx) || store.Len() != 0 {
		t.Fatalf("expected nothing stored after failed logins")
	}
}

func TestLoginBackendError(t *testing.T) {
	s := New(kv.NewMemoryStore(), fakeBackend{err: errors.New("boom")})
	res := s.Login(context.Background(), "a", "b", identity.RoleTourist)
	if res.Success || !errors.Is(res.Err, ErrLoginFailed) || res.Message() != "Login failed" {
		t.Fatalf("expected login failed, got %+v", res)
	}
}

func TestLoginStoreError(t *testing.T) {
	store := &failingStore{MemoryStore: kv.NewMemoryStore(), failSet: true}
	s := New(store, fakeBackend{grant: identity.Grant{Token: "t", Role: identity.RoleTourist}})
	res := s.Login(context.Background(), "a", "b", identity.RoleTourist)
	if res.Success || !errors.Is(res.Err, ErrLoginFailed) {
		t.Fatalf("expected login failed, got %+v", res)
	}
	if s.IsAuthenticated(context.Background()) {
		t.Fatalf("expected no token after store failure")
	}
}

func TestReloginTokenWriteFailureDropsOldSession(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: kv.NewMemoryStore()}
	backend := auth.NewService("test-secret", auth.WithLatency(0, 0), auth.WithBcryptCost(bcrypt.MinCost))
	s := New(store, backend)

	if res := s.Login(ctx, "tourist@demo.com", "demo123", identity.RoleTourist); !res.Success {
		t.Fatalf("first login: %+v", res)
	}

	store.failSetKey = TokenKey
	res := s.Login(ctx, "police@demo.com", "demo123", identity.RolePolice)
	if res.Success || !errors.Is(res.Err, ErrLoginFailed) {
		t.Fatalf("expected login failure, got %+v", res)
	}
	if s.IsAuthenticated(ctx) || s.Token(ctx) != "" {
		t.Fatalf("tourist token must not survive next to the police user")
	}
}

func TestLoginRemoveError(t *testing.T) {
	store := &failingStore{MemoryStore: kv.NewMemoryStore(), failRemove: true}
	s := New(store, fakeBackend{grant: identity.Grant{Token: "t", Role: identity.RoleTourist}})
	if res := s.Login(context.Background(), "a", "b", identity.RoleTourist); res.Success {
		t.Fatalf("expected login to fail when the old token cannot be cleared")
	}
}

func TestRegister(t *testing.T) {
	s, _ := newDemoSession(t)
	ctx := context.Background()

	res := s.Register(ctx, identity.Registration{
		Name:        "Asha",
		Email:       "asha@example.com",
		Phone:       "+91 98765 43210",
		Destination: "Agra",
		Role:        identity.RoleTourist,
	})
	if !res.Success {
		t.Fatalf("expected register success, got %+v", res)
	}
	if !s.IsAuthenticated(ctx) || s.UserType(ctx) != identity.RoleTourist {
		t.Fatalf("expected tourist session after register")
	}
	info, ok := s.UserInfo(ctx)
	if !ok || info.Email != "asha@example.com" || info.Destination == nil || *info.Destination != "Agra" {
		t.Fatalf("unexpected user info %+v", info)
	}
}

func TestRegisterFailure(t *testing.T) {
	s := New(kv.NewMemoryStore(), fakeBackend{err: errors.New("boom")})
	res := s.Register(context.Background(), identity.Registration{})
	if res.Success || !errors.Is(res.Err, ErrRegisterFailed) || res.Message() != "Registration failed" {
		t.Fatalf("expected register failure, got %+v", res)
	}
}

func TestAccessorsWhenLoggedOut(t *testing.T) {
	s, store := newDemoSession(t)
	ctx := context.Background()

	// A stray role without a token is not reported.
	_ = store.Set(ctx, UserTypeKey, "police")
	_ = store.Set(ctx, UserInfoKey, `{"id":"x"}`)

	if s.UserType(ctx) != identity.RoleNone {
		t.Fatalf("expected no role without token")
	}
	if _, ok := s.UserInfo(ctx); ok {
		t.Fatalf("expected no user info without token")
	}
	if h := s.AuthHeader(ctx); len(h) != 0 {
		t.Fatalf("expected empty header, got %v", h)
	}
}

func TestAuthHeader(t *testing.T) {
	s, _ := newDemoSession(t)
	ctx := context.Background()

	res := s.Login(ctx, "tourist@demo.com", "demo123", identity.RoleTourist)
	h := s.AuthHeader(ctx)
	if h["Authorization"] != "Bearer "+res.Token {
		t.Fatalf("unexpected header %v", h)
	}
}

func TestUserInfoCorrupt(t *testing.T) {
	store := kv.NewMemoryStore()
	s := New(store, fakeBackend{})
	ctx := context.Background()
	_ = store.Set(ctx, TokenKey, "t")
	_ = store.Set(ctx, UserInfoKey, "{not json")

	if _, ok := s.UserInfo(ctx); ok {
		t.Fatalf("expected corrupt user info to be ignored")
	}
}

func TestReloadRestoresSession(t *testing.T) {
	store := kv.NewMemoryStore()
	backend := auth.NewService("test-secret", auth.WithLatency(0, 0), auth.WithBcryptCost(bcrypt.MinCost))
	ctx := context.Background()

	first := New(store, backend)
	if res := first.Login(ctx, "police@demo.com", "demo123", identity.RolePolice); !res.Success {
		t.Fatalf("login: %+v", res)
	}

	reloaded := New(store, backend)
	if !reloaded.IsAuthenticated(ctx) || reloaded.UserType(ctx) != identity.RolePolice {
		t.Fatalf("expected persisted session to be picked up")
	}
}

func TestLogoutContinuesPastStoreErrors(t *testing.T) {
	store := &failingStore{MemoryStore: kv.NewMemoryStore()}
	navigated := false
	s := New(store, fakeBackend{}, WithNavigator(NavigatorFunc(func(string) { navigated = true })))
	ctx := context.Background()
	_ = store.Set(ctx, TokenKey, "t")

	store.failRemove = true
	s.Logout(ctx)
	if !navigated {
		t.Fatalf("expected navigation even when removal fails")
	}

	store.failGet = true
	if s.IsAuthenticated(ctx) {
		t.Fatalf("expected unreadable store to count as logged out")
	}
}

func TestIsolatedSessionsInParallel(t *testing.T) {
	for _, role := range []identity.Role{identity.RoleTourist, identity.RolePolice} {
		role := role
		t.Run(role.String(), func(t *testing.T) {
			t.Parallel()
			s, _ := newDemoSession(t)
			ctx := context.Background()
			res := s.Login(ctx, string(role)+"@demo.com", "demo123", role)
			if !res.Success || s.UserType(ctx) != role {
				t.Fatalf("unexpected result %+v", res)
			}
		})
	}
}
