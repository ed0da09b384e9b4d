package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-touristsafety/internal/identity"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(opts ...Option) *Service {
	base := []Option{WithLatency(0, 0), WithBcryptCost(bcrypt.MinCost)}
	return NewService("test-secret", append(base, opts...)...)
}

func TestLoginDemoAccounts(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		email string
		role  identity.Role
		id    string
		name  string
	}{
		{"tourist@demo.com", identity.RoleTourist, "tourist-001", "John Doe"},
		{"police@demo.com", identity.RolePolice, "officer-001", "Officer Smith"},
	}
	for _, tc := range cases {
		grant, err := svc.Login(context.Background(), identity.Credentials{Email: tc.email, Password: "demo123", Role: tc.role})
		if err != nil {
			t.Fatalf("login %s: %v", tc.role, err)
		}
		if grant.Token == "" || grant.Role != tc.role {
			t.Fatalf("unexpected grant: %+v", grant)
		}
		if grant.UserInfo.ID != tc.id || grant.UserInfo.Name != tc.name || grant.UserInfo.Email != tc.email {
			t.Fatalf("unexpected user info: %+v", grant.UserInfo)
		}

		claims, err := svc.ValidateToken(grant.Token)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if claims.UserID != tc.id || claims.Role != tc.role || claims.ID == "" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestService()

	cases := []identity.Credentials{
		{Email: "tourist@demo.com", Password: "wrong", Role: identity.RoleTourist},
		{Email: "police@demo.com", Password: "demo123", Role: identity.RoleTourist},
		{Email: "tourist@demo.com", Password: "demo123", Role: identity.RolePolice},
		{Email: "other@demo.com", Password: "demo123", Role: identity.RolePolice},
		{Email: "tourist@demo.com", Password: "demo123", Role: identity.RoleNone},
	}
	for _, creds := range cases {
		_, err := svc.Login(context.Background(), creds)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials for %+v, got %v", creds, err)
		}
	}
}

func TestLoginHonoursContext(t *testing.T) {
	svc := newTestService(WithLatency(time.Hour, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Login(ctx, identity.Credentials{Email: "tourist@demo.com", Password: "demo123", Role: identity.RoleTourist})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestLoginSimulatedLatency(t *testing.T) {
	svc := newTestService(WithLatency(20*time.Millisecond, 0))
	start := time.Now()
	if _, err := svc.Login(context.Background(), identity.Credentials{Email: "tourist@demo.com", Password: "demo123", Role: identity.RoleTourist}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("expected simulated latency")
	}
}

func TestRegister(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	svc := newTestService(WithClock(func() time.Time { return fixed }))

	grant, err := svc.Register(context.Background(), identity.Registration{
		Name:        "Asha",
		Email:       "asha@example.com",
		Phone:       "+91 98765 43210",
		Destination: "Jaipur",
		Role:        identity.RoleTourist,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if grant.UserInfo.ID != "tourist-1700000000000" {
		t.Fatalf("unexpected id: %s", grant.UserInfo.ID)
	}
	if grant.UserInfo.Destination == nil || *grant.UserInfo.Destination != "Jaipur" {
		t.Fatalf("expected destination")
	}
	if grant.UserInfo.Phone != "+91 98765 43210" || grant.Role != identity.RoleTourist {
		t.Fatalf("unexpected grant: %+v", grant)
	}
}

func TestRegisterDefaultsRoleAndAcceptsDuplicates(t *testing.T) {
	svc := newTestService()
	reg := identity.Registration{Name: "Dup", Email: "tourist@demo.com", Role: identity.Role("admin")}

	for i := 0; i < 2; i++ {
		grant, err := svc.Register(context.Background(), reg)
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if grant.Role != identity.RoleTourist || !strings.HasPrefix(grant.UserInfo.ID, "tourist-") {
			t.Fatalf("expected tourist default, got %+v", grant)
		}
		if grant.UserInfo.Destination != nil {
			t.Fatalf("expected nil destination")
		}
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newTestService()
	other := NewService("other-secret", WithLatency(0, 0), WithBcryptCost(bcrypt.MinCost))

	grant, err := other.Login(context.Background(), identity.Credentials{Email: "police@demo.com", Password: "demo123", Role: identity.RolePolice})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateToken(grant.Token); err == nil {
		t.Fatalf("expected signature error")
	}
	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	svc := newTestService(WithClock(func() time.Time { return past }))

	token, err := svc.signToken("tourist-001", identity.RoleTourist)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token error")
	}
}
