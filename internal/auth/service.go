package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL = 24 * time.Hour

	defaultLoginLatency    = time.Second
	defaultRegisterLatency = 1500 * time.Millisecond

	demoPassword = "demo123"
)

var (
	ErrInvalidCredentials = identity.ErrInvalidCredentials
	ErrTokenInvalid       = errors.New("token invalid")
)

// Service is the demo credential authority: two fixed logins, no user database.
type Service struct {
	secret          []byte
	accounts        map[identity.Role]account
	loginLatency    time.Duration
	registerLatency time.Duration
	bcryptCost      int
	now             func() time.Time
}

type account struct {
	email string
	hash  []byte
	user  identity.UserInfo
}

type Claims struct {
	UserID string        `json:"user_id"`
	Role   identity.Role `json:"role"`
	// Verified is false for self-registered police accounts. Their role is not
	// honoured by JWTMiddleware.
	Verified bool `json:"verified"`
	jwt.RegisteredClaims
}

type Option func(*Service)

// WithLatency overrides the simulated network delay of login and register.
func WithLatency(login, register time.Duration) Option {
	return func(s *Service) {
		s.loginLatency = login
		s.registerLatency = register
	}
}

// WithBcryptCost lowers hashing cost, mainly for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret string, opts ...Option) *Service {
	s := &Service{
		secret:          []byte(secret),
		loginLatency:    defaultLoginLatency,
		registerLatency: defaultRegisterLatency,
		bcryptCost:      bcrypt.DefaultCost,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bcryptCost < bcrypt.MinCost || s.bcryptCost > bcrypt.MaxCost {
		s.bcryptCost = bcrypt.DefaultCost
	}

	s.accounts = map[identity.Role]account{
		identity.RoleTourist: {
			email: "tourist@demo.com",
			hash:  s.mustHash(demoPassword),
			user:  identity.UserInfo{ID: "tourist-001", Name: "John Doe", Email: "tourist@demo.com"},
		},
		identity.RolePolice: {
			email: "police@demo.com",
			hash:  s.mustHash(demoPassword),
			user:  identity.UserInfo{ID: "officer-001", Name: "Officer Smith", Email: "police@demo.com"},
		},
	}
	return s
}

// Login checks the credentials against the demo account for the requested role.
func (s *Service) Login(ctx context.Context, creds identity.Credentials) (identity.Grant, error) {
	if err := sleep(ctx, s.loginLatency); err != nil {
		return identity.Grant{}, err
	}

	acc, ok := s.accounts[creds.Role]
	if !ok || creds.Email != acc.email ||
		bcrypt.CompareHashAndPassword(acc.hash, []byte(creds.Password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", creds.Role.String(), metrics.Outcome(false)).Inc()
		logger.L().Info("login_rejected", "role", creds.Role.String(), "email", creds.Email)
		return identity.Grant{}, ErrInvalidCredentials
	}

	token, err := s.signToken(acc.user.ID, creds.Role)
	if err != nil {
		return identity.Grant{}, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", creds.Role.String(), metrics.Outcome(true)).Inc()
	return identity.Grant{Token: token, Role: creds.Role, UserInfo: acc.user}, nil
}

// Register always succeeds: accounts are synthesized from the form and not stored.
// An unknown role registers as a tourist. A police registration gets an
// unverified token, so only the demo officer can reach police routes.
func (s *Service) Register(ctx context.Context, reg identity.Registration) (identity.Grant, error) {
	if err := sleep(ctx, s.registerLatency); err != nil {
		return identity.Grant{}, err
	}

	role := reg.Role
	if !role.Valid() {
		role = identity.RoleTourist
	}

	user := identity.UserInfo{
		ID:    fmt.Sprintf("%s-%d", role, s.now().UnixMilli()),
		Name:  reg.Name,
		Email: reg.Email,
		Phone: reg.Phone,
	}
	if d := strings.TrimSpace(reg.Destination); d != "" {
		user.Destination = &d
	}

	verified := role != identity.RolePolice
	token, err := s.sign(user.ID, role, verified)
	if err != nil {
		return identity.Grant{}, err
	}
	if !verified {
		logger.L().Warn("unverified_police_registration", "user_id", user.ID, "email", reg.Email)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", role.String(), metrics.Outcome(true)).Inc()
	return identity.Grant{Token: token, Role: role, UserInfo: user}, nil
}

func (s *Service) ValidateToken(token string) (*Claims, error) {
	return parseToken(s.secret, token)
}

func (s *Service) signToken(userID string, role identity.Role) (string, error) {
	return s.sign(userID, role, true)
}

func (s *Service) sign(userID string, role identity.Role, verified bool) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func parseToken(secret []byte, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *Service) mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("auth: hash demo password: %v", err))
	}
	return hash
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
