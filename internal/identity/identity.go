package identity

import (
	"errors"
	"strings"
)

// ErrInvalidCredentials is shared by every backend that rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Role selects which portal a session is authorized for.
type Role string

const (
	RoleNone    Role = ""
	RoleTourist Role = "tourist"
	RolePolice  Role = "police"
)

// ParseRole maps a stored or submitted role tag to a Role. Unknown tags yield RoleNone.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleTourist:
		return RoleTourist
	case RolePolice:
		return RolePolice
	default:
		return RoleNone
	}
}

func (r Role) Valid() bool {
	return r == RoleTourist || r == RolePolice
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

type UserInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Destination *string `json:"destination"`
}

type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Destination string `json:"destination"`
	Role        Role   `json:"userType"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"userType"`
}

// Grant is what a backend hands out on successful login or registration.
type Grant struct {
	Token    string   `json:"token"`
	Role     Role     `json:"userType"`
	UserInfo UserInfo `json:"userInfo"`
}
