package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-touristsafety/internal/identity"

	"github.com/gofiber/fiber/v2"
)

func TestAuthHandlersLoginRegisterVerify(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), newTestService())

	loginBody, _ := json.Marshal(map[string]string{"email": "tourist@demo.com", "password": "demo123", "userType": "tourist"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %v", err)
	}

	var grant identity.Grant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		t.Fatalf("decode grant: %v", err)
	}
	if grant.Token == "" || grant.Role != identity.RoleTourist || grant.UserInfo.ID != "tourist-001" {
		t.Fatalf("unexpected grant: %+v", grant)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+grant.Token)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status: %v", err)
	}

	registerBody, _ := json.Marshal(identity.Registration{Name: "Asha", Email: "asha@example.com", Role: identity.RolePolice})
	req = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %v", err)
	}
	var registered identity.Grant
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if registered.Role != identity.RolePolice {
		t.Fatalf("unexpected role %q", registered.Role)
	}
}

func TestAuthHandlersLoginErrors(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), newTestService())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}

	body, _ := json.Marshal(map[string]string{"email": "tourist@demo.com", "password": "nope", "userType": "tourist"})
	req = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized")
	}
}

func TestAuthHandlersVerifyErrors(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), newTestService())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/verify", nil))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without token")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized with bad token")
	}
}

func TestAuthHandlersRegisterBadPayload(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), newTestService())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}
