package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"backend-touristsafety/internal/config"
	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/zones"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0", ZoneSource: "postgres"}, nil, nil)
	t.Cleanup(s.Close)
	return s
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestZoneSourceSelection(t *testing.T) {
	if _, ok := zoneSource(config.Config{ZoneSource: "static"}, nil).(*zones.StaticSource); !ok {
		t.Fatalf("expected static source")
	}
	if _, ok := zoneSource(config.Config{ZoneSource: "postgres"}, nil).(*zones.StaticSource); !ok {
		t.Fatalf("expected static source without postgres")
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("metrics status: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "touristsafety_fixes_total") {
		t.Fatalf("expected tourist safety metrics")
	}
}

func TestLoginAndTrack(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(identity.Credentials{Email: "tourist@demo.com", Password: "demo123", Role: identity.RoleTourist})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req, 5000)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %v", err)
	}
	var grant identity.Grant
	_ = json.NewDecoder(resp.Body).Decode(&grant)
	if grant.Token == "" || grant.UserInfo.ID != "tourist-001" {
		t.Fatalf("unexpected grant %+v", grant)
	}

	req = httptest.NewRequest(http.MethodPost, "/tracking/devices/phone-1/fixes", strings.NewReader(`{"lat":28.66,"lng":77.245}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+grant.Token)
	resp, err = s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("report fix failed: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/tracking/devices/phone-1/fixes", strings.NewReader(`{"lat":28.66,"lng":77.245}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected missing token to be refused")
	}
}

func TestZoneRoutes(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/zones/nearest?lat=28.66&lng=77.245", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("nearest failed: %v", err)
	}
	var m zones.Match
	_ = json.NewDecoder(resp.Body).Decode(&m)
	if m.ID != "crowdy-zone-1" || !m.Inside {
		t.Fatalf("unexpected match %+v", m)
	}

	resp, _ = s.App.Test(httptest.NewRequest(http.MethodGet, "/geocode?lat=28.6507&lng=77.2334", nil))
	var geo map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&geo)
	if geo["address"] != "Red Fort, Old Delhi" {
		t.Fatalf("unexpected geocode %v", geo)
	}
}

func call(t *testing.T, s *Server, method, path, token, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func grantFrom(t *testing.T, resp *http.Response) identity.Grant {
	t.Helper()
	var g identity.Grant
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil || g.Token == "" {
		t.Fatalf("decode grant: %v", err)
	}
	return g
}

func TestRegisteredPoliceCannotUseOfficerRoutes(t *testing.T) {
	s := newTestServer(t)

	tourist := grantFrom(t, call(t, s, http.MethodPost, "/auth/login", "",
		`{"email":"tourist@demo.com","password":"demo123","userType":"tourist"}`))
	if resp := call(t, s, http.MethodPost, "/tracking/devices/phone-1/fixes", tourist.Token, `{"lat":28.66,"lng":77.245}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("report fix: %d", resp.StatusCode)
	}

	resp := call(t, s, http.MethodPost, "/auth/register", "", `{"name":"Mallory","email":"m@example.com","userType":"police"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d", resp.StatusCode)
	}
	fake := grantFrom(t, resp)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/tracking/devices"},
		{http.MethodGet, "/tracking/devices/phone-1"},
		{http.MethodDelete, "/tracking/devices/phone-1"},
		{http.MethodGet, "/alerts"},
	} {
		if resp := call(t, s, tc.method, tc.path, fake.Token, ""); resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
	if _, err := s.Tracking.Status("phone-1"); err != nil {
		t.Fatalf("device must still be tracked: %v", err)
	}

	other := grantFrom(t, call(t, s, http.MethodPost, "/auth/register", "", `{"name":"Eve","userType":"tourist"}`))
	if resp := call(t, s, http.MethodGet, "/tracking/devices/phone-1", other.Token, ""); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected another tourist to be refused, got %d", resp.StatusCode)
	}
	if resp := call(t, s, http.MethodGet, "/tracking/devices/phone-1", tourist.Token, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected owner to read status, got %d", resp.StatusCode)
	}
}

func TestStreamRequiresToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/phone-1", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, err := s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected anonymous stream to be refused, got %v %d", err, resp.StatusCode)
	}
}

func TestSOSAlertFlow(t *testing.T) {
	s := newTestServer(t)

	tourist := grantFrom(t, call(t, s, http.MethodPost, "/auth/login", "",
		`{"email":"tourist@demo.com","password":"demo123","userType":"tourist"}`))
	officer := grantFrom(t, call(t, s, http.MethodPost, "/auth/login", "",
		`{"email":"police@demo.com","password":"demo123","userType":"police"}`))

	call(t, s, http.MethodPost, "/tracking/devices/phone-1/fixes", tourist.Token, `{"lat":28.6507,"lng":77.2334}`)
	resp := call(t, s, http.MethodPost, "/alerts/sos", tourist.Token, `{"deviceId":"phone-1","emergency":"medical"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("sos status %d", resp.StatusCode)
	}
	var raised struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		Location struct {
			Address string `json:"address"`
		} `json:"location"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&raised)
	if raised.Status != "active" || raised.Location.Address != "Red Fort, Old Delhi" {
		t.Fatalf("unexpected alert %+v", raised)
	}

	if resp := call(t, s, http.MethodPost, "/alerts/sos", officer.Token, `{}`); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected police SOS to be refused, got %d", resp.StatusCode)
	}
	if resp := call(t, s, http.MethodGet, "/alerts?filter=critical", tourist.Token, ""); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected tourists to be refused the alert list, got %d", resp.StatusCode)
	}

	resp = call(t, s, http.MethodGet, "/alerts?filter=critical", officer.Token, "")
	var list []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&list)
	if resp.StatusCode != http.StatusOK || len(list) != 1 {
		t.Fatalf("unexpected critical alerts %d %v", resp.StatusCode, list)
	}

	path := "/alerts/" + strconv.FormatInt(raised.ID, 10) + "/status"
	if resp := call(t, s, http.MethodPatch, path, officer.Token, `{"status":"acknowledged"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("acknowledge status %d", resp.StatusCode)
	}
	if resp := call(t, s, http.MethodPatch, path, officer.Token, `{"status":"active"}`); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected backwards move to conflict, got %d", resp.StatusCode)
	}
}
