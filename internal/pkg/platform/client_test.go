package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nibiaa/TenantDesk/internal/pkg/provisioning"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		BaseURL:    srv.URL,
		Username:   "sysadmin@platform.local",
		Password:   "secret",
		HTTPClient: srv.Client(),
	}
}

func loginHandler(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Errorf("decode login body: %v", err)
			}
			if creds["username"] != "sysadmin@platform.local" {
				t.Errorf("login username = %q", creds["username"])
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"jwt-123"}`))
			return
		}
		if got := r.Header.Get("X-Authorization"); got != "Bearer jwt-123" {
			t.Errorf("auth header = %q", got)
		}
		next(w, r)
	}
}

func TestLoginTokenReuse(t *testing.T) {
	loginCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			loginCalls++
			_, _ = w.Write([]byte(`{"token":"jwt-123"}`))
		case "/api/tenants":
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if _, err := c.ListTenants(context.Background()); err != nil {
		t.Fatalf("list tenants: %v", err)
	}
	if _, err := c.ListTenants(context.Background()); err != nil {
		t.Fatalf("list tenants: %v", err)
	}
	if loginCalls != 1 {
		t.Fatalf("login calls = %d, want 1", loginCalls)
	}
}

func TestListTenantProfiles(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tenantProfiles" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": {"id": "tp-1", "entityType": "TENANT_PROFILE"}, "name": "Basic", "default": true},
				{"id": {"id": "tp-2", "entityType": "TENANT_PROFILE"}, "name": "Premium"}
			]
		}`))
	}))
	defer srv.Close()

	profiles, err := newTestClient(srv).ListTenantProfiles(context.Background())
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if profiles[0].ID != "tp-1" || profiles[0].Name != "Basic" || !profiles[0].Default {
		t.Fatalf("unexpected first profile: %+v", profiles[0])
	}
}

func TestCreateTenant(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tenant" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["title"] != "Acme Corp" {
			t.Errorf("title = %v", body["title"])
		}
		_, _ = w.Write([]byte(`{"id": {"id": "tenant-9", "entityType": "TENANT"}, "title": "Acme Corp"}`))
	}))
	defer srv.Close()

	tenant, err := newTestClient(srv).CreateTenant(context.Background(), CreateTenantInput{
		Title:     "Acme Corp",
		ProfileID: "tp-1",
		Usecase:   "Web Tracking",
		Email:     "ops@acme.example",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	if tenant.ID != "tenant-9" {
		t.Fatalf("tenant id = %q", tenant.ID)
	}
}

func TestCreateTenantConflict(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Tenant with such title already exists!"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateTenant(context.Background(), CreateTenantInput{Title: "Acme Corp"})
	if !errors.Is(err, ErrTenantExists) {
		t.Fatalf("expected ErrTenantExists, got %v", err)
	}
}

func TestCreatorMapsConflict(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	creator := NewCreator(newTestClient(srv))
	_, err := creator.CreateTenant(context.Background(), &provisioning.Request{Title: "Acme Corp"})
	if !errors.Is(err, provisioning.ErrTenantConflict) {
		t.Fatalf("expected tenant conflict, got %v", err)
	}
}

func TestGetActivationLink(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/user-1/activationLink" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("https://platform.example/activate?token=abc\n"))
	}))
	defer srv.Close()

	link, err := newTestClient(srv).GetActivationLink(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("activation link: %v", err)
	}
	if link != "https://platform.example/activate?token=abc" {
		t.Fatalf("link = %q", link)
	}
}
