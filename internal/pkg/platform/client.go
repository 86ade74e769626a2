package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nibiaa/TenantDesk/internal/pkg/env"
)

// ErrTenantExists is returned when the platform rejects a tenant creation
// because a tenant with the same title already exists.
var ErrTenantExists = errors.New("tenant already exists on platform")

// loginTokenLifetime is how long a platform JWT is reused before logging in
// again. The platform issues longer-lived tokens; staying well below that
// avoids racing the server-side expiry.
const loginTokenLifetime = 10 * time.Minute

// Client talks to the managed IoT platform's REST API with JWT
// authentication.
type Client struct {
	BaseURL  string
	Username string
	Password string

	HTTPClient *http.Client

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

// TenantInfo is a tenant as reported by the platform.
type TenantInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ProfileInfo is a tenant profile as reported by the platform.
type ProfileInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// UserInfo is a platform user (e.g. a tenant admin).
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateTenantInput carries the fields for a tenant creation call.
type CreateTenantInput struct {
	Title     string
	ProfileID string
	Usecase   string
	Email     string
}

// NewClientFromEnv builds a platform client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:  strings.TrimRight(env.GetEnv("PLATFORM_BASE_URL", "http://localhost:8080"), "/"),
		Username: strings.TrimSpace(env.GetEnv("PLATFORM_USERNAME", "")),
		Password: env.GetEnv("PLATFORM_PASSWORD", ""),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type entityID struct {
	ID         string `json:"id"`
	EntityType string `json:"entityType"`
}

func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiresAt) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	if c.Username == "" || c.Password == "" {
		return "", errors.New("PLATFORM_USERNAME/PLATFORM_PASSWORD are not configured")
	}

	payload, _ := json.Marshal(map[string]string{
		"username": c.Username,
		"password": c.Password,
	})
	body, status, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", payload)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("platform login failed: status=%d body=%s", status, string(body))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("platform login returned no token")
	}

	c.mu.Lock()
	c.token = out.Token
	c.tokenExpiresAt = time.Now().Add(loginTokenLifetime)
	c.mu.Unlock()
	return out.Token, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	return body, resp.StatusCode, nil
}

// ListTenantProfiles returns the tenant profiles configured on the platform.
func (c *Client) ListTenantProfiles(ctx context.Context) ([]ProfileInfo, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(ctx, http.MethodGet, "/api/tenantProfiles?pageSize=100&page=0", token, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("platform profile list failed: status=%d body=%s", status, string(body))
	}

	var raw struct {
		Data []struct {
			ID      entityID `json:"id"`
			Name    string   `json:"name"`
			Default bool     `json:"default"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	profiles := make([]ProfileInfo, 0, len(raw.Data))
	for _, p := range raw.Data {
		profiles = append(profiles, ProfileInfo{ID: p.ID.ID, Name: p.Name, Default: p.Default})
	}
	return profiles, nil
}

// ListTenants returns the tenants that exist on the platform.
func (c *Client) ListTenants(ctx context.Context) ([]TenantInfo, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(ctx, http.MethodGet, "/api/tenants?pageSize=500&page=0", token, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("platform tenant list failed: status=%d body=%s", status, string(body))
	}

	var raw struct {
		Data []struct {
			ID    entityID `json:"id"`
			Title string   `json:"title"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	tenants := make([]TenantInfo, 0, len(raw.Data))
	for _, t := range raw.Data {
		tenants = append(tenants, TenantInfo{ID: t.ID.ID, Title: t.Title})
	}
	return tenants, nil
}

// CreateTenant creates a tenant on the platform and returns it.
func (c *Client) CreateTenant(ctx context.Context, in CreateTenantInput) (*TenantInfo, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"title": in.Title,
		"email": in.Email,
	}
	if in.ProfileID != "" {
		body["tenantProfileId"] = entityID{ID: in.ProfileID, EntityType: "TENANT_PROFILE"}
	}
	if in.Usecase != "" {
		body["additionalInfo"] = map[string]string{"usecase": in.Usecase}
	}
	payload, _ := json.Marshal(body)

	respBody, status, err := c.do(ctx, http.MethodPost, "/api/tenant", token, payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusConflict {
		return nil, fmt.Errorf("create tenant %q: %w", in.Title, ErrTenantExists)
	}
	if status < 200 || status >= 300 {
		if strings.Contains(strings.ToLower(string(respBody)), "already exists") {
			return nil, fmt.Errorf("create tenant %q: %w", in.Title, ErrTenantExists)
		}
		return nil, fmt.Errorf("platform tenant creation failed: status=%d body=%s", status, string(respBody))
	}

	var raw struct {
		ID    entityID `json:"id"`
		Title string   `json:"title"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, err
	}
	if raw.ID.ID == "" {
		return nil, errors.New("platform tenant creation returned no tenant id")
	}
	return &TenantInfo{ID: raw.ID.ID, Title: raw.Title}, nil
}

// CreateTenantAdmin creates the tenant admin user without sending the
// platform's own activation mail; activation is handled by our notification
// flow instead.
func (c *Client) CreateTenantAdmin(ctx context.Context, tenantID, email, firstName, lastName string) (*UserInfo, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"email":     email,
		"firstName": firstName,
		"lastName":  lastName,
		"authority": "TENANT_ADMIN",
		"tenantId":  entityID{ID: tenantID, EntityType: "TENANT"},
	})

	respBody, status, err := c.do(ctx, http.MethodPost, "/api/user?sendActivationMail=false", token, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("platform admin creation failed: status=%d body=%s", status, string(respBody))
	}

	var raw struct {
		ID    entityID `json:"id"`
		Email string   `json:"email"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, err
	}
	return &UserInfo{ID: raw.ID.ID, Email: raw.Email}, nil
}

// GetActivationLink fetches the activation link for a freshly created user.
func (c *Client) GetActivationLink(ctx context.Context, userID string) (string, error) {
	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}

	body, status, err := c.do(ctx, http.MethodGet, "/api/user/"+userID+"/activationLink", token, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("platform activation link fetch failed: status=%d body=%s", status, string(body))
	}
	return strings.TrimSpace(string(body)), nil
}
