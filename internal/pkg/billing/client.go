package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nibiaa/TenantDesk/internal/pkg/cache"
	"github.com/nibiaa/TenantDesk/internal/pkg/env"
)

const accessTokenCacheKey = "billing:access_token"

// accessTokenBuffer is subtracted from the provider's expires_in so a token
// is never used right at its expiry edge.
const accessTokenBuffer = 5 * time.Minute

// TokenCache stores short-lived access tokens between requests.
type TokenCache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

type redisTokenCache struct{}

func (redisTokenCache) Get(key string) (string, error) { return cache.Get(key) }
func (redisTokenCache) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

// Client talks to the billing provider's subscription API. Access tokens are
// obtained via the OAuth refresh-token flow and cached between calls.
type Client struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	OrgID        string

	TokenURL   string
	APIBaseURL string

	HTTPClient *http.Client
	TokenCache TokenCache
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// NewClientFromEnv builds a billing client from environment configuration.
// The provider hosts region-specific data centers; BILLING_DC selects one.
func NewClientFromEnv() *Client {
	dc := strings.TrimSpace(env.GetEnv("BILLING_DC", "com"))

	return &Client{
		ClientID:     strings.TrimSpace(env.GetEnv("BILLING_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("BILLING_CLIENT_SECRET", "")),
		RefreshToken: strings.TrimSpace(env.GetEnv("BILLING_REFRESH_TOKEN", "")),
		OrgID:        strings.TrimSpace(env.GetEnv("BILLING_ORG_ID", "")),
		TokenURL:     strings.TrimSpace(env.GetEnv("BILLING_TOKEN_URL", fmt.Sprintf("https://accounts.zoho.%s/oauth/v2/token", dc))),
		APIBaseURL:   strings.TrimSpace(env.GetEnv("BILLING_API_BASE_URL", fmt.Sprintf("https://www.zohoapis.%s/billing/v1", dc))),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		TokenCache: redisTokenCache{},
	}
}

// AccessToken returns a valid access token, refreshing it when the cached one
// is missing or expired.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.TokenCache != nil {
		if token, err := c.TokenCache.Get(accessTokenCacheKey); err == nil && token != "" {
			return token, nil
		}
	}

	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" {
		return "", errors.New("BILLING_CLIENT_ID/BILLING_CLIENT_SECRET/BILLING_REFRESH_TOKEN are not configured")
	}

	form := url.Values{}
	form.Set("refresh_token", c.RefreshToken)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("billing token refresh failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("billing token refresh returned no access token: %s", out.Error)
	}

	if c.TokenCache != nil {
		ttl := time.Duration(out.ExpiresIn)*time.Second - accessTokenBuffer
		if ttl > 0 {
			_ = c.TokenCache.Set(accessTokenCacheKey, out.AccessToken, ttl)
		}
	}
	return out.AccessToken, nil
}

// ListSubscriptions fetches the current subscriptions from the billing feed.
func (c *Client) ListSubscriptions(ctx context.Context) ([]FeedSubscription, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + "/subscriptions")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("per_page", "200")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Accept", "application/json")
	if c.OrgID != "" {
		req.Header.Set("X-com-zoho-subscriptions-organizationid", c.OrgID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("billing subscription list failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var raw struct {
		Subscriptions []FeedSubscription `json:"subscriptions"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return raw.Subscriptions, nil
}
