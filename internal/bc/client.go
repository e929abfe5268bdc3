package bc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"timetrack-backend/internal/metrics"
	"timetrack-backend/internal/timeutil"
)

// tokenExpiryMargin is subtracted from the IdP-reported lifetime so a token
// is never used right at its expiry boundary.
const tokenExpiryMargin = 60 * time.Second

// Credentials is the per-tenant OAuth client-credentials configuration.
type Credentials struct {
	TenantID     string // Azure AD directory ID
	ClientID     string
	ClientSecret string
	Environment  string // BC environment name, e.g. "production"
}

// Config holds endpoint configuration shared by all tenants.
type Config struct {
	IdentityBaseURL string // default https://login.microsoftonline.com
	APIBaseURL      string // default https://api.businesscentral.dynamics.com
	Scope           string
	Timeout         time.Duration
}

// Client talks to one BC company on behalf of one tenant. The token cache is
// per-instance and not synchronized: instantiate one client per sync pass
// and keep remote calls sequential.
type Client struct {
	http      *http.Client
	cfg       Config
	creds     Credentials
	companyID string // BC company GUID

	token       string
	tokenExpiry time.Time
}

// NewClient creates a BC client for one (tenant, company) pairing.
func NewClient(creds Credentials, companyID string, cfg Config) *Client {
	if cfg.IdentityBaseURL == "" {
		cfg.IdentityBaseURL = "https://login.microsoftonline.com"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.businesscentral.dynamics.com"
	}
	if cfg.Scope == "" {
		cfg.Scope = "https://api.businesscentral.dynamics.com/.default"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		creds:     creds,
		companyID: companyID,
	}
}

// getAccessToken returns a cached bearer token, refreshing it via the
// client-credentials grant when missing or within the expiry margin.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	if c.token != "" && timeutil.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.token, nil
	}

	if c.creds.TenantID == "" || c.creds.ClientID == "" || c.creds.ClientSecret == "" {
		return "", ErrAuthConfig
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)
	form.Set("scope", c.cfg.Scope)

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.cfg.IdentityBaseURL, c.creds.TenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	// Deliberately not logging the URL body: it carries the client secret
	log.Printf("[BC] POST token endpoint -> %d (%v)", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		return "", &AuthExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", &AuthExchangeError{Status: resp.StatusCode, Body: "empty access_token in response"}
	}

	c.token = tok.AccessToken
	c.tokenExpiry = timeutil.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// companyURL builds an API URL under the companies({id}) collection.
func (c *Client) companyURL(path string) string {
	return fmt.Sprintf("%s/v2.0/%s/%s/api/v2.0/companies(%s)%s",
		c.cfg.APIBaseURL, c.creds.TenantID, c.creds.Environment, c.companyID, path)
}

// doJSON performs an authenticated request and decodes a 2xx JSON response
// into out (when out is non-nil). Non-2xx responses become RemoteCallError.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload interface{}, out interface{}) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPatch || method == http.MethodDelete {
		// BC requires an ETag for modifying calls; last-writer-wins here
		req.Header.Set("If-Match", "*")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bc request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	log.Printf("[BC] %s %s -> %d (%v)", method, req.URL.Path, resp.StatusCode, elapsed.Round(time.Millisecond))
	metrics.BCRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(elapsed.Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRemoteCallError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode bc response: %w", err)
		}
	}
	return nil
}
