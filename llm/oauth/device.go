package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/httpclient"
)

const (
	defaultPollInterval = 5 * time.Second
	// slowDownDelay is the extra wait inserted once after a slow_down
	// response, per RFC 8628 §3.5.
	slowDownDelay = 5 * time.Second
)

const deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// DeviceAuthorization is the provider's response to a device code request.
type DeviceAuthorization struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// VerifyURL returns the URL the user must visit, preferring the complete
// variant when the provider supplies one.
func (d *DeviceAuthorization) VerifyURL() string {
	if d.VerificationURIComplete != "" {
		return d.VerificationURIComplete
	}

	return d.VerificationURI
}

// DeviceFlow drives the RFC 8628 device authorization grant.
type DeviceFlow struct {
	httpClient *httpclient.HttpClient

	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

// NewDeviceFlow creates a device flow using the given HTTP client.
func NewDeviceFlow(client *httpclient.HttpClient) *DeviceFlow {
	return &DeviceFlow{
		httpClient: client,
		sleep:      time.Sleep,
	}
}

// RequestCode asks the provider's device endpoint for a device/user code
// pair. Fails fast when the provider has no device endpoint configured.
func (f *DeviceFlow) RequestCode(ctx context.Context, cfg *ProviderConfig) (*DeviceAuthorization, error) {
	if cfg.DeviceCodeURL == "" {
		return nil, fmt.Errorf("%w: provider %q has no device code endpoint", ErrNotConfigured, cfg.Name)
	}

	form := url.Values{}
	form.Set("client_id", cfg.ClientID)

	if len(cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(cfg.Scopes, " "))
	}

	for k, v := range cfg.AuthorizeParams {
		form.Set(k, v)
	}

	req := &httpclient.Request{
		Method:  http.MethodPost,
		URL:     cfg.DeviceCodeURL,
		Headers: tokenHeaders(cfg, "application/x-www-form-urlencoded"),
		Body:    []byte(form.Encode()),
	}

	resp, err := f.httpClient.Do(ctx, req)
	if err != nil {
		if he, ok := httpclient.AsError(err); ok {
			return nil, fmt.Errorf("%w: provider %q device code request failed with status %d: %s",
				ErrProviderProtocol, cfg.Name, he.StatusCode, strings.TrimSpace(string(he.Body)))
		}

		return nil, fmt.Errorf("provider %q device code request: %w", cfg.Name, err)
	}

	var auth DeviceAuthorization
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return nil, fmt.Errorf("provider %q: decode device code response: %w", cfg.Name, err)
	}

	if auth.DeviceCode == "" {
		return nil, fmt.Errorf("%w: provider %q device code response missing device_code", ErrProviderProtocol, cfg.Name)
	}

	return &auth, nil
}

// Poll polls the token endpoint until the user approves, the device code
// expires, or the validity window runs out.
func (f *DeviceFlow) Poll(ctx context.Context, cfg *ProviderConfig, auth *DeviceAuthorization) (*TokenResponse, error) {
	interval := defaultPollInterval
	if auth.Interval > 0 {
		interval = time.Duration(auth.Interval) * time.Second
	}

	deadline := time.Now().Add(time.Duration(auth.ExpiresIn) * time.Second)

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: provider %q device authorization window elapsed, re-run login", ErrTimeout, cfg.Name)
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("provider %q device poll canceled: %w", cfg.Name, err)
		}

		tok, retry, err := f.pollOnce(ctx, cfg, auth.DeviceCode)
		if err != nil {
			return nil, err
		}

		if tok != nil {
			return tok, nil
		}

		f.sleep(interval)

		if retry == pollSlowDown {
			log.Debug(ctx, "device poll slow_down", log.String("provider", cfg.Name))
			f.sleep(slowDownDelay)
		}
	}
}

type pollOutcome int

const (
	pollPending pollOutcome = iota
	pollSlowDown
)

func (f *DeviceFlow) pollOnce(ctx context.Context, cfg *ProviderConfig, deviceCode string) (*TokenResponse, pollOutcome, error) {
	form := url.Values{}
	form.Set("grant_type", deviceGrantType)
	form.Set("client_id", cfg.ClientID)
	form.Set("device_code", deviceCode)

	if cfg.ClientSecret != "" {
		form.Set("client_secret", cfg.ClientSecret)
	}

	req := &httpclient.Request{
		Method:  http.MethodPost,
		URL:     cfg.TokenURL,
		Headers: tokenHeaders(cfg, "application/x-www-form-urlencoded"),
		Body:    []byte(form.Encode()),
	}

	resp, err := f.httpClient.Do(ctx, req)

	var body []byte

	switch {
	case err == nil:
		body = resp.Body
	default:
		// Providers signal pending/denied through 4xx bodies, so decode
		// those instead of failing on status alone.
		he, ok := httpclient.AsError(err)
		if !ok {
			return nil, pollPending, fmt.Errorf("provider %q device token request: %w", cfg.Name, err)
		}

		body = he.Body
	}

	if tokenErr, ok := errorBody(body); ok {
		switch tokenErr.Error {
		case "authorization_pending":
			return nil, pollPending, nil
		case "slow_down":
			return nil, pollSlowDown, nil
		case "expired_token":
			return nil, pollPending, fmt.Errorf("%w: provider %q device code expired, re-run login", ErrTimeout, cfg.Name)
		case "access_denied":
			return nil, pollPending, fmt.Errorf("%w: provider %q authorization denied by user", ErrCallbackRejected, cfg.Name)
		default:
			return nil, pollPending, fmt.Errorf("%w: provider %q device poll failed: %s - %s",
				ErrProviderProtocol, cfg.Name, tokenErr.Error, tokenErr.ErrorDescription)
		}
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, pollPending, fmt.Errorf("provider %q: decode device token response: %w", cfg.Name, err)
	}

	if tok.AccessToken == "" {
		return nil, pollPending, nil
	}

	return &tok, pollPending, nil
}
