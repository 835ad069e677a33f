package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/auth"
	"github.com/looplj/authhub/llm/httpclient"
)

// Manager is the credential broker: it resolves valid access material for a
// provider, coordinates refreshes so concurrent callers share one token
// request, and drives the interactive login flows.
type Manager struct {
	store      *Store
	httpClient *httpclient.HttpClient
	registry   Registry

	authFlows *AuthCodeFlow
	device    *DeviceFlow
	sf        singleflight.Group

	now func() time.Time
}

// NewManager wires the broker against a store and provider registry.
func NewManager(store *Store, client *httpclient.HttpClient, registry Registry) *Manager {
	return &Manager{
		store:      store,
		httpClient: client,
		registry:   registry,
		authFlows:  NewAuthCodeFlow(client),
		device:     NewDeviceFlow(client),
		now:        time.Now,
	}
}

// Store exposes the backing credential store.
func (m *Manager) Store() *Store { return m.store }

// Providers lists the registered provider names.
func (m *Manager) Providers() []string { return m.registry.Names() }

func (m *Manager) config(name string) (*ProviderConfig, error) {
	cfg, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, name)
	}

	return cfg, nil
}

// AccessToken returns valid access material for the provider: a
// configuration-supplied or stored API key as-is, or an OAuth access token
// refreshed if it is within the expiry buffer.
func (m *Manager) AccessToken(ctx context.Context, provider string) (string, error) {
	if cfg, ok := m.registry.Get(provider); ok && cfg.APIKey != "" {
		return cfg.APIKey, nil
	}

	cred, err := m.Credential(ctx, provider)
	if err != nil {
		return "", err
	}

	if cred.Type == CredentialTypeAPIKey {
		return cred.Key, nil
	}

	return cred.Access, nil
}

// Credential returns a valid credential for the provider, refreshing OAuth
// material when needed.
func (m *Manager) Credential(ctx context.Context, provider string) (*Credential, error) {
	cfg, err := m.config(provider)
	if err != nil {
		return nil, err
	}

	cred, ok := m.store.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: no credential for provider %q, run `authhub login %s`",
			ErrNotAuthenticated, provider, provider)
	}

	if !cred.IsExpired(m.now()) {
		return cred, nil
	}

	return m.refresh(ctx, cfg, provider)
}

// ValidToken is the forgiving variant of AccessToken for callers that treat
// a missing or dead credential as "no auth": it returns "" instead of an
// error for the not-configured, not-authenticated, and expired cases.
func (m *Manager) ValidToken(ctx context.Context, provider string) (string, error) {
	token, err := m.AccessToken(ctx, provider)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrExpired) {
			return "", nil
		}

		return "", err
	}

	return token, nil
}

// RequestHeaders returns the provider-specific headers every proxied request
// must carry, resolved against a valid credential.
func (m *Manager) RequestHeaders(ctx context.Context, provider string) (map[string]string, error) {
	cfg, err := m.config(provider)
	if err != nil {
		return nil, err
	}

	if cfg.RequestHeaders == nil {
		return nil, nil
	}

	cred, err := m.Credential(ctx, provider)
	if err != nil {
		return nil, err
	}

	return cfg.RequestHeaders(cred), nil
}

// refresh coordinates a token refresh so that concurrent expired callers
// share a single token-endpoint request per provider.
func (m *Manager) refresh(ctx context.Context, cfg *ProviderConfig, provider string) (*Credential, error) {
	v, err, _ := m.sf.Do(provider, func() (any, error) {
		// Re-read under the flight: a racing caller may have refreshed
		// and persisted already.
		current, ok := m.store.Get(provider)
		if !ok {
			return nil, fmt.Errorf("%w: no credential for provider %q, run `authhub login %s`",
				ErrNotAuthenticated, provider, provider)
		}

		if !current.IsExpired(m.now()) {
			return current, nil
		}

		fresh, err := m.refreshOnce(ctx, cfg, current)
		if err != nil {
			return nil, err
		}

		if err := m.store.Save(provider, fresh); err != nil {
			log.Warn(ctx, "failed to persist refreshed credential",
				log.String("provider", provider), log.Cause(err))
		}

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	cred, ok := v.(*Credential)
	if !ok {
		return nil, fmt.Errorf("singleflight returned unexpected type %T", v)
	}

	return cred, nil
}

func (m *Manager) refreshOnce(ctx context.Context, cfg *ProviderConfig, cred *Credential) (*Credential, error) {
	if cred.Refresh == "" {
		return nil, fmt.Errorf("%w: provider %q access token expired and no refresh token is stored, re-run `authhub login %s`",
			ErrExpired, cfg.Name, cfg.Name)
	}

	if cfg.Refresh != nil {
		fresh, err := cfg.Refresh(ctx, m.httpClient, cfg, cred)
		if err != nil {
			return nil, fmt.Errorf("provider %q refresh: %w", cfg.Name, err)
		}

		return fresh, nil
	}

	tok, err := RefreshGrant(ctx, m.httpClient, cfg, cred.Refresh)
	if err != nil {
		return nil, err
	}

	fresh := RefreshedCredential(cred, tok)

	log.Debug(ctx, "access token refreshed",
		log.String("provider", cfg.Name),
		log.Time("expires_at", fresh.ExpiresAt()))

	return fresh, nil
}

// RefreshGrant performs a single refresh_token grant against the provider's
// token endpoint. Provider refresh hooks reuse it as the standard leg of
// their composite refresh.
func RefreshGrant(ctx context.Context, client *httpclient.HttpClient, cfg *ProviderConfig, refreshToken string) (*TokenResponse, error) {
	req, err := cfg.strategy().BuildRefreshRequest(cfg, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		if he, ok := httpclient.AsError(err); ok {
			if tokenErr, ok := errorBody(he.Body); ok {
				return nil, fmt.Errorf("%w: provider %q refresh failed: %s - %s",
					ErrProviderProtocol, cfg.Name, tokenErr.Error, tokenErr.ErrorDescription)
			}

			return nil, fmt.Errorf("%w: provider %q refresh failed with status %d",
				ErrProviderProtocol, cfg.Name, he.StatusCode)
		}

		return nil, fmt.Errorf("provider %q refresh: %w", cfg.Name, err)
	}

	return ParseTokenResponse(resp.Body)
}

// RefreshedCredential merges a refresh response into an existing credential,
// keeping the previous refresh token and provider data when the response
// does not rotate them.
func RefreshedCredential(cred *Credential, tok *TokenResponse) *Credential {
	fresh := *cred
	fresh.Access = tok.AccessToken

	if tok.RefreshToken != "" {
		fresh.Refresh = tok.RefreshToken
	}

	if tok.ExpiresIn > 0 {
		fresh.Expires = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).UnixMilli()
	}

	return &fresh
}

// AuthCodeLogin is the in-progress handle of an authorization-code login.
type AuthCodeLogin struct {
	// AuthURL is the browser URL the user must visit.
	AuthURL string

	// Await blocks until the callback completes and the credential is
	// exchanged and persisted.
	Await func(ctx context.Context) (*Credential, error)
}

// StartAuthCodeLogin begins (or joins) an authorization-code login for the
// provider and returns the URL to open plus a completion handle.
func (m *Manager) StartAuthCodeLogin(ctx context.Context, provider string) (*AuthCodeLogin, error) {
	cfg, err := m.config(provider)
	if err != nil {
		return nil, err
	}

	pending, err := m.authFlows.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &AuthCodeLogin{
		AuthURL: pending.AuthURL,
		Await: func(ctx context.Context) (*Credential, error) {
			return m.authFlows.CompleteLogin(ctx, cfg, m.store, pending)
		},
	}, nil
}

// DeviceLogin is the in-progress handle of a device-code login.
type DeviceLogin struct {
	// UserCode is shown to the user, to be entered at VerificationURI.
	UserCode        string
	VerificationURI string

	// Await polls the token endpoint until the user approves, then
	// persists the credential.
	Await func(ctx context.Context) (*Credential, error)
}

// StartDeviceLogin begins a device-code login for the provider.
func (m *Manager) StartDeviceLogin(ctx context.Context, provider string) (*DeviceLogin, error) {
	cfg, err := m.config(provider)
	if err != nil {
		return nil, err
	}

	authorization, err := m.device.RequestCode(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &DeviceLogin{
		UserCode:        authorization.UserCode,
		VerificationURI: authorization.VerifyURL(),
		Await: func(ctx context.Context) (*Credential, error) {
			tok, err := m.device.Poll(ctx, cfg, authorization)
			if err != nil {
				return nil, err
			}

			cred := NewOAuthCredential(tok)

			if cfg.PostAuth != nil {
				if err := cfg.PostAuth(ctx, m.httpClient, tok, cred); err != nil {
					return nil, fmt.Errorf("provider %q post-authentication: %w", cfg.Name, err)
				}
			}

			if err := m.store.Save(cfg.Name, cred); err != nil {
				return nil, fmt.Errorf("provider %q: persist credential: %w", cfg.Name, err)
			}

			log.Info(ctx, "login complete", log.String("provider", cfg.Name),
				log.Time("expires_at", cred.ExpiresAt()))

			return cred, nil
		},
	}, nil
}

// SetAPIKey stores a static API key for the provider, replacing any
// credential held for it.
func (m *Manager) SetAPIKey(ctx context.Context, provider, key string) error {
	if _, err := m.config(provider); err != nil {
		return err
	}

	return m.store.Save(provider, NewAPIKeyCredential(key))
}

// Logout removes the provider's stored credential. It reports whether a
// credential was present.
func (m *Manager) Logout(ctx context.Context, provider string) (bool, error) {
	removed, err := m.store.Delete(provider)
	if err != nil {
		return false, fmt.Errorf("provider %q: remove credential: %w", provider, err)
	}

	if removed {
		log.Info(ctx, "logged out", log.String("provider", provider))
	}

	return removed, nil
}

// List returns the stored credentials sorted by provider name.
func (m *Manager) List() []Entry {
	return m.store.List()
}

// TokenProvider adapts the broker into an auth.APIKeyProvider for one
// provider, for use on the request path. A provider with a
// configuration-supplied API key gets a static provider that never touches
// the store.
func (m *Manager) TokenProvider(provider string) auth.APIKeyProvider {
	if cfg, ok := m.registry.Get(provider); ok && cfg.APIKey != "" {
		return auth.NewStaticKeyProvider(cfg.APIKey)
	}

	return &brokerKeyProvider{manager: m, provider: provider}
}

type brokerKeyProvider struct {
	manager  *Manager
	provider string
}

func (p *brokerKeyProvider) Get(ctx context.Context) string {
	token, err := p.manager.AccessToken(ctx, p.provider)
	if err != nil {
		log.Warn(ctx, "no usable credential for request",
			log.String("provider", p.provider), log.Cause(err))

		return ""
	}

	return token
}
