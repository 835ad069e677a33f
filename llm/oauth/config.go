package oauth

import (
	"context"
	"fmt"

	"github.com/looplj/authhub/llm/httpclient"
)

// PostAuthHook runs after a successful code or device exchange, before the
// credential is persisted. Providers use it for claim extraction, service
// token derivation, or auxiliary endpoint discovery.
type PostAuthHook func(ctx context.Context, client *httpclient.HttpClient, tok *TokenResponse, cred *Credential) error

// RefreshHook replaces the standard refresh_token grant for providers whose
// refresh path is not a plain OAuth refresh.
type RefreshHook func(ctx context.Context, client *httpclient.HttpClient, cfg *ProviderConfig, cred *Credential) (*Credential, error)

// ProviderConfig is the static, immutable per-provider parameter set
// supplied by the registry (and optionally overridden by configuration).
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// APIKey is a configuration-supplied static key. When set, the request
	// path serves it directly and no login or refresh is needed.
	APIKey string

	// Endpoints. AuthorizeURL enables the authorization-code flow,
	// DeviceCodeURL the device flow; TokenURL is required for both.
	AuthorizeURL  string
	TokenURL      string
	DeviceCodeURL string

	// Local callback listener parameters for the authorization-code flow.
	CallbackHost string
	CallbackPort int
	CallbackPath string

	// AuthorizeParams are merged into the authorization (and device code)
	// URL only; ExtraParams into every token-endpoint request;
	// ExtraHeaders into every token-endpoint request.
	AuthorizeParams map[string]string
	ExtraParams     map[string]string
	ExtraHeaders    map[string]string

	UserAgent string

	// Exchange selects the token request wire format; nil means standard
	// form-encoded OAuth2.
	Exchange ExchangeStrategy

	PostAuth PostAuthHook
	Refresh  RefreshHook

	// RequestHeaders yields provider-specific headers every outbound LLM
	// request must carry (e.g. an account id).
	RequestHeaders func(cred *Credential) map[string]string
}

// RedirectURI returns the exact redirect URI used by the callback listener.
func (c *ProviderConfig) RedirectURI() string {
	host := c.CallbackHost
	if host == "" {
		host = "localhost"
	}

	path := c.CallbackPath
	if path == "" {
		path = "/callback"
	}

	return fmt.Sprintf("http://%s:%d%s", host, c.CallbackPort, path)
}

func (c *ProviderConfig) strategy() ExchangeStrategy {
	if c.Exchange != nil {
		return c.Exchange
	}

	return &FormEncodedStrategy{}
}

// Registry supplies provider configurations to the broker.
type Registry interface {
	Get(name string) (*ProviderConfig, bool)
	Names() []string
}
