package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/httpclient"
)

// defaultIdleTimeout bounds how long an unclaimed flow may hold its listener
// when the user abandons the browser tab.
const defaultIdleTimeout = 5 * time.Minute

// AuthCodeFlow owns the per-provider table of pending authorization-code
// logins. At most one flow is live per provider name; a second start while
// the first is still awaiting its callback joins the existing flow.
type AuthCodeFlow struct {
	httpClient  *httpclient.HttpClient
	idleTimeout time.Duration

	mu     sync.Mutex
	active map[string]*activeFlow
}

// NewAuthCodeFlow creates the flow manager.
func NewAuthCodeFlow(client *httpclient.HttpClient) *AuthCodeFlow {
	return &AuthCodeFlow{
		httpClient:  client,
		idleTimeout: defaultIdleTimeout,
		active:      make(map[string]*activeFlow),
	}
}

type callbackResult struct {
	code string
	err  error
}

type activeFlow struct {
	id       string
	provider string
	authURL  string
	pkce     PKCE
	state    string
	server   *http.Server
	timer    *time.Timer

	resolveOnce sync.Once
	outcome     callbackResult
	// resolved is closed once the outcome is set, so every caller joined
	// on the flow observes the same result.
	resolved chan struct{}
	// done is closed on teardown; a flow whose done channel is closed is
	// no longer reusable.
	done chan struct{}
}

func (f *activeFlow) alive() bool {
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}

func (f *activeFlow) resolve(res callbackResult) {
	f.resolveOnce.Do(func() {
		f.outcome = res
		close(f.resolved)
	})
}

// PendingLogin is the caller's handle on an outstanding authorization-code
// login. Await blocks until the browser callback resolves the flow.
type PendingLogin struct {
	AuthURL string

	flow *activeFlow
}

// Await blocks until the callback delivers a code or a terminal failure.
func (p *PendingLogin) Await(ctx context.Context) (string, error) {
	select {
	case <-p.flow.resolved:
		if p.flow.outcome.err != nil {
			return "", p.flow.outcome.err
		}

		return p.flow.outcome.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("provider %q login canceled: %w", p.flow.provider, ctx.Err())
	}
}

// Start begins (or joins) an authorization-code login for the provider. If a
// flow is already awaiting its callback, the same authorization URL and
// pending handle are returned instead of binding a second listener.
func (m *AuthCodeFlow) Start(ctx context.Context, cfg *ProviderConfig) (*PendingLogin, error) {
	if cfg.AuthorizeURL == "" {
		return nil, fmt.Errorf("%w: provider %q has no authorization endpoint", ErrNotConfigured, cfg.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[cfg.Name]; ok {
		if existing.alive() {
			log.Debug(ctx, "reusing pending login flow",
				log.String("provider", cfg.Name), log.String("flow_id", existing.id))

			return &PendingLogin{AuthURL: existing.authURL, flow: existing}, nil
		}

		// Superseded or timed out; tear down before replacing.
		m.teardownLocked(existing)
	}

	flow, err := m.startLocked(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m.active[cfg.Name] = flow

	return &PendingLogin{AuthURL: flow.authURL, flow: flow}, nil
}

func (m *AuthCodeFlow) startLocked(ctx context.Context, cfg *ProviderConfig) (*activeFlow, error) {
	pkce := GeneratePKCE()
	state := GenerateState()

	flow := &activeFlow{
		id:       uuid.NewString(),
		provider: cfg.Name,
		authURL:  buildAuthorizeURL(cfg, pkce.Challenge, state),
		pkce:     pkce,
		state:    state,
		resolved: make(chan struct{}),
		done:     make(chan struct{}),
	}

	host := cfg.CallbackHost
	if host == "" {
		host = "localhost"
	}

	addr := fmt.Sprintf("%s:%d", host, cfg.CallbackPort)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: provider %q callback listener could not bind %s; check for a stale process listening on port %d: %v",
			ErrPortInUse, cfg.Name, addr, cfg.CallbackPort, err)
	}

	path := cfg.CallbackPath
	if path == "" {
		path = "/callback"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		m.handleCallback(w, r, cfg, flow)
	})

	flow.server = &http.Server{Handler: mux}

	go func() {
		if err := flow.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "callback server stopped",
				log.String("provider", cfg.Name), log.Cause(err))
		}
	}()

	flow.timer = time.AfterFunc(m.idleTimeout, func() {
		// Tear down before resolving so a caller woken by the timeout can
		// immediately start a fresh flow on the same port.
		m.remove(cfg.Name, flow)
		flow.resolve(callbackResult{err: fmt.Errorf(
			"%w: provider %q login was not completed within %s, re-run login",
			ErrTimeout, cfg.Name, m.idleTimeout)})
	})

	log.Debug(ctx, "login flow started",
		log.String("provider", cfg.Name),
		log.String("flow_id", flow.id),
		log.String("redirect_uri", cfg.RedirectURI()))

	return flow, nil
}

func buildAuthorizeURL(cfg *ProviderConfig, challenge, state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", cfg.RedirectURI())
	params.Set("code_challenge", challenge)
	params.Set("code_challenge_method", "S256")
	params.Set("state", state)

	if len(cfg.Scopes) > 0 {
		params.Set("scope", strings.Join(cfg.Scopes, " "))
	}

	for k, v := range cfg.AuthorizeParams {
		params.Set(k, v)
	}

	return cfg.AuthorizeURL + "?" + params.Encode()
}

func (m *AuthCodeFlow) handleCallback(w http.ResponseWriter, r *http.Request, cfg *ProviderConfig, flow *activeFlow) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		desc := query.Get("error_description")
		writeCallbackPage(w, http.StatusBadRequest, "Login failed",
			fmt.Sprintf("The provider reported an error: %s. You can close this window.", errParam))
		flow.resolve(callbackResult{err: fmt.Errorf(
			"%w: provider %q reported %s: %s", ErrCallbackRejected, cfg.Name, errParam, desc)})
		m.removeAsync(cfg.Name, flow)

		return
	}

	if subtle.ConstantTimeCompare([]byte(query.Get("state")), []byte(flow.state)) != 1 {
		writeCallbackPage(w, http.StatusBadRequest, "Login failed",
			"State validation failed. You can close this window and retry the login.")
		flow.resolve(callbackResult{err: fmt.Errorf(
			"%w: provider %q returned an unexpected state value", ErrCallbackRejected, cfg.Name)})
		m.removeAsync(cfg.Name, flow)

		return
	}

	code := query.Get("code")
	if code == "" {
		writeCallbackPage(w, http.StatusBadRequest, "Login failed",
			"The callback carried no authorization code. You can close this window and retry the login.")
		flow.resolve(callbackResult{err: fmt.Errorf(
			"%w: provider %q callback carried no code parameter", ErrCallbackRejected, cfg.Name)})
		m.removeAsync(cfg.Name, flow)

		return
	}

	writeCallbackPage(w, http.StatusOK, "Login complete",
		"Authentication succeeded. You can close this window and return to the terminal.")
	flow.resolve(callbackResult{code: code})
	m.removeAsync(cfg.Name, flow)
}

func writeCallbackPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html><html><body style="font-family:system-ui;text-align:center;margin-top:80px">
<h2>%s</h2>
<p>%s</p>
</body></html>`, title, message)
}

// removeAsync tears the flow down without blocking the callback handler,
// which is itself served by the flow's server.
func (m *AuthCodeFlow) removeAsync(provider string, flow *activeFlow) {
	go m.remove(provider, flow)
}

func (m *AuthCodeFlow) remove(provider string, flow *activeFlow) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.active[provider]; ok && current == flow {
		delete(m.active, provider)
	}

	m.teardownLocked(flow)
}

func (m *AuthCodeFlow) teardownLocked(flow *activeFlow) {
	select {
	case <-flow.done:
		return
	default:
	}

	close(flow.done)

	if flow.timer != nil {
		flow.timer.Stop()
	}

	if flow.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = flow.server.Shutdown(ctx)
	}
}

// Exchange swaps an authorization code for tokens at the provider's token
// endpoint.
func (m *AuthCodeFlow) Exchange(ctx context.Context, cfg *ProviderConfig, params ExchangeParams) (*TokenResponse, error) {
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("%w: provider %q has no token endpoint", ErrNotConfigured, cfg.Name)
	}

	if params.RedirectURI == "" {
		params.RedirectURI = cfg.RedirectURI()
	}

	req, err := cfg.strategy().BuildExchangeRequest(cfg, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
	}

	resp, err := m.httpClient.Do(ctx, req)
	if err != nil {
		if he, ok := httpclient.AsError(err); ok {
			if tokenErr, ok := errorBody(he.Body); ok {
				return nil, fmt.Errorf("%w: provider %q code exchange failed: %s - %s",
					ErrProviderProtocol, cfg.Name, tokenErr.Error, tokenErr.ErrorDescription)
			}

			return nil, fmt.Errorf("%w: provider %q code exchange failed with status %d",
				ErrProviderProtocol, cfg.Name, he.StatusCode)
		}

		return nil, fmt.Errorf("provider %q code exchange: %w", cfg.Name, err)
	}

	tok, err := ParseTokenResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
	}

	return tok, nil
}

// Login composes start, callback await, code exchange, the provider's
// post-auth hook, and persistence into one call.
func (m *AuthCodeFlow) Login(ctx context.Context, cfg *ProviderConfig, store *Store) (*Credential, error) {
	pending, err := m.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return m.CompleteLogin(ctx, cfg, store, pending)
}

// CompleteLogin finishes a previously started flow: it awaits the callback,
// exchanges the code, runs the post-auth hook, and persists the credential.
func (m *AuthCodeFlow) CompleteLogin(ctx context.Context, cfg *ProviderConfig, store *Store, pending *PendingLogin) (*Credential, error) {
	code, err := pending.Await(ctx)
	if err != nil {
		return nil, err
	}

	tok, err := m.Exchange(ctx, cfg, ExchangeParams{
		Code:         code,
		CodeVerifier: pending.flow.pkce.Verifier,
		State:        pending.flow.state,
	})
	if err != nil {
		return nil, err
	}

	cred := NewOAuthCredential(tok)

	if cfg.PostAuth != nil {
		if err := cfg.PostAuth(ctx, m.httpClient, tok, cred); err != nil {
			return nil, fmt.Errorf("provider %q post-authentication: %w", cfg.Name, err)
		}
	}

	if err := store.Save(cfg.Name, cred); err != nil {
		return nil, fmt.Errorf("provider %q: persist credential: %w", cfg.Name, err)
	}

	log.Info(ctx, "login complete", log.String("provider", cfg.Name),
		log.Time("expires_at", cred.ExpiresAt()))

	return cred, nil
}
