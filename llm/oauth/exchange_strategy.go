package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/looplj/authhub/llm/httpclient"
)

// ExchangeParams carries one authorization-code exchange.
type ExchangeParams struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
	State        string
}

// ExchangeStrategy defines the interface for different OAuth token exchange formats.
// Different providers may use different request formats (form-encoded vs JSON).
type ExchangeStrategy interface {
	// BuildExchangeRequest builds the HTTP request for exchanging an authorization code.
	BuildExchangeRequest(cfg *ProviderConfig, params ExchangeParams) (*httpclient.Request, error)
	// BuildRefreshRequest builds the HTTP request for refreshing a token.
	BuildRefreshRequest(cfg *ProviderConfig, refreshToken string) (*httpclient.Request, error)
}

// FormEncodedStrategy implements OAuth using form-urlencoded requests (standard OAuth2).
type FormEncodedStrategy struct{}

// JSONStrategy implements OAuth using JSON requests (Claude style). Claude
// additionally requires the state value echoed in the token exchange.
type JSONStrategy struct{}

func tokenHeaders(cfg *ProviderConfig, contentType string) http.Header {
	header := http.Header{
		"Content-Type": []string{contentType},
		"Accept":       []string{"application/json"},
	}
	if cfg.UserAgent != "" {
		header.Set("User-Agent", cfg.UserAgent)
	}

	for k, v := range cfg.ExtraHeaders {
		header.Set(k, v)
	}

	return header
}

// BuildExchangeRequest implements ExchangeStrategy for form-encoded requests.
func (s *FormEncodedStrategy) BuildExchangeRequest(cfg *ProviderConfig, params ExchangeParams) (*httpclient.Request, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", cfg.ClientID)
	form.Set("code", params.Code)
	form.Set("redirect_uri", params.RedirectURI)
	form.Set("code_verifier", params.CodeVerifier)

	if cfg.ClientSecret != "" {
		form.Set("client_secret", cfg.ClientSecret)
	}

	for k, v := range cfg.ExtraParams {
		form.Set(k, v)
	}

	return &httpclient.Request{
		Method:  http.MethodPost,
		URL:     cfg.TokenURL,
		Headers: tokenHeaders(cfg, "application/x-www-form-urlencoded"),
		Body:    []byte(form.Encode()),
	}, nil
}

// BuildRefreshRequest implements ExchangeStrategy for form-encoded requests.
func (s *FormEncodedStrategy) BuildRefreshRequest(cfg *ProviderConfig, refreshToken string) (*httpclient.Request, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh_token is empty")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", cfg.ClientID)
	form.Set("refresh_token", refreshToken)

	if cfg.ClientSecret != "" {
		form.Set("client_secret", cfg.ClientSecret)
	}

	for k, v := range cfg.ExtraParams {
		form.Set(k, v)
	}

	return &httpclient.Request{
		Method:  http.MethodPost,
		URL:     cfg.TokenURL,
		Headers: tokenHeaders(cfg, "application/x-www-form-urlencoded"),
		Body:    []byte(form.Encode()),
	}, nil
}

// BuildExchangeRequest implements ExchangeStrategy for JSON requests.
func (s *JSONStrategy) BuildExchangeRequest(cfg *ProviderConfig, params ExchangeParams) (*httpclient.Request, error) {
	reqBody := map[string]string{
		"grant_type":    "authorization_code",
		"code":          params.Code,
		"client_id":     cfg.ClientID,
		"redirect_uri":  params.RedirectURI,
		"code_verifier": params.CodeVerifier,
	}

	if params.State != "" {
		reqBody["state"] = params.State
	}

	for k, v := range cfg.ExtraParams {
		reqBody[k] = v
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal exchange request: %w", err)
	}

	return &httpclient.Request{
		Method:  http.MethodPost,
		URL:     cfg.TokenURL,
		Headers: tokenHeaders(cfg, "application/json"),
		Body:    bodyBytes,
	}, nil
}

// BuildRefreshRequest implements ExchangeStrategy for JSON requests.
func (s *JSONStrategy) BuildRefreshRequest(cfg *ProviderConfig, refreshToken string) (*httpclient.Request, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh_token is empty")
	}

	reqBody := map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     cfg.ClientID,
		"refresh_token": refreshToken,
	}

	for k, v := range cfg.ExtraParams {
		reqBody[k] = v
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal refresh request: %w", err)
	}

	return &httpclient.Request{
		Method:  http.MethodPost,
		URL:     cfg.TokenURL,
		Headers: tokenHeaders(cfg, "application/json"),
		Body:    bodyBytes,
	}, nil
}
