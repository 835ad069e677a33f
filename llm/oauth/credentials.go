package oauth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CredentialType tags the two credential shapes kept in the store.
type CredentialType string

const (
	CredentialTypeOAuth  CredentialType = "oauth"
	CredentialTypeAPIKey CredentialType = "api"
)

// expiryBuffer is the safety margin applied when checking OAuth expiry, so a
// token is never handed out moments before the provider rejects it.
const expiryBuffer = 60 * time.Second

// Credential is the persisted secret material for one provider: either an
// OAuth access/refresh pair with expiry, or a static API key.
type Credential struct {
	Type CredentialType `json:"type"`

	// OAuth fields.
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
	// Expires is unix milliseconds.
	Expires   int64  `json:"expires,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	// Extra carries opaque provider-specific data (e.g. a Google project
	// id). Earlier releases packed it into Refresh as "refresh|extra";
	// UnmarshalJSON still splits that legacy form.
	Extra string `json:"extra,omitempty"`

	// API-key field.
	Key string `json:"key,omitempty"`
}

// NewAPIKeyCredential wraps a static API key.
func NewAPIKeyCredential(key string) *Credential {
	return &Credential{Type: CredentialTypeAPIKey, Key: key}
}

// NewOAuthCredential builds a credential from a token endpoint response.
func NewOAuthCredential(tok *TokenResponse) *Credential {
	cred := &Credential{
		Type:    CredentialTypeOAuth,
		Access:  tok.AccessToken,
		Refresh: tok.RefreshToken,
	}

	if tok.ExpiresIn > 0 {
		cred.Expires = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).UnixMilli()
	}

	return cred
}

// ExpiresAt returns the expiry instant, zero when none is recorded.
func (c *Credential) ExpiresAt() time.Time {
	if c == nil || c.Expires == 0 {
		return time.Time{}
	}

	return time.UnixMilli(c.Expires)
}

// IsExpired reports whether an OAuth credential needs refreshing at now,
// applying the safety buffer. API-key credentials never expire.
func (c *Credential) IsExpired(now time.Time) bool {
	if c == nil {
		return true
	}

	if c.Type == CredentialTypeAPIKey {
		return false
	}

	if c.Expires == 0 {
		return true
	}

	return now.Add(expiryBuffer).After(time.UnixMilli(c.Expires))
}

type credentialJSON Credential

// UnmarshalJSON parses a stored credential, splitting the legacy
// pipe-packed "refresh|extra" refresh form into explicit fields.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var raw credentialJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Credential(raw)

	if c.Type == CredentialTypeOAuth && c.Extra == "" {
		if refresh, extra, ok := strings.Cut(c.Refresh, "|"); ok {
			c.Refresh = refresh
			c.Extra = extra
		}
	}

	return nil
}

// TokenResponse is the JSON body returned by token and device endpoints.
type TokenResponse struct {
	IDToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

// TokenError is the RFC 6749 error body shape.
type TokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ParseTokenResponse decodes a token endpoint body, surfacing a body-level
// error field as ErrProviderProtocol with the provider's description.
func ParseTokenResponse(body []byte) (*TokenResponse, error) {
	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		var tokenErr TokenError
		if err := json.Unmarshal(body, &tokenErr); err == nil && tokenErr.Error != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrProviderProtocol, tokenErr.Error, tokenErr.ErrorDescription)
		}

		return nil, fmt.Errorf("%w: token response missing access_token", ErrProviderProtocol)
	}

	return &tokenResp, nil
}

// errorBody extracts a TokenError from a raw endpoint body, if present.
func errorBody(body []byte) (TokenError, bool) {
	var tokenErr TokenError
	if err := json.Unmarshal(body, &tokenErr); err != nil || tokenErr.Error == "" {
		return TokenError{}, false
	}

	return tokenErr, true
}
