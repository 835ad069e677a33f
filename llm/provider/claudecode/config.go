package claudecode

import (
	"strings"

	"github.com/looplj/authhub/llm/oauth"
)

// Config returns the OAuth parameters for the Claude Code backend. The token
// endpoint expects a JSON body with the state echoed back rather than the
// standard form encoding.
func Config() *oauth.ProviderConfig {
	return &oauth.ProviderConfig{
		Name:         "claudecode",
		ClientID:     ClientID,
		Scopes:       strings.Fields(Scopes),
		AuthorizeURL: AuthorizeURL,
		TokenURL:     TokenURL,
		CallbackPort: CallbackPort,
		CallbackPath: CallbackPath,
		UserAgent:    UserAgent,
		AuthorizeParams: map[string]string{
			"code": "true",
		},
		Exchange: &oauth.JSONStrategy{},
		RequestHeaders: func(_ *oauth.Credential) map[string]string {
			return map[string]string{"anthropic-beta": "oauth-2025-04-20"}
		},
	}
}
