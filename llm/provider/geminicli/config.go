package geminicli

import (
	"github.com/looplj/authhub/llm/oauth"
)

// Config returns the OAuth parameters for the Gemini CLI backend: a plain
// Google installed-app flow with offline access.
func Config() *oauth.ProviderConfig {
	return &oauth.ProviderConfig{
		Name:         "geminicli",
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		Scopes:       Scopes,
		AuthorizeURL: AuthorizeURL,
		TokenURL:     TokenURL,
		CallbackPort: CallbackPort,
		CallbackPath: CallbackPath,
		AuthorizeParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
	}
}
