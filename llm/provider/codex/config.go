package codex

import (
	"context"
	"strings"

	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
)

// Config returns the OAuth parameters for the ChatGPT Codex backend.
func Config() *oauth.ProviderConfig {
	return &oauth.ProviderConfig{
		Name:         "codex",
		ClientID:     ClientID,
		Scopes:       strings.Fields(Scopes),
		AuthorizeURL: AuthorizeURL,
		TokenURL:     TokenURL,
		CallbackPort: CallbackPort,
		CallbackPath: CallbackPath,
		UserAgent:    UserAgent,
		AuthorizeParams: map[string]string{
			"id_token_add_organizations": "true",
		},
		PostAuth: postAuth,
		Refresh:  refresh,
		RequestHeaders: func(cred *oauth.Credential) map[string]string {
			if cred.AccountID == "" {
				return nil
			}

			return map[string]string{"chatgpt-account-id": cred.AccountID}
		},
	}
}

// postAuth extracts the ChatGPT account id from the issued tokens. The id
// token is preferred; some token responses only carry the claim in the
// access token.
func postAuth(_ context.Context, _ *httpclient.HttpClient, tok *oauth.TokenResponse, cred *oauth.Credential) error {
	if accountID := ExtractAccountID(tok.IDToken); accountID != "" {
		cred.AccountID = accountID

		return nil
	}

	cred.AccountID = ExtractAccountID(tok.AccessToken)

	return nil
}

// refresh runs the standard refresh grant, then re-extracts the account id
// from the rotated access token.
func refresh(ctx context.Context, client *httpclient.HttpClient, cfg *oauth.ProviderConfig, cred *oauth.Credential) (*oauth.Credential, error) {
	tok, err := oauth.RefreshGrant(ctx, client, cfg, cred.Refresh)
	if err != nil {
		return nil, err
	}

	fresh := oauth.RefreshedCredential(cred, tok)
	if accountID := ExtractAccountID(fresh.Access); accountID != "" {
		fresh.AccountID = accountID
	}

	return fresh, nil
}
