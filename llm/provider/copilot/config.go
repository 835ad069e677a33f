package copilot

import (
	"context"
	"strings"
	"time"

	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
)

// Config returns the OAuth parameters for the GitHub Copilot backend. Login
// uses the GitHub device flow; the resulting GitHub token is only material
// for minting short-lived Copilot service tokens, so the credential stores
// the service token as access and the GitHub token in the refresh slot.
func Config() *oauth.ProviderConfig {
	return &oauth.ProviderConfig{
		Name:          "copilot",
		ClientID:      ClientID,
		Scopes:        strings.Fields(Scopes),
		TokenURL:      TokenURL,
		DeviceCodeURL: DeviceCodeURL,
		UserAgent:     UserAgent,
		PostAuth:      postAuth,
		Refresh:       refresh,
		RequestHeaders: func(_ *oauth.Credential) map[string]string {
			return map[string]string{
				"Editor-Version":        EditorVersion,
				"Editor-Plugin-Version": EditorPluginVersion,
			}
		},
	}
}

func postAuth(ctx context.Context, client *httpclient.HttpClient, tok *oauth.TokenResponse, cred *oauth.Credential) error {
	service, err := FetchServiceToken(ctx, client, tok.AccessToken)
	if err != nil {
		return err
	}

	cred.Access = service.Token
	cred.Refresh = tok.AccessToken
	cred.Expires = time.Unix(service.ExpiresAt, 0).UnixMilli()

	return nil
}

// refresh re-derives the service token from the long-lived GitHub token; no
// token endpoint round trip is involved.
func refresh(ctx context.Context, client *httpclient.HttpClient, _ *oauth.ProviderConfig, cred *oauth.Credential) (*oauth.Credential, error) {
	service, err := FetchServiceToken(ctx, client, cred.Refresh)
	if err != nil {
		return nil, err
	}

	fresh := *cred
	fresh.Access = service.Token
	fresh.Expires = time.Unix(service.ExpiresAt, 0).UnixMilli()

	return &fresh, nil
}
