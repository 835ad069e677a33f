package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
)

// ServiceToken is the short-lived Copilot API token derived from a GitHub
// OAuth token. ExpiresAt is unix seconds.
type ServiceToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func serviceHeaders(githubToken string) http.Header {
	return http.Header{
		"Authorization":         []string{"Bearer " + githubToken},
		"Accept":                []string{"application/json"},
		"User-Agent":            []string{UserAgent},
		"Editor-Version":        []string{EditorVersion},
		"Editor-Plugin-Version": []string{EditorPluginVersion},
	}
}

// FetchServiceToken exchanges a GitHub OAuth token for a Copilot service
// token.
func FetchServiceToken(ctx context.Context, client *httpclient.HttpClient, githubToken string) (*ServiceToken, error) {
	return fetchServiceTokenFrom(ctx, client, ServiceTokenURL, githubToken)
}

func fetchServiceTokenFrom(ctx context.Context, client *httpclient.HttpClient, url, githubToken string) (*ServiceToken, error) {
	req := &httpclient.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: serviceHeaders(githubToken),
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		if he, ok := httpclient.AsError(err); ok {
			return nil, fmt.Errorf("%w: copilot service token request failed with status %d",
				oauth.ErrProviderProtocol, he.StatusCode)
		}

		return nil, fmt.Errorf("copilot service token request: %w", err)
	}

	var token ServiceToken
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return nil, fmt.Errorf("decode copilot service token: %w", err)
	}

	if token.Token == "" {
		return nil, fmt.Errorf("%w: copilot service token response missing token", oauth.ErrProviderProtocol)
	}

	return &token, nil
}
