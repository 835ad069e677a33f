package antigravity

import (
	"context"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
)

// Config returns the OAuth parameters for the Antigravity backend. The
// credential's extra field carries the Cloud Code companion project id
// discovered after login.
func Config() *oauth.ProviderConfig {
	return &oauth.ProviderConfig{
		Name:         "antigravity",
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		Scopes:       Scopes,
		AuthorizeURL: AuthorizeURL,
		TokenURL:     TokenURL,
		CallbackPort: CallbackPort,
		CallbackPath: CallbackPath,
		UserAgent:    UserAgent,
		AuthorizeParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
		PostAuth: postAuth,
		Refresh:  refresh,
	}
}

func postAuth(ctx context.Context, client *httpclient.HttpClient, tok *oauth.TokenResponse, cred *oauth.Credential) error {
	cred.Extra = discoverProject(ctx, client, tok.AccessToken)

	return nil
}

// refresh runs the standard refresh grant and re-runs project discovery,
// since the companion project bound to the account can change. A failed
// discovery keeps the previously stored project id.
func refresh(ctx context.Context, client *httpclient.HttpClient, cfg *oauth.ProviderConfig, cred *oauth.Credential) (*oauth.Credential, error) {
	tok, err := oauth.RefreshGrant(ctx, client, cfg, cred.Refresh)
	if err != nil {
		return nil, err
	}

	fresh := oauth.RefreshedCredential(cred, tok)

	projectID, err := NewProjectResolver(client).ResolveProjectID(ctx, fresh.Access)
	switch {
	case err == nil && projectID != "":
		fresh.Extra = projectID
	case fresh.Extra == "":
		log.Warn(ctx, "project discovery failed, using default project",
			log.String("project_id", DefaultProjectID), log.Cause(err))

		fresh.Extra = DefaultProjectID
	default:
		log.Warn(ctx, "project discovery failed, keeping stored project",
			log.String("project_id", fresh.Extra), log.Cause(err))
	}

	return fresh, nil
}

func discoverProject(ctx context.Context, client *httpclient.HttpClient, accessToken string) string {
	projectID, err := NewProjectResolver(client).ResolveProjectID(ctx, accessToken)
	if err != nil || projectID == "" {
		log.Warn(ctx, "project discovery failed, using default project",
			log.String("project_id", DefaultProjectID), log.Cause(err))

		return DefaultProjectID
	}

	return projectID
}
