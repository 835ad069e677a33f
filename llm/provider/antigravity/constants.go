package antigravity

import "strings"

const (
	// ClientID issued for the Antigravity OAuth application.
	//nolint:gosec // This is a public OAuth client ID.
	ClientID = "1071006060591-tmhssin2h21lcre235vtolojh4g403ep.apps.googleusercontent.com"
	// ClientSecret issued for the Antigravity OAuth application.
	//nolint:gosec // This is a public client secret for the installed app flow.
	ClientSecret = "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"

	AuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	//nolint:gosec // This is Google's standard OAuth token endpoint.
	TokenURL = "https://oauth2.googleapis.com/token"

	CallbackPort = 51121
	CallbackPath = "/oauth-callback"

	// EndpointProd is the production Cloud Code endpoint.
	EndpointProd = "https://cloudcode-pa.googleapis.com"
	// EndpointDaily is the daily sandbox endpoint.
	EndpointDaily = "https://daily-cloudcode-pa.sandbox.googleapis.com"
	// EndpointAutopush is a fallback endpoint.
	EndpointAutopush = "https://autopush-cloudcode-pa.sandbox.googleapis.com"

	// UserAgent used for requests.
	UserAgent = "antigravity/1.15.8 windows/amd64"

	// ApiClient used for X-Goog-Api-Client header.
	ApiClient = "google-cloud-sdk vscode_cloudshelleditor/0.1"

	// ClientMetadata used for Client-Metadata header.
	ClientMetadata = `{"ideType":"IDE_UNSPECIFIED","platform":"PLATFORM_UNSPECIFIED","pluginType":"GEMINI"}`

	// DefaultProjectID is the fallback project ID (Cloud Code default).
	DefaultProjectID = "rising-fact-p41fc"
)

var (
	// Scopes required for Antigravity integrations.
	Scopes = []string{
		"https://www.googleapis.com/auth/cloud-platform",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
		"https://www.googleapis.com/auth/cclog",
		"https://www.googleapis.com/auth/experimentsandconfigs",
	}
	ScopesString = strings.Join(Scopes, " ")

	// LoadEndpoints in order of preference for project discovery.
	LoadEndpoints = []string{
		EndpointProd,
		EndpointDaily,
		EndpointAutopush,
	}
)

// DefaultModels returns the default models for Antigravity.
func DefaultModels() []string {
	return []string{
		"claude-sonnet-4-5",
		"claude-sonnet-4-5-thinking",
		"claude-opus-4-5-thinking",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
		"gemini-3-pro-low",
		"gemini-3-pro-high",
		"gemini-3-pro-medium",
		"gemini-3-flash",
		"gemini-3-pro-image",
		"gpt-oss-120b-medium",
	}
}
