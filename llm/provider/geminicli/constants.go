package geminicli

const (
	//nolint:gosec // This is a public OAuth client ID.
	ClientID = "681255809395-oo8ft2oprdrnp9e3aqf6av3hmdib135j.apps.googleusercontent.com"
	//nolint:gosec // This is a public client secret for the installed app flow.
	ClientSecret = "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"

	AuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	//nolint:gosec // This is Google's standard OAuth token endpoint.
	TokenURL = "https://oauth2.googleapis.com/token"

	CallbackPort = 8085
	CallbackPath = "/oauth2callback"

	// ManifestURL serves the community model manifest that model listing
	// reads from.
	ManifestURL = "https://models.dev/api.json"
)

// Scopes required for the Gemini CLI integration.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}
