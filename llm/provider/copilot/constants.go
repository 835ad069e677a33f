package copilot

const (
	DeviceCodeURL = "https://github.com/login/device/code"
	//nolint:gosec // false alert.
	TokenURL = "https://github.com/login/oauth/access_token"
	//nolint:gosec // false alert.
	ServiceTokenURL = "https://api.github.com/copilot_internal/v2/token"
	ModelsURL       = "https://api.githubcopilot.com/models"

	ClientID = "Iv1.b507a08c87ecfe98"
	Scopes   = "read:user"

	// UserAgent keep consistent with Copilot Chat.
	UserAgent           = "GitHubCopilotChat/0.26.7"
	EditorVersion       = "vscode/1.99.3"
	EditorPluginVersion = "copilot-chat/0.26.7"
)
