package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
	"github.com/looplj/authhub/llm/provider/antigravity"
	"github.com/looplj/authhub/llm/provider/claudecode"
	"github.com/looplj/authhub/llm/provider/codex"
	"github.com/looplj/authhub/llm/provider/copilot"
	"github.com/looplj/authhub/llm/provider/geminicli"
)

// Model describes one routable model of a provider.
type Model struct {
	ID string `json:"id"`

	// ReasoningEfforts is the effort vocabulary the model accepts, empty
	// when the model takes none.
	ReasoningEfforts []string `json:"reasoning_efforts,omitempty"`
	DefaultEffort    string   `json:"default_effort,omitempty"`
}

var codexEfforts = []string{"minimal", "low", "medium", "high"}

// Fetcher lists the models each provider exposes. Strategies differ per
// provider: an authenticated API call, a remote manifest, or a local
// baseline.
type Fetcher struct {
	manager    *oauth.Manager
	httpClient *httpclient.HttpClient

	copilotModelsURL  string
	geminiManifestURL string
}

func NewFetcher(manager *oauth.Manager, client *httpclient.HttpClient) *Fetcher {
	return &Fetcher{
		manager:           manager,
		httpClient:        client,
		copilotModelsURL:  copilot.ModelsURL,
		geminiManifestURL: geminicli.ManifestURL,
	}
}

// Fetch returns the models of one provider.
func (f *Fetcher) Fetch(ctx context.Context, provider string) ([]Model, error) {
	switch provider {
	case "codex":
		return lo.Map(codex.DefaultModels(), func(id string, _ int) Model {
			return Model{ID: id, ReasoningEfforts: codexEfforts, DefaultEffort: "medium"}
		}), nil
	case "claudecode":
		return staticModels(claudecode.DefaultModels()), nil
	case "antigravity":
		return staticModels(antigravity.DefaultModels()), nil
	case "copilot":
		return f.fetchCopilot(ctx)
	case "geminicli":
		return f.fetchGeminiManifest(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", oauth.ErrNotConfigured, provider)
	}
}

// FetchAll aggregates every provider's models. A provider whose fetch fails
// is omitted rather than failing the aggregate.
func (f *Fetcher) FetchAll(ctx context.Context) map[string][]Model {
	result := make(map[string][]Model)

	for _, provider := range f.manager.Providers() {
		models, err := f.Fetch(ctx, provider)
		if err != nil {
			log.Warn(ctx, "model listing failed, omitting provider",
				log.String("provider", provider), log.Cause(err))

			continue
		}

		result[provider] = models
	}

	return result
}

func staticModels(ids []string) []Model {
	return lo.Map(ids, func(id string, _ int) Model {
		return Model{ID: id}
	})
}

// fetchCopilot lists models from the Copilot API using a valid service
// token.
func (f *Fetcher) fetchCopilot(ctx context.Context) ([]Model, error) {
	token, err := f.manager.AccessToken(ctx, "copilot")
	if err != nil {
		return nil, err
	}

	req := &httpclient.Request{
		Method: http.MethodGet,
		URL:    f.copilotModelsURL,
		Headers: http.Header{
			"Authorization":  []string{"Bearer " + token},
			"Accept":         []string{"application/json"},
			"User-Agent":     []string{copilot.UserAgent},
			"Editor-Version": []string{copilot.EditorVersion},
		},
	}

	resp, err := f.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("copilot model listing: %w", err)
	}

	var models []Model

	for _, entry := range gjson.GetBytes(resp.Body, "data").Array() {
		id := entry.Get("id").String()
		if id == "" {
			continue
		}

		models = append(models, Model{ID: id})
	}

	if len(models) == 0 {
		return nil, fmt.Errorf("%w: copilot model listing returned no models", oauth.ErrProviderProtocol)
	}

	return models, nil
}

// fetchGeminiManifest reads Google's model ids out of the community model
// manifest.
func (f *Fetcher) fetchGeminiManifest(ctx context.Context) ([]Model, error) {
	req := &httpclient.Request{
		Method: http.MethodGet,
		URL:    f.geminiManifestURL,
		Headers: http.Header{
			"Accept": []string{"application/json"},
		},
	}

	resp, err := f.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("gemini model manifest: %w", err)
	}

	var models []Model

	gjson.GetBytes(resp.Body, "google.models").ForEach(func(key, _ gjson.Result) bool {
		models = append(models, Model{ID: key.String()})

		return true
	})

	if len(models) == 0 {
		return nil, fmt.Errorf("%w: gemini model manifest carried no google models", oauth.ErrProviderProtocol)
	}

	return models, nil
}
