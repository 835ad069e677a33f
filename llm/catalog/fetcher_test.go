package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
	"github.com/looplj/authhub/llm/provider"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()

	client := httpclient.NewHttpClient()
	store := oauth.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	manager := oauth.NewManager(store, client, provider.NewRegistry())

	return NewFetcher(manager, client)
}

func TestFetchStaticBaselines(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t)
	ctx := context.Background()

	models, err := fetcher.Fetch(ctx, "codex")
	require.NoError(t, err)
	require.NotEmpty(t, models)
	require.Equal(t, []string{"minimal", "low", "medium", "high"}, models[0].ReasoningEfforts)
	require.Equal(t, "medium", models[0].DefaultEffort)

	models, err = fetcher.Fetch(ctx, "claudecode")
	require.NoError(t, err)
	require.NotEmpty(t, models)
	require.Empty(t, models[0].ReasoningEfforts)

	models, err = fetcher.Fetch(ctx, "antigravity")
	require.NoError(t, err)
	require.NotEmpty(t, models)

	_, err = fetcher.Fetch(ctx, "unknown")
	require.Error(t, err)
}

func TestFetchCopilotModels(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sk-copilot", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":"gpt-4o"},{"id":"claude-sonnet-4"},{"name":"no-id"}]}`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t)
	fetcher.copilotModelsURL = server.URL

	require.NoError(t, fetcher.manager.Store().Save("copilot", oauth.NewAPIKeyCredential("sk-copilot")))

	models, err := fetcher.Fetch(context.Background(), "copilot")
	require.NoError(t, err)
	require.Equal(t, []Model{{ID: "gpt-4o"}, {ID: "claude-sonnet-4"}}, models)
}

func TestFetchCopilotRequiresCredential(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t)

	_, err := fetcher.Fetch(context.Background(), "copilot")
	require.Error(t, err)
}

func TestFetchGeminiManifest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"google":{"models":{"gemini-2.5-pro":{},"gemini-2.5-flash":{}}},"openai":{"models":{"gpt-4o":{}}}}`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(t)
	fetcher.geminiManifestURL = server.URL

	models, err := fetcher.Fetch(context.Background(), "geminicli")
	require.NoError(t, err)
	require.Len(t, models, 2)

	ids := []string{models[0].ID, models[1].ID}
	require.ElementsMatch(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, ids)
}

func TestFetchAllOmitsFailingProviders(t *testing.T) {
	t.Parallel()

	manifest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"google":{"models":{"gemini-2.5-pro":{}}}}`)
	}))
	defer manifest.Close()

	fetcher := newTestFetcher(t)
	fetcher.geminiManifestURL = manifest.URL
	// No copilot credential stored, so that provider's fetch fails and is
	// omitted from the aggregate.
	fetcher.copilotModelsURL = "http://127.0.0.1:1/models"

	result := fetcher.FetchAll(context.Background())
	require.NotContains(t, result, "copilot")
	require.Contains(t, result, "codex")
	require.Contains(t, result, "claudecode")
	require.Contains(t, result, "antigravity")
	require.Contains(t, result, "geminicli")
}
