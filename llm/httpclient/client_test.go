package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "v", r.URL.Query().Get("k"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewHttpClient()

	resp, err := client.Do(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    server.URL,
		Query:  url.Values{"k": {"v"}},
		Body:   []byte(`{}`),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestDoErrorStatusKeepsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_request"}`)
	}))
	defer server.Close()

	client := NewHttpClient()

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})
	require.Error(t, err)

	httpErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	require.JSONEq(t, `{"error":"invalid_request"}`, string(httpErr.Body))
}

func TestDoAppliesAuth(t *testing.T) {
	t.Parallel()

	var gotAuth, gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-Api-Key")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewHttpClient()

	_, err := client.Do(context.Background(), &Request{
		Method: http.MethodGet,
		URL:    server.URL,
		Auth:   &AuthConfig{Type: AuthTypeBearer, APIKey: "tok-1"},
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", gotAuth)

	_, err = client.Do(context.Background(), &Request{
		Method: http.MethodGet,
		URL:    server.URL,
		Auth:   &AuthConfig{Type: AuthTypeAPIKey, APIKey: "key-1", HeaderKey: "X-Api-Key"},
	})
	require.NoError(t, err)
	require.Equal(t, "key-1", gotKey)
}

func TestDoDefaultUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewHttpClient()

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	require.Equal(t, "authhub/1.0", gotUA)
}
