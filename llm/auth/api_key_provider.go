package auth

import (
	"context"
)

// APIKeyProvider yields the credential an outbound LLM request should carry.
// Implementations may return a static key or mint short-lived OAuth tokens.
type APIKeyProvider interface {
	// Get returns an API key for the given context.
	Get(ctx context.Context) string
}

// StaticKeyProvider is a simple APIKeyProvider that always returns the same API key.
type StaticKeyProvider struct {
	apiKey string
}

// NewStaticKeyProvider creates a new StaticKeyProvider with the given API key.
func NewStaticKeyProvider(apiKey string) *StaticKeyProvider {
	return &StaticKeyProvider{apiKey: apiKey}
}

// Get returns the static API key.
func (p *StaticKeyProvider) Get(_ context.Context) string {
	return p.apiKey
}
