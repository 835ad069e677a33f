package antigravity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/httpclient"
)

// ProjectResolver discovers the Cloud Code companion project bound to an
// account. Discovery walks the load endpoints in order; an account with no
// project yet is onboarded onto its default tier first.
type ProjectResolver struct {
	httpClient *httpclient.HttpClient
	endpoints  []string
	sleep      func(time.Duration)
}

func NewProjectResolver(client *httpclient.HttpClient) *ProjectResolver {
	return &ProjectResolver{
		httpClient: client,
		endpoints:  LoadEndpoints,
		sleep:      time.Sleep,
	}
}

func cloudCodeHeaders(accessToken string) http.Header {
	return http.Header{
		"Authorization":     []string{"Bearer " + accessToken},
		"Content-Type":      []string{"application/json"},
		"User-Agent":        []string{UserAgent},
		"X-Goog-Api-Client": []string{ApiClient},
		"Client-Metadata":   []string{ClientMetadata},
	}
}

var clientMetadataBody = map[string]string{
	"ideType":    "IDE_UNSPECIFIED",
	"platform":   "PLATFORM_UNSPECIFIED",
	"pluginType": "GEMINI",
}

// ResolveProjectID returns the companion project id for the account that the
// access token belongs to.
func (r *ProjectResolver) ResolveProjectID(ctx context.Context, accessToken string) (string, error) {
	if len(r.endpoints) == 0 {
		return "", errors.New("no load endpoints configured")
	}

	var lastErr error

	for _, baseEndpoint := range r.endpoints {
		projectID, tierID, err := r.loadCodeAssist(ctx, baseEndpoint, accessToken)
		if err != nil {
			lastErr = err

			continue
		}

		if projectID != "" {
			return projectID, nil
		}

		// No project yet; onboard the account on its default tier.
		projectID, err = r.onboardUser(ctx, accessToken, tierID)
		if err == nil && projectID != "" {
			return projectID, nil
		}

		if err != nil {
			log.Warn(ctx, "failed to onboard user", log.Cause(err))

			lastErr = err
		}
	}

	return "", lastErr
}

func (r *ProjectResolver) loadCodeAssist(ctx context.Context, baseEndpoint, accessToken string) (projectID, tierID string, err error) {
	reqBody := map[string]any{
		"metadata": clientMetadataBody,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("marshal request body: %w", err)
	}

	req := &httpclient.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/v1internal:loadCodeAssist", baseEndpoint),
		Headers: cloudCodeHeaders(accessToken),
		Body:    bodyBytes,
	}

	resp, err := r.httpClient.Do(ctx, req)
	if err != nil {
		return "", "", err
	}

	var data struct {
		CloudAICompanionProject any `json:"cloudaicompanionProject"`
		AllowedTiers            []struct {
			ID        string `json:"id"`
			IsDefault bool   `json:"isDefault"`
		} `json:"allowedTiers"`
	}

	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return "", "", err
	}

	// The project field is a bare id string or an object depending on the
	// endpoint generation.
	switch v := data.CloudAICompanionProject.(type) {
	case string:
		projectID = v
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			projectID = id
		}
	}

	tierID = "FREE"

	if len(data.AllowedTiers) > 0 {
		tierID = data.AllowedTiers[0].ID

		for _, tier := range data.AllowedTiers {
			if tier.IsDefault {
				tierID = tier.ID

				break
			}
		}
	}

	return projectID, tierID, nil
}

func (r *ProjectResolver) onboardUser(ctx context.Context, accessToken, tierID string) (string, error) {
	for _, baseEndpoint := range r.endpoints {
		reqBody := map[string]any{
			"tierId":   tierID,
			"metadata": clientMetadataBody,
		}
		bodyBytes, _ := json.Marshal(reqBody)

		req := &httpclient.Request{
			Method:  http.MethodPost,
			URL:     fmt.Sprintf("%s/v1internal:onboardUser", baseEndpoint),
			Headers: cloudCodeHeaders(accessToken),
			Body:    bodyBytes,
		}

		// Onboarding is a long-running operation; poll a few times.
		for i := 0; i < 3; i++ {
			resp, err := r.httpClient.Do(ctx, req)
			if err != nil {
				r.sleep(1 * time.Second)

				continue
			}

			var data struct {
				Done     bool `json:"done"`
				Response struct {
					CloudAICompanionProject struct {
						ID string `json:"id"`
					} `json:"cloudaicompanionProject"`
				} `json:"response"`
			}

			if err := json.Unmarshal(resp.Body, &data); err != nil {
				continue
			}

			if data.Done && data.Response.CloudAICompanionProject.ID != "" {
				return data.Response.CloudAICompanionProject.ID, nil
			}

			r.sleep(2 * time.Second)
		}
	}

	return "", errors.New("failed to onboard user after retries")
}
