package enrich

import (
	"context"
	"fmt"
	"time"

	"psenrich/internal/models"
	"psenrich/internal/pkg/httpclient"
)

// Enricher produces a descriptive card for one cmdlet. Implementations may
// be slow and may fail; the runner absorbs both into the job counters.
type Enricher interface {
	Enrich(ctx context.Context, name string) (*models.CmdletCard, error)
}

// AIClient calls the external AI service to generate cmdlet cards.
type AIClient struct {
	http *httpclient.Client
}

// NewAIClient builds a client for the AI service at baseURL. The timeout is
// the transport ceiling; the runner additionally bounds each call with a
// per-item context deadline.
func NewAIClient(baseURL, apiKey string, timeout time.Duration) *AIClient {
	hc := httpclient.New().
		WithBaseURL(baseURL).
		WithTimeout(timeout)
	if apiKey != "" {
		hc.WithBearerToken(apiKey)
	}
	return &AIClient{http: hc}
}

type enrichRequest struct {
	Command string `json:"command"`
}

type enrichResponse struct {
	Description  string          `json:"description"`
	HowTo        string          `json:"howTo"`
	Parameters   models.JSONText `json:"parameters"`
	Examples     models.JSONText `json:"examples"`
	SampleOutput string          `json:"sampleOutput"`
	Flags        models.JSONText `json:"flags"`
	SourceURLs   models.JSONText `json:"sourceUrls"`
}

// Enrich requests a card for name from the AI service. A response without a
// description counts as invalid data and is reported as an error, so the
// runner records it as a per-item failure.
func (c *AIClient) Enrich(ctx context.Context, name string) (*models.CmdletCard, error) {
	var resp enrichResponse
	if err := c.http.PostJSON(ctx, "/enrich", enrichRequest{Command: name}, &resp); err != nil {
		return nil, fmt.Errorf("enrich %s: %w", name, err)
	}
	if resp.Description == "" {
		return nil, fmt.Errorf("enrich %s: response has no description", name)
	}

	return &models.CmdletCard{
		Name:         name,
		Description:  resp.Description,
		HowTo:        resp.HowTo,
		Parameters:   resp.Parameters,
		Examples:     resp.Examples,
		SampleOutput: resp.SampleOutput,
		Flags:        resp.Flags,
		SourceURLs:   resp.SourceURLs,
		EnrichedAt:   time.Now(),
	}, nil
}
