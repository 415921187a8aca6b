// Package phantombuster provides a minimal client for launching and polling
// PhantomBuster agents.
package phantombuster

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// StatusRunning is the agent lastStatus value while a container is active.
const StatusRunning = "running"

// Client defines the PhantomBuster operations used by the scraper pipeline.
type Client interface {
	// Launch starts an agent with the given launch arguments and returns the
	// container ID.
	Launch(ctx context.Context, agentID string, args LaunchArgs) (string, error)
	// AgentStatus returns the agent's lastStatus value.
	AgentStatus(ctx context.Context, agentID string) (string, error)
}

// LaunchArgs is the bonus argument payload for the profile scraper agent.
type LaunchArgs struct {
	SessionCookie         string `json:"sessionCookie"`
	UserAgent             string `json:"userAgent"`
	SpreadsheetURL        string `json:"spreadsheetUrl"`
	ColumnName            string `json:"columnName"`
	EmailChooser          string `json:"emailChooser"`
	EmailDiscovery        bool   `json:"emailDiscovery"`
	EnrichWithCompanyData bool   `json:"enrichWithCompanyData"`
	NumberOfAddsPerLaunch int    `json:"numberOfAddsPerLaunch"`
}

// Option configures the PhantomBuster client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a PhantomBuster API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.phantombuster.com",
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type launchResponse struct {
	ContainerID string `json:"containerId"`
}

func (c *httpClient) Launch(ctx context.Context, agentID string, args LaunchArgs) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"id":            agentID,
		"manualLaunch":  true,
		"bonusArgument": args,
	})
	if err != nil {
		return "", eris.Wrap(err, "phantombuster: marshal launch payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/agents/launch", bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "phantombuster: create launch request")
	}
	req.Header.Set("X-Phantombuster-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doJSON(req)
	if err != nil {
		return "", eris.Wrapf(err, "phantombuster: launch agent %s", agentID)
	}

	var resp launchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", eris.Wrap(err, "phantombuster: unmarshal launch response")
	}

	zap.L().Info("launched scraper agent",
		zap.String("agent_id", agentID),
		zap.String("container_id", resp.ContainerID),
	)
	return resp.ContainerID, nil
}

type fetchResponse struct {
	LastStatus string `json:"lastStatus"`
}

func (c *httpClient) AgentStatus(ctx context.Context, agentID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v2/agents/fetch?id="+url.QueryEscape(agentID), nil)
	if err != nil {
		return "", eris.Wrap(err, "phantombuster: create fetch request")
	}
	req.Header.Set("X-Phantombuster-Key", c.apiKey)

	body, err := c.doJSON(req)
	if err != nil {
		return "", eris.Wrapf(err, "phantombuster: fetch agent %s", agentID)
	}

	var resp fetchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", eris.Wrap(err, "phantombuster: unmarshal fetch response")
	}
	return resp.LastStatus, nil
}

func (c *httpClient) doJSON(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 300 {
			body = body[:300]
		}
		return nil, eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
