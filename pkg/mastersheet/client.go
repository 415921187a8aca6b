// Package mastersheet talks to the Apps Script endpoints that expose the
// Master List spreadsheet: the audit export, the segment connection lookup,
// and the holding sheet writer used to stage scraper batches.
package mastersheet

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// Client defines the Master List operations used by the pipelines.
type Client interface {
	// FetchProfiles returns the synced and unsynced connected profiles from
	// the audit export.
	FetchProfiles(ctx context.Context) (*ProfileSets, error)
	// LookupConnections maps each LinkedIn URL to the profile owners
	// connected to it (e.g. ["kyle", "hudson"]).
	LookupConnections(ctx context.Context, urls []string) (map[string][]string, error)
	// WriteHoldingURLs replaces the holding sheet contents with the given
	// URLs and returns how many were written.
	WriteHoldingURLs(ctx context.Context, urls []string) (int, error)
}

// ProfileSets splits the Master List by HubSpot sync state.
type ProfileSets struct {
	Synced   []model.MasterProfile
	Unsynced []model.MasterProfile
}

// All returns synced followed by unsynced profiles.
func (s *ProfileSets) All() []model.MasterProfile {
	out := make([]model.MasterProfile, 0, len(s.Synced)+len(s.Unsynced))
	out = append(out, s.Synced...)
	out = append(out, s.Unsynced...)
	return out
}

// Option configures the Master List client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	auditURL         string
	segmentLookupURL string
	holdingWriterURL string
	http             *http.Client
}

// NewClient creates a Master List client over the three Apps Script
// deployment URLs. Apps Script responses arrive after a redirect, which the
// default http.Client follows.
func NewClient(auditURL, segmentLookupURL, holdingWriterURL string, opts ...Option) Client {
	c := &httpClient{
		auditURL:         auditURL,
		segmentLookupURL: segmentLookupURL,
		holdingWriterURL: holdingWriterURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type auditResponse struct {
	SyncedProfiles   []model.MasterProfile `json:"syncedProfiles"`
	UnsyncedProfiles []model.MasterProfile `json:"unsyncedProfiles"`
}

func (c *httpClient) FetchProfiles(ctx context.Context) (*ProfileSets, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.auditURL+"?includeAll=true", nil)
	if err != nil {
		return nil, eris.Wrap(err, "mastersheet: create audit request")
	}

	body, err := c.doJSON(req)
	if err != nil {
		return nil, eris.Wrap(err, "mastersheet: fetch profiles")
	}

	var resp auditResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "mastersheet: unmarshal audit response")
	}

	zap.L().Info("loaded master list",
		zap.Int("synced", len(resp.SyncedProfiles)),
		zap.Int("unsynced", len(resp.UnsyncedProfiles)),
	)
	return &ProfileSets{Synced: resp.SyncedProfiles, Unsynced: resp.UnsyncedProfiles}, nil
}

type segmentLookupResponse struct {
	OK          bool                `json:"ok"`
	Connections map[string][]string `json:"connections"`
	Error       string              `json:"error"`
}

func (c *httpClient) LookupConnections(ctx context.Context, urls []string) (map[string][]string, error) {
	payload, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return nil, eris.Wrap(err, "mastersheet: marshal lookup payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.segmentLookupURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "mastersheet: create lookup request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doJSON(req)
	if err != nil {
		return nil, eris.Wrap(err, "mastersheet: lookup connections")
	}

	var resp segmentLookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "mastersheet: unmarshal lookup response")
	}
	if !resp.OK {
		return nil, eris.Errorf("mastersheet: segment lookup: %s", resp.Error)
	}
	return resp.Connections, nil
}

type holdingWriteResponse struct {
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error"`
}

func (c *httpClient) WriteHoldingURLs(ctx context.Context, urls []string) (int, error) {
	payload, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return 0, eris.Wrap(err, "mastersheet: marshal holding payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.holdingWriterURL, bytes.NewReader(payload))
	if err != nil {
		return 0, eris.Wrap(err, "mastersheet: create holding request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doJSON(req)
	if err != nil {
		return 0, eris.Wrap(err, "mastersheet: write holding urls")
	}

	var resp holdingWriteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, eris.Wrap(err, "mastersheet: unmarshal holding response")
	}
	if !resp.OK {
		return 0, eris.Errorf("mastersheet: holding sheet write: %s", resp.Error)
	}
	return resp.Count, nil
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
