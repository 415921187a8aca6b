// Package hubspot provides a client for the HubSpot CRM v3 objects API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// ObjectTypeContacts is the CRM object type used by the sync pipelines.
const ObjectTypeContacts = "contacts"

// Client defines the HubSpot CRM operations used by the pipelines.
type Client interface {
	// ListAll pages through every object of the given type, requesting the
	// named properties.
	ListAll(ctx context.Context, objectType string, properties []string) ([]model.Record, error)
	// Get fetches a single object by ID.
	Get(ctx context.Context, objectType, id string, properties []string) (*model.Record, error)
	// Create creates a new object and returns it with its assigned ID.
	Create(ctx context.Context, objectType string, properties map[string]string) (*model.Record, error)
	// Update patches properties on an existing object.
	Update(ctx context.Context, objectType, id string, properties map[string]string) error
	// Delete archives an object.
	Delete(ctx context.Context, objectType, id string) error
	// Search runs a filtered single-page search over the given object type.
	Search(ctx context.Context, objectType string, query SearchQuery) ([]model.Record, error)
	// Associations lists the IDs of toType objects associated with the given
	// object.
	Associations(ctx context.Context, fromType, fromID, toType string) ([]string, error)
	// Associate links two objects under the named association label.
	Associate(ctx context.Context, fromType, fromID, toType, toID, label string) error
}

// SearchFilter is one property comparison in a search request.
type SearchFilter struct {
	Property string `json:"propertyName"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// SearchQuery describes a single-page object search.
type SearchQuery struct {
	Filters    []SearchFilter
	Properties []string
	Limit      int
}

// APIError carries the status and body of a failed HubSpot request.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("hubspot: status %d: %s", e.StatusCode, body)
}

// IsConflict reports whether err is a HubSpot 409, which the contacts API
// returns when a property value (usually email) already exists on another
// record.
func IsConflict(err error) bool {
	var apiErr *APIError
	return eris.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// Option configures the HubSpot client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithWriteLimit overrides the write rate limit (requests per second).
func WithWriteLimit(rps float64) Option {
	return func(c *httpClient) { c.writeLimiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithPageSize overrides the list page size (for testing).
func WithPageSize(n int) Option {
	return func(c *httpClient) { c.pageSize = n }
}

type httpClient struct {
	apiKey       string
	baseURL      string
	pageSize     int
	http         *http.Client
	writeLimiter *rate.Limiter
}

// NewClient creates a HubSpot client authenticated with a private app token.
// Writes are throttled to stay under the contacts API burst limit.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  "https://api.hubapi.com",
		pageSize: 100,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		writeLimiter: rate.NewLimiter(rate.Limit(6), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// objectEnvelope is the wire shape of a single CRM object.
type objectEnvelope struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type listResponse struct {
	Results []objectEnvelope `json:"results"`
	Paging  struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func (c *httpClient) ListAll(ctx context.Context, objectType string, properties []string) ([]model.Record, error) {
	var records []model.Record
	after := ""

	for {
		path := fmt.Sprintf("/crm/v3/objects/%s?limit=%d&properties=%s",
			objectType, c.pageSize, url.QueryEscape(strings.Join(properties, ",")))
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}

		body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "hubspot: list %s", objectType)
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, eris.Wrapf(err, "hubspot: unmarshal %s page", objectType)
		}
		for _, obj := range page.Results {
			records = append(records, model.Record{ID: obj.ID, Properties: obj.Properties})
		}

		after = page.Paging.Next.After
		if after == "" {
			break
		}
	}

	zap.L().Debug("listed objects", zap.String("type", objectType), zap.Int("count", len(records)))
	return records, nil
}

func (c *httpClient) Get(ctx context.Context, objectType, id string, properties []string) (*model.Record, error) {
	path := fmt.Sprintf("/crm/v3/objects/%s/%s?properties=%s",
		objectType, url.PathEscape(id), url.QueryEscape(strings.Join(properties, ",")))

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: get %s %s", objectType, id)
	}

	var obj objectEnvelope
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, eris.Wrapf(err, "hubspot: unmarshal %s %s", objectType, id)
	}
	return &model.Record{ID: obj.ID, Properties: obj.Properties}, nil
}

func (c *httpClient) Create(ctx context.Context, objectType string, properties map[string]string) (*model.Record, error) {
	if err := c.writeLimiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "hubspot: rate limit wait")
	}

	payload, err := json.Marshal(map[string]any{"properties": properties})
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: marshal create payload")
	}

	body, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/"+objectType, payload)
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: create %s", objectType)
	}

	var obj objectEnvelope
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, eris.Wrapf(err, "hubspot: unmarshal created %s", objectType)
	}
	return &model.Record{ID: obj.ID, Properties: obj.Properties}, nil
}

func (c *httpClient) Update(ctx context.Context, objectType, id string, properties map[string]string) error {
	if err := c.writeLimiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "hubspot: rate limit wait")
	}

	payload, err := json.Marshal(map[string]any{"properties": properties})
	if err != nil {
		return eris.Wrap(err, "hubspot: marshal update payload")
	}

	path := fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, url.PathEscape(id))
	if _, err := c.do(ctx, http.MethodPatch, path, payload); err != nil {
		return eris.Wrapf(err, "hubspot: update %s %s", objectType, id)
	}
	return nil
}

func (c *httpClient) Delete(ctx context.Context, objectType, id string) error {
	if err := c.writeLimiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "hubspot: rate limit wait")
	}

	path := fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, url.PathEscape(id))
	if _, err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return eris.Wrapf(err, "hubspot: delete %s %s", objectType, id)
	}
	return nil
}

func (c *httpClient) Search(ctx context.Context, objectType string, query SearchQuery) ([]model.Record, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = c.pageSize
	}
	payload, err := json.Marshal(map[string]any{
		"filterGroups": []map[string]any{{"filters": query.Filters}},
		"properties":   query.Properties,
		"limit":        limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: marshal search payload")
	}

	body, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/"+objectType+"/search", payload)
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: search %s", objectType)
	}

	var page listResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, eris.Wrapf(err, "hubspot: unmarshal %s search page", objectType)
	}
	records := make([]model.Record, 0, len(page.Results))
	for _, obj := range page.Results {
		records = append(records, model.Record{ID: obj.ID, Properties: obj.Properties})
	}
	return records, nil
}

func (c *httpClient) Associations(ctx context.Context, fromType, fromID, toType string) ([]string, error) {
	path := fmt.Sprintf("/crm/v3/objects/%s/%s/associations/%s",
		fromType, url.PathEscape(fromID), toType)

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: associations %s %s", fromType, fromID)
	}

	var resp struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal associations")
	}
	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (c *httpClient) Associate(ctx context.Context, fromType, fromID, toType, toID, label string) error {
	if err := c.writeLimiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "hubspot: rate limit wait")
	}

	path := fmt.Sprintf("/crm/v3/objects/%s/%s/associations/%s/%s/%s",
		fromType, url.PathEscape(fromID), toType, url.PathEscape(toID), label)
	if _, err := c.do(ctx, http.MethodPut, path, nil); err != nil {
		return eris.Wrapf(err, "hubspot: associate %s %s with %s %s", fromType, fromID, toType, toID)
	}
	return nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// do executes one API request with exponential backoff retries on transient
// failures (429, 500, 502, 503). Non-2xx responses become *APIError.
func (c *httpClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, eris.Wrap(readErr, "hubspot: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = &APIError{StatusCode: resp.StatusCode, Body: string(body)}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	}

	return nil, lastErr
}
