package industry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chrt-labs/crm-sync-cli/pkg/anthropic"
)

const (
	// batchSize caps how many raw values go into one mapping request so the
	// model response stays comfortably under the output token limit.
	batchSize = 50

	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2048
)

// Resolver maps raw industry strings to HubSpot enum values. Unknown values
// are resolved in batches through Claude and remembered in a disk cache.
type Resolver struct {
	client anthropic.Client
	cache  *Cache
	model  string
	dryRun bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithModel overrides the Claude model used for mapping requests.
func WithModel(model string) ResolverOption {
	return func(r *Resolver) { r.model = model }
}

// WithDryRun disables cache persistence; mappings still happen in memory.
func WithDryRun(dryRun bool) ResolverOption {
	return func(r *Resolver) { r.dryRun = dryRun }
}

// NewResolver builds a Resolver over the given client and cache.
func NewResolver(client anthropic.Client, cache *Cache, opts ...ResolverOption) *Resolver {
	r := &Resolver{client: client, cache: cache, model: defaultModel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Map returns the enum for a raw industry value. It never calls the API:
// values must be pre-resolved with ResolveAll, otherwise unknowns map to "".
func (r *Resolver) Map(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if IsEnum(raw) {
		return raw
	}
	if v, ok := r.cache.Get(raw); ok {
		return v
	}
	return ""
}

// ResolveAll batch-resolves every unknown raw value through Claude and
// persists the cache. Call it once with all values before using Map. A
// failed batch is logged and its values stay unresolved; the other batches'
// mappings are still cached.
func (r *Resolver) ResolveAll(ctx context.Context, rawValues []string) error {
	unique := make(map[string]struct{})
	for _, v := range rawValues {
		v = strings.TrimSpace(v)
		if v == "" || IsEnum(v) {
			continue
		}
		unique[v] = struct{}{}
	}

	var uncached []string
	for v := range unique {
		if _, ok := r.cache.Get(v); !ok {
			uncached = append(uncached, v)
		}
	}
	sort.Strings(uncached)

	zap.L().Info("industry mapping",
		zap.Int("unique", len(unique)),
		zap.Int("cached", len(unique)-len(uncached)),
		zap.Int("uncached", len(uncached)),
	)

	if len(uncached) == 0 {
		return nil
	}

	failedBatches := 0
	for i := 0; i < len(uncached); i += batchSize {
		end := min(i+batchSize, len(uncached))
		batch := uncached[i:end]

		mapped, err := r.mapBatch(ctx, batch)
		if err != nil {
			// A bad batch leaves its values unresolved; mappings from the
			// other batches are still kept and persisted.
			failedBatches++
			zap.L().Warn("industry mapping batch failed",
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			continue
		}
		for raw, enum := range mapped {
			r.cache.Put(raw, enum)
		}

		var unmapped []string
		for _, v := range batch {
			if _, ok := mapped[v]; !ok {
				unmapped = append(unmapped, v)
			}
		}
		if len(unmapped) > 0 {
			zap.L().Warn("industry values left unmapped",
				zap.Int("count", len(unmapped)),
				zap.Strings("sample", unmapped[:min(5, len(unmapped))]),
			)
		}
	}

	if failedBatches > 0 {
		zap.L().Warn("industry mapping finished with failed batches",
			zap.Int("failed_batches", failedBatches))
	}

	if r.dryRun {
		zap.L().Info("dry run: skipping industry cache save", zap.Int("entries", r.cache.Len()))
		return nil
	}
	if err := r.cache.Save(); err != nil {
		return err
	}
	zap.L().Info("industry cache saved", zap.Int("entries", r.cache.Len()))
	return nil
}

// mapBatch runs one mapping request and returns only enum-valid results.
func (r *Resolver) mapBatch(ctx context.Context, batch []string) (map[string]string, error) {
	zap.L().Info("mapping industry values", zap.Int("count", len(batch)), zap.String("model", r.model))

	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(batch)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "industry: map batch")
	}
	resp.Usage.LogCost(r.model, "industry-mapping")

	text := anthropic.CleanJSON(anthropic.ExtractText(resp))
	var mapping map[string]string
	if err := json.Unmarshal([]byte(text), &mapping); err != nil {
		return nil, eris.Wrap(err, "industry: parse mapping response")
	}

	validated := make(map[string]string, len(mapping))
	for raw, enum := range mapping {
		if !IsEnum(enum) {
			zap.L().Warn("model returned invalid industry enum",
				zap.String("raw", raw),
				zap.String("enum", enum),
			)
			continue
		}
		validated[raw] = enum
	}
	return validated, nil
}

func buildPrompt(batch []string) string {
	var numbered strings.Builder
	for i, v := range batch {
		fmt.Fprintf(&numbered, "  %d. %q\n", i+1, v)
	}

	return fmt.Sprintf(`Map each LinkedIn industry value to the single closest HubSpot industry enum.

VALID HUBSPOT ENUMS:
%s

LINKEDIN INDUSTRIES TO MAP:
%s
Return ONLY a JSON object mapping each input string to its HubSpot enum. Use exact enum values only.
Example: {"Hospital & Health Care": "HOSPITAL_HEALTH_CARE", "Airlines/Aviation": "AIRLINES_AVIATION"}

If no good match exists, use the closest reasonable one. Every input MUST have a mapping.`,
		strings.Join(Enums, ", "), numbered.String())
}
