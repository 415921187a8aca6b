package dedupe

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
)

// FieldsConfig optionally overrides the tracked field list and extends the
// professional-suffix dictionary used for name normalization.
type FieldsConfig struct {
	TrackedFields []string `yaml:"tracked_fields"`
	ExtraSuffixes []string `yaml:"extra_suffixes"`
}

// LoadFieldsConfig reads a fields config from a YAML file.
func LoadFieldsConfig(path string) (*FieldsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dedupe: read fields config %s", path)
	}
	var cfg FieldsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrapf(err, "dedupe: parse fields config %s", path)
	}
	return &cfg, nil
}

// Tracked returns the configured tracked fields, defaulting to the standard
// contact field list. Unknown property names are rejected.
func (c *FieldsConfig) Tracked() ([]string, error) {
	if c == nil || len(c.TrackedFields) == 0 {
		return model.ContactFields, nil
	}
	for _, f := range c.TrackedFields {
		if !model.IsContactField(f) {
			return nil, eris.Errorf("dedupe: unknown tracked field %q", f)
		}
	}
	return c.TrackedFields, nil
}

// Normalizer builds a name normalizer including any extra suffix tokens.
func (c *FieldsConfig) Normalizer() *Normalizer {
	if c == nil || len(c.ExtraSuffixes) == 0 {
		return defaultNormalizer
	}
	return NewNormalizer(c.ExtraSuffixes...)
}
