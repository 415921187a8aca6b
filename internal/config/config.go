package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	HubSpot       HubSpotConfig       `yaml:"hubspot" mapstructure:"hubspot"`
	Anthropic     AnthropicConfig     `yaml:"anthropic" mapstructure:"anthropic"`
	MasterSheet   MasterSheetConfig   `yaml:"master_sheet" mapstructure:"master_sheet"`
	PhantomBuster PhantomBusterConfig `yaml:"phantombuster" mapstructure:"phantombuster"`
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Dedup         DedupConfig         `yaml:"dedup" mapstructure:"dedup"`
	Enrich        EnrichConfig        `yaml:"enrich" mapstructure:"enrich"`
	Scraper       ScraperConfig       `yaml:"scraper" mapstructure:"scraper"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// HubSpotConfig holds HubSpot API credentials and write pacing.
type HubSpotConfig struct {
	Token    string  `yaml:"token" mapstructure:"token"`
	WriteRPS float64 `yaml:"write_rps" mapstructure:"write_rps"`
}

// AnthropicConfig holds Anthropic API settings for industry classification.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// MasterSheetConfig holds the Apps Script endpoint URLs fronting the master
// spreadsheet.
type MasterSheetConfig struct {
	AuditURL         string `yaml:"audit_url" mapstructure:"audit_url"`
	SegmentLookupURL string `yaml:"segment_lookup_url" mapstructure:"segment_lookup_url"`
	HoldingWriterURL string `yaml:"holding_writer_url" mapstructure:"holding_writer_url"`
}

// PhantomBusterConfig holds PhantomBuster agent credentials and the launch
// arguments the profile scraper needs.
type PhantomBusterConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	AgentID        string `yaml:"agent_id" mapstructure:"agent_id"`
	SpreadsheetURL string `yaml:"spreadsheet_url" mapstructure:"spreadsheet_url"`
	SessionCookie  string `yaml:"session_cookie" mapstructure:"session_cookie"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig configures the run-ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DedupConfig configures the dedup pipeline.
type DedupConfig struct {
	FieldsConfig string `yaml:"fields_config" mapstructure:"fields_config"`
}

// EnrichConfig configures the enrich pipeline.
type EnrichConfig struct {
	ScraperExport     string   `yaml:"scraper_export" mapstructure:"scraper_export"`
	IndustryCachePath string   `yaml:"industry_cache_path" mapstructure:"industry_cache_path"`
	NeedsCSVPath      string   `yaml:"needs_csv_path" mapstructure:"needs_csv_path"`
	CleanupIDs        []string `yaml:"cleanup_ids" mapstructure:"cleanup_ids"`
}

// ScraperConfig configures scraper batching.
type ScraperConfig struct {
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CRMSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "crm-sync.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("hubspot.write_rps", 6)
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("enrich.industry_cache_path", "industry-cache.json")
	v.SetDefault("enrich.needs_csv_path", "scraper-urls-needed.csv")
	v.SetDefault("scraper.batch_size", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
