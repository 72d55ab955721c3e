// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Store       StoreConfig       `mapstructure:"store"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Resilience  ResilienceConfig  `mapstructure:"resilience"`
	APIs        APIsConfig        `mapstructure:"apis"`
	Interaction InteractionConfig `mapstructure:"interaction"`
	Alerts      AlertsConfig      `mapstructure:"alerts"`
	Vocabulary  VocabularyConfig  `mapstructure:"vocabulary"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	RequestTimeout  int    `mapstructure:"request_timeout"`  // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxMessageRunes int    `mapstructure:"max_message_runes"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	URL       string   `mapstructure:"url"` // single address shorthand
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// StoreConfig selects where business records are read from.
type StoreConfig struct {
	BusinessSource string `mapstructure:"business_source"` // postgres | elasticsearch
	CacheEnabled   bool   `mapstructure:"cache_enabled"`
	CacheTTL       int    `mapstructure:"cache_ttl"` // milliseconds
}

// PipelineConfig holds recommendation policy knobs.
type PipelineConfig struct {
	MaxResults              int    `mapstructure:"max_results"`
	FetchLimit              int    `mapstructure:"fetch_limit"`
	PrioritizePartnerStores *bool  `mapstructure:"prioritize_partner_stores"`
	EnableFallback          *bool  `mapstructure:"enable_fallback"`
	FlagshipBusinessName    string `mapstructure:"flagship_business_name"`
	ApologyReply            string `mapstructure:"apology_reply"`
}

// PartnerFirst reports the effective partner-priority flag (default true).
func (p PipelineConfig) PartnerFirst() bool {
	return p.PrioritizePartnerStores == nil || *p.PrioritizePartnerStores
}

// FallbackEnabled reports the effective fallback flag (default true).
func (p PipelineConfig) FallbackEnabled() bool {
	return p.EnableFallback == nil || *p.EnableFallback
}

// ResilienceConfig is the default timeout/retry policy for data store calls.
type ResilienceConfig struct {
	Timeout    int `mapstructure:"timeout"` // milliseconds
	MaxRetries int `mapstructure:"max_retries"`
	Backoff    int `mapstructure:"backoff"` // milliseconds
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL     string  `mapstructure:"base_url"`
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		Timeout     int     `mapstructure:"timeout"` // milliseconds
		MaxRetries  int     `mapstructure:"max_retries"`
		Backoff     int     `mapstructure:"backoff"` // milliseconds
		MaxTokens   int     `mapstructure:"max_tokens"`
		Temperature float64 `mapstructure:"temperature"`
	} `mapstructure:"genai"`
}

// InteractionConfig drives the in-memory session analysis window.
type InteractionConfig struct {
	HistorySize     int `mapstructure:"history_size"`
	RetentionHours  int `mapstructure:"retention_hours"`
	CleanupInterval int `mapstructure:"cleanup_interval"` // milliseconds
}

// AlertsConfig routes fabrication alerts to AWS.
type AlertsConfig struct {
	Channel       string   `mapstructure:"channel"` // none | sns | ses
	Region        string   `mapstructure:"region"`
	SNSTopicARN   string   `mapstructure:"sns_topic_arn"`
	SESFromEmail  string   `mapstructure:"ses_from_email"`
	SESRecipients []string `mapstructure:"ses_recipients"`
	Timeout       int      `mapstructure:"timeout"` // milliseconds
}

type VocabularyConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
