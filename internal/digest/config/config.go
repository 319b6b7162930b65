package config

import (
	"time"

	"sf-weekly-pulse/pkg/config"
)

// NewsAPI holds the configuration for the keyed news search API.
type NewsAPI struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Domains  string `mapstructure:"domains"`
	PageSize int    `mapstructure:"page_size"`
	Language string `mapstructure:"language"`
}

// RSS holds the configuration for the RSS fallback feed.
type RSS struct {
	BaseURL  string `mapstructure:"base_url"`
	MaxItems int    `mapstructure:"max_items"`
}

// Twitter holds the configuration for the social search API.
type Twitter struct {
	BaseURL     string        `mapstructure:"base_url"`
	BearerToken string        `mapstructure:"bearer_token"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	// EfficientMode fetches once per topic and classifies client-side,
	// trading guaranteed-sentiment posts for API quota.
	EfficientMode bool `mapstructure:"efficient_mode"`
}

// OpenAI holds the configuration for the OpenAI-compatible completion API.
type OpenAI struct {
	BaseURL             string  `mapstructure:"base_url"`
	APIKey              string  `mapstructure:"api_key"`
	Model               string  `mapstructure:"model"`
	Temperature         float64 `mapstructure:"temperature"`
	MaxTokens           int     `mapstructure:"max_tokens"`
	MaxRequestPerMinute int     `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int     `mapstructure:"max_token_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds provider selection for the narrative generator.
type AI struct {
	Provider string `mapstructure:"provider"` // "openai" or "gemini"
}

// Aggregator holds knobs for the weekly aggregation run.
type Aggregator struct {
	// LLMDelay is the self-imposed pause between sequential LLM calls.
	LLMDelay time.Duration `mapstructure:"llm_delay"`
	// TopicDelay is the pause between social topics.
	TopicDelay time.Duration `mapstructure:"topic_delay"`
	// SummaryTimeout bounds a single category-summary LLM call.
	SummaryTimeout time.Duration `mapstructure:"summary_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	// RetryBaseDelay is the delay before the first retry; each further
	// retry doubles it.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	MaxArticles    int           `mapstructure:"max_articles"`
	Topics         []string      `mapstructure:"topics"`
}

// Scheduler holds the in-process cron schedule for the weekly run.
type Scheduler struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// Trigger holds the shared secret protecting the trigger endpoints.
type Trigger struct {
	Secret string `mapstructure:"secret"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the digest service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	NewsAPI    NewsAPI         `mapstructure:"news_api"`
	RSS        RSS             `mapstructure:"rss"`
	Twitter    Twitter         `mapstructure:"twitter"`
	OpenAI     OpenAI          `mapstructure:"openai"`
	Gemini     Gemini          `mapstructure:"gemini"`
	AI         AI              `mapstructure:"ai"`
	Aggregator Aggregator      `mapstructure:"aggregator"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
	Trigger    Trigger         `mapstructure:"trigger"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// Load loads the digest service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
