// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Provider   ProviderConfig          `mapstructure:"provider"`
	Captioning CaptioningConfig        `mapstructure:"captioning"`
	Shopping   ShoppingConfig          `mapstructure:"shopping"`
	Enrichment EnrichmentConfig        `mapstructure:"enrichment"`
	Session    SessionConfig           `mapstructure:"session"`
	Registry   RegistryConfig          `mapstructure:"registry"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Metrics    MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Configuration Sections ---

// ProviderConfig configures the search provider endpoint shared by
// shopping, video and product-detail lookups.
type ProviderConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CaptioningConfig struct {
	DefaultStrategy string              `mapstructure:"default_strategy"`
	LLM             LLMCaptionConfig    `mapstructure:"llm"`
	Local           LocalCaptionConfig  `mapstructure:"local"`
	Gemini          GeminiCaptionConfig `mapstructure:"gemini"`
}

// LLMCaptionConfig configures the hosted vision engine. Provider selects
// between an OpenAI-compatible chat endpoint ("groq", "openai") and "gemini".
type LLMCaptionConfig struct {
	Provider  string `mapstructure:"provider"`
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

type GeminiCaptionConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LocalCaptionConfig configures the locally hosted captioning model server.
type LocalCaptionConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	MaxNewTokens int    `mapstructure:"max_new_tokens"`
	Seed         int    `mapstructure:"seed"`
	PullIfAbsent bool   `mapstructure:"pull_if_absent"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

type ShoppingConfig struct {
	ResultLimit      int    `mapstructure:"result_limit"`
	DefaultSortOrder string `mapstructure:"default_sort_order"`
}

type EnrichmentConfig struct {
	MaxVideos  int `mapstructure:"max_videos"`
	MaxReviews int `mapstructure:"max_reviews"`
}

type SessionConfig struct {
	TTL       int    `mapstructure:"ttl"` // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Port int `mapstructure:"port"`
}
