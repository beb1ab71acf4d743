// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over
// it, expands ${VAR} placeholders and applies env secrets and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Provider.APIKey, "SERPAPI_API_KEY")
	setIfEmpty(&cfg.Captioning.LLM.APIKey, "GROQ_API_KEY")
	setIfEmpty(&cfg.Captioning.Gemini.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "price-finder"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://serpapi.com/search.json"
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 15000
	}
	if cfg.Provider.RequestsPerSecond == 0 {
		cfg.Provider.RequestsPerSecond = 5
	}
	if cfg.Provider.Burst == 0 {
		cfg.Provider.Burst = 1
	}

	if cfg.Captioning.DefaultStrategy == "" {
		cfg.Captioning.DefaultStrategy = "auto"
	}
	if cfg.Captioning.LLM.Provider == "" {
		cfg.Captioning.LLM.Provider = "groq"
	}
	if cfg.Captioning.LLM.BaseURL == "" {
		cfg.Captioning.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Captioning.LLM.Model == "" {
		cfg.Captioning.LLM.Model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	if cfg.Captioning.LLM.MaxTokens == 0 {
		cfg.Captioning.LLM.MaxTokens = 100
	}
	if cfg.Captioning.LLM.Timeout == 0 {
		cfg.Captioning.LLM.Timeout = 60000
	}
	if cfg.Captioning.Gemini.Model == "" {
		cfg.Captioning.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Captioning.Local.BaseURL == "" {
		cfg.Captioning.Local.BaseURL = "http://localhost:11434"
	}
	if cfg.Captioning.Local.Model == "" {
		cfg.Captioning.Local.Model = "moondream"
	}
	if cfg.Captioning.Local.MaxNewTokens == 0 {
		cfg.Captioning.Local.MaxNewTokens = 50
	}
	if cfg.Captioning.Local.Timeout == 0 {
		cfg.Captioning.Local.Timeout = 120000
	}

	if cfg.Shopping.ResultLimit == 0 {
		cfg.Shopping.ResultLimit = 8
	}
	if cfg.Enrichment.MaxVideos == 0 {
		cfg.Enrichment.MaxVideos = 3
	}
	if cfg.Enrichment.MaxReviews == 0 {
		cfg.Enrichment.MaxReviews = 5
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "pricefinder:session:"
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 8080
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Shopping.ResultLimit < 1 || cfg.Shopping.ResultLimit > 8 {
		return fmt.Errorf("shopping.result_limit must be between 1 and 8, got %d", cfg.Shopping.ResultLimit)
	}

	switch cfg.Captioning.DefaultStrategy {
	case "llm", "local", "auto":
	default:
		return fmt.Errorf("captioning.default_strategy must be one of llm, local, auto, got %q", cfg.Captioning.DefaultStrategy)
	}

	switch cfg.Captioning.LLM.Provider {
	case "groq", "openai", "gemini":
	default:
		return fmt.Errorf("captioning.llm.provider must be one of groq, openai, gemini, got %q", cfg.Captioning.LLM.Provider)
	}

	if cfg.Provider.RequestsPerSecond < 0 {
		return fmt.Errorf("provider.requests_per_second must not be negative")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
