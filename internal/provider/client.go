// Package provider is the single entry point to the external search API
// that serves shopping, video and product-detail lookups.
package provider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"time"

	"price-finder/internal/common/errors"
	commonhttp "price-finder/internal/common/http"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/metrics"
)

// Engine selects the provider's search vertical.
type Engine string

const (
	EngineShopping      Engine = "google_shopping"
	EngineVideo         Engine = "youtube"
	EngineProductDetail Engine = "google_immersive_product"
)

const (
	localeLanguage = "en"
	localeCountry  = "in"
	currency       = "INR"
)

// Searcher is what the aggregator and enrichment fetchers depend on.
type Searcher interface {
	Search(ctx context.Context, engine Engine, params map[string]string) (map[string]interface{}, error)
}

type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client issues one GET per Search. It never retries.
type Client struct {
	config  *Config
	http    *commonhttp.Client
	limiter *rateLimiter
	logger  logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Client{
		config:  config,
		http:    commonhttp.NewClient(config.Timeout),
		limiter: newRateLimiter(config.RequestsPerSecond, config.Burst),
		logger:  log.With(map[string]interface{}{"component": "provider"}),
	}
}

// Search calls the provider for engine with params plus the fixed locale
// (and currency for shopping). Caller params cannot override engine, key or locale.
// Errors are *errors.StandardError with a PROVIDER_* or MALFORMED_RESPONSE code.
func (c *Client) Search(ctx context.Context, engine Engine, params map[string]string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	result, outcome, err := c.search(ctx, engine, params)

	metrics.ProviderRequests.WithLabelValues(string(engine), outcome).Inc()
	metrics.ProviderLatency.WithLabelValues(string(engine)).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("provider call failed", map[string]interface{}{
			"engine":    string(engine),
			"outcome":   outcome,
			"errorCode": string(errors.CodeOf(err)),
			"error":     err.Error(),
		})
		return nil, err
	}

	c.logger.Debug("provider call completed", map[string]interface{}{
		"engine":     string(engine),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return result, nil
}

func (c *Client) search(ctx context.Context, engine Engine, params map[string]string) (map[string]interface{}, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if stderrors.Is(err, errThrottled) {
			return nil, "throttled", errors.NewProviderUnavailableError(string(engine), err)
		}
		return nil, "timeout", errors.NewProviderTimeoutError(string(engine), err)
	}

	resp, err := c.http.GetJSON(ctx, c.config.BaseURL, c.buildQuery(engine, params))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || commonhttp.IsTimeout(err) {
			return nil, "timeout", errors.NewProviderTimeoutError(string(engine), err)
		}
		return nil, "unavailable", errors.NewProviderUnavailableError(string(engine), err)
	}

	if !resp.OK() {
		if resp.StatusCode == 429 {
			c.limiter.recordThrottled(resp.Header)
		}
		return nil, "status", errors.NewProviderStatusError(string(engine), resp.StatusCode, string(resp.Body))
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, "malformed", errors.NewMalformedResponseError(string(engine), err)
	}
	if body == nil {
		body = map[string]interface{}{}
	}

	// The provider reports "no results" as a 200 carrying an error field.
	if msg, ok := body["error"].(string); ok && msg != "" {
		c.logger.Info("provider returned no results", map[string]interface{}{
			"engine":  string(engine),
			"message": msg,
		})
	}

	return body, "ok", nil
}

func (c *Client) buildQuery(engine Engine, params map[string]string) url.Values {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("engine", string(engine))
	q.Set("api_key", c.config.APIKey)
	q.Set("hl", localeLanguage)
	q.Set("gl", localeCountry)
	if engine == EngineShopping {
		q.Set("currency", currency)
	}
	return q
}
