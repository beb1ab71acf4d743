// Package local captions images with a locally served model through an
// Ollama-compatible HTTP API.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"
	"time"

	"price-finder/internal/caption"
	"price-finder/internal/common/errors"
	commonhttp "price-finder/internal/common/http"
	"price-finder/internal/common/logger"
	"price-finder/internal/models"
)

const (
	engineName  = "local"
	localPrompt = "Describe the product in this image in a short phrase."
)

type Config struct {
	BaseURL      string
	Model        string
	MaxNewTokens int
	Seed         int
	PullIfAbsent bool
	Timeout      time.Duration
}

type Engine struct {
	config *Config
	http   *commonhttp.Client
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
	Seed        int     `json:"seed"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// New makes sure the model is loaded on the server, pulling it when allowed.
// Any failure is a MODEL_INIT_FAILED error.
func New(ctx context.Context, config *Config, log logger.Logger) (*Engine, error) {
	if config.MaxNewTokens <= 0 {
		config.MaxNewTokens = 50
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.BaseURL == "" || config.Model == "" {
		return nil, errors.NewModelInitError(config.Model, fmt.Errorf("base url and model are required"))
	}

	e := &Engine{config: config, http: commonhttp.NewClient(config.Timeout)}
	log = log.With(map[string]interface{}{"component": "local-caption", "model": config.Model})

	present, err := e.show(ctx)
	if err != nil {
		return nil, errors.NewModelInitError(config.Model, err)
	}
	if !present {
		if !config.PullIfAbsent {
			return nil, errors.NewModelInitError(config.Model, fmt.Errorf("model not present on %s", config.BaseURL))
		}
		log.Info("pulling local captioning model", nil)
		if err := e.pull(ctx); err != nil {
			return nil, errors.NewModelInitError(config.Model, err)
		}
	}

	log.Info("local captioning model ready", nil)
	return e, nil
}

func (e *Engine) Name() string { return engineName }

func (e *Engine) url(path string) string {
	return strings.TrimRight(e.config.BaseURL, "/") + path
}

func (e *Engine) show(ctx context.Context) (bool, error) {
	resp, err := e.http.PostJSON(ctx, e.url("/api/show"), nil, map[string]string{"model": e.config.Model})
	if err != nil {
		return false, fmt.Errorf("show model: %w", err)
	}
	switch {
	case resp.OK():
		return true, nil
	case resp.StatusCode == 404:
		return false, nil
	default:
		return false, fmt.Errorf("show model %d: %s", resp.StatusCode, string(resp.Body))
	}
}

func (e *Engine) pull(ctx context.Context) error {
	resp, err := e.http.PostJSON(ctx, e.url("/api/pull"), nil, map[string]interface{}{
		"model":  e.config.Model,
		"stream": false,
	})
	if err != nil {
		return fmt.Errorf("pull model: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("pull model %d: %s", resp.StatusCode, string(resp.Body))
	}
	return nil
}

// Describe runs one deterministic generation. A failed call is Failed since
// there is no engine behind this one.
func (e *Engine) Describe(ctx context.Context, img image.Image) caption.Result {
	b64, err := caption.EncodeJPEGBase64(img)
	if err != nil {
		return caption.Failed(err)
	}

	resp, err := e.http.PostJSON(ctx, e.url("/api/generate"), nil, generateRequest{
		Model:  e.config.Model,
		Prompt: localPrompt,
		Images: []string{b64},
		Stream: false,
		Options: generateOptions{
			NumPredict:  e.config.MaxNewTokens,
			Temperature: 0,
			Seed:        e.config.Seed,
		},
	})
	if err != nil {
		return caption.Failed(fmt.Errorf("local generate: %w", err))
	}
	if !resp.OK() {
		return caption.Failed(fmt.Errorf("local generate %d: %s", resp.StatusCode, string(resp.Body)))
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return caption.Failed(fmt.Errorf("local generate: decode response: %w", err))
	}
	if out.Error != "" {
		return caption.Failed(fmt.Errorf("local generate: %s", out.Error))
	}

	return caption.Success(strings.TrimSpace(out.Response), models.SourceLocalModel)
}
