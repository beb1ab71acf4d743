// Package chat captions images through an OpenAI-compatible
// chat-completions endpoint (Groq by default).
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"
	"time"

	"price-finder/internal/caption"
	commonhttp "price-finder/internal/common/http"
	"price-finder/internal/models"
)

type Config struct {
	Name      string
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type Engine struct {
	config *Config
	http   *commonhttp.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New validates config. A missing key is an error so the registry can
// record the hosted slot as unusable.
func New(config *Config) (*Engine, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("chat caption engine %q: missing api key", config.Name)
	}
	if config.BaseURL == "" || config.Model == "" {
		return nil, fmt.Errorf("chat caption engine %q: base url and model are required", config.Name)
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Name == "" {
		config.Name = "chat"
	}
	return &Engine{config: config, http: commonhttp.NewClient(config.Timeout)}, nil
}

func (e *Engine) Name() string { return e.config.Name }

// Describe never returns Failed: every problem is a fallback signal.
func (e *Engine) Describe(ctx context.Context, img image.Image) caption.Result {
	b64, err := caption.EncodeJPEGBase64(img)
	if err != nil {
		return caption.NeedsFallback(caption.ReasonError, err)
	}

	req := chatRequest{
		Model:     e.config.Model,
		MaxTokens: e.config.MaxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: caption.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + b64}},
			},
		}},
	}

	resp, err := e.http.PostJSON(ctx, strings.TrimRight(e.config.BaseURL, "/")+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + e.config.APIKey}, req)
	if err != nil {
		return caption.HostedFailure(fmt.Errorf("%s caption: %w", e.config.Name, err))
	}
	if !resp.OK() {
		return caption.HostedFailure(fmt.Errorf("%s caption %d: %s", e.config.Name, resp.StatusCode, string(resp.Body)))
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return caption.NeedsFallback(caption.ReasonError, fmt.Errorf("%s caption: decode response: %w", e.config.Name, err))
	}
	if len(out.Choices) == 0 {
		return caption.NeedsFallback(caption.ReasonEmpty, nil)
	}

	return caption.Success(strings.TrimSpace(out.Choices[0].Message.Content), models.SourceLLM)
}
