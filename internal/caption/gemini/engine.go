// Package gemini captions images with Google's Gemini vision models.
package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"price-finder/internal/caption"
	"price-finder/internal/models"
)

const engineName = "gemini"

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int32
}

// generator is the part of *genai.GenerativeModel the engine uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Engine struct {
	client *genai.Client
	model  generator
}

// New opens a Gemini client. Extra options are appended after the API key.
func New(ctx context.Context, config *Config, opts ...option.ClientOption) (*Engine, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 100
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(config.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(config.Model)
	model.SetMaxOutputTokens(config.MaxTokens)
	model.SetTemperature(0)

	return &Engine{client: client, model: model}, nil
}

func newWithGenerator(g generator) *Engine {
	return &Engine{model: g}
}

func (e *Engine) Name() string { return engineName }

func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *Engine) Describe(ctx context.Context, img image.Image) caption.Result {
	data, err := caption.EncodeJPEG(img)
	if err != nil {
		return caption.NeedsFallback(caption.ReasonError, err)
	}

	resp, err := e.model.GenerateContent(ctx, genai.Text(caption.Prompt), genai.ImageData("jpeg", data))
	if err != nil {
		if isQuota(err) {
			return caption.NeedsFallback(caption.ReasonQuota, err)
		}
		return caption.HostedFailure(fmt.Errorf("gemini caption: %w", err))
	}

	return caption.Success(textOf(resp), models.SourceLLM)
}

func isQuota(err error) bool {
	var gerr *googleapi.Error
	if stderrors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return caption.ClassifyFailure(err) == caption.ReasonQuota
}

// textOf joins the text parts of the first candidate.
func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
