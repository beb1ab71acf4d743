// Package caption turns a product photo into a short product query using a
// hosted vision LLM with a local captioning model behind it.
package caption

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// Prompt is the instruction sent to hosted vision engines.
const Prompt = "Describe the product in this image briefly (just the product and brand name, no extra text)."

// Engine maps an image to a caption.
type Engine interface {
	Name() string
	Describe(ctx context.Context, img image.Image) Result
}

// Strategy selects which engines Resolve consults.
type Strategy string

const (
	StrategyLLM   Strategy = "llm"
	StrategyLocal Strategy = "local"
	StrategyAuto  Strategy = "auto"
)

// ParseStrategy accepts llm, local or auto (case-insensitive); empty means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyLLM:
		return StrategyLLM, nil
	case StrategyLocal:
		return StrategyLocal, nil
	default:
		return "", fmt.Errorf("unknown caption strategy %q", s)
	}
}

var quotaTokens = []string{"rate limit", "quota", "429", "resource exhausted", "too many requests"}

// ClassifyFailure decides whether a hosted engine error is a quota signal.
// Underscores are read as spaces so "rate_limit_exceeded" matches.
func ClassifyFailure(err error) FallbackReason {
	if err == nil {
		return ReasonError
	}
	msg := strings.ToLower(strings.ReplaceAll(err.Error(), "_", " "))
	for _, token := range quotaTokens {
		if strings.Contains(msg, token) {
			return ReasonQuota
		}
	}
	return ReasonError
}

// HostedFailure converts a hosted engine error into NeedsFallback with the
// classified reason.
func HostedFailure(err error) Result {
	return NeedsFallback(ClassifyFailure(err), err)
}
