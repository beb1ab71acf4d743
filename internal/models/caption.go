package models

import "strings"

// CaptionSource labels the engine that produced a caption.
type CaptionSource string

const (
	SourceLLM        CaptionSource = "LLM"
	SourceLocalModel CaptionSource = "LocalModel"
)

// Caption is the textual product description derived from an image.
// The zero value is the absent caption.
type Caption struct {
	Text   string        `json:"text"`
	Source CaptionSource `json:"source,omitempty"`
}

// Available reports whether the caption carries non-blank text.
func (c Caption) Available() bool {
	return strings.TrimSpace(c.Text) != ""
}
