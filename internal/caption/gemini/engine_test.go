package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"price-finder/internal/caption"
	"price-finder/internal/models"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestDescribe_JoinsTextParts(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(genai.Text("Apple "), genai.Text("AirPods Pro\n"))}

	res := newWithGenerator(gen).Describe(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))

	require.Equal(t, caption.KindSuccess, res.Kind())
	assert.Equal(t, "Apple AirPods Pro", res.Caption().Text)
	assert.Equal(t, models.SourceLLM, res.Caption().Source)

	require.Len(t, gen.parts, 2)
	assert.Equal(t, genai.Text(caption.Prompt), gen.parts[0])
	blob, ok := gen.parts[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", blob.MIMEType)
	assert.NotEmpty(t, blob.Data)
}

func TestDescribe_Failures(t *testing.T) {
	tests := []struct {
		name       string
		gen        *fakeGenerator
		wantReason caption.FallbackReason
	}{
		{"googleapi 429", &fakeGenerator{err: &googleapi.Error{Code: 429, Message: "slow down"}}, caption.ReasonQuota},
		{"wrapped 429", &fakeGenerator{err: fmt.Errorf("call: %w", &googleapi.Error{Code: 429})}, caption.ReasonQuota},
		{"resource exhausted text", &fakeGenerator{err: stderrors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED")}, caption.ReasonQuota},
		{"server error", &fakeGenerator{err: &googleapi.Error{Code: 500, Message: "internal"}}, caption.ReasonError},
		{"no candidates", &fakeGenerator{resp: &genai.GenerateContentResponse{}}, caption.ReasonEmpty},
		{"blob only", &fakeGenerator{resp: textResponse(genai.Blob{MIMEType: "image/png", Data: []byte{1}})}, caption.ReasonEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newWithGenerator(tt.gen).Describe(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))

			assert.Equal(t, caption.KindNeedsFallback, res.Kind())
			assert.Equal(t, tt.wantReason, res.Reason())
		})
	}
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), &Config{})
	assert.Error(t, err)
}
