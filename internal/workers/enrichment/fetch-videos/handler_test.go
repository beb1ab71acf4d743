package fetchvideos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-finder/internal/common/camunda"
	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/validation"
	"price-finder/internal/enrichment"
	"price-finder/internal/provider"
	"price-finder/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:       key,
			Type:      TaskType,
			Variables: variables,
			Retries:   3,
		},
	}
}

func newHandler(t *testing.T, handler http.HandlerFunc) *Handler {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := provider.NewClient(&provider.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: time.Second,
	}, logger.NewNoOpLogger())

	return NewHandler(DefaultConfig(), Dependencies{
		Videos: enrichment.NewFetcher(client, logger.NewNoOpLogger()),
	}, logger.NewTestLogger(t))
}

const videoBody = `{"video_results":[
	{"title":"XM5 review","link":"https://www.youtube.com/watch?v=abc123&t=10","thumbnail":{"static":"https://i.ytimg.com/abc.jpg"}},
	{"title":"XM5 unboxing","link":"https://youtu.be/def456"},
	{"title":"XM5 vs XM4","link":"https://www.youtube.com/watch?v=ghi789"},
	{"title":"XM5 long term","link":"https://www.youtube.com/watch?v=jkl000"}
]}`

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_ReturnsDefaultNumberOfVideos(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "youtube", r.URL.Query().Get("engine"))
		assert.Equal(t, "Sony WH-1000XM5", r.URL.Query().Get("search_query"))
		_, _ = w.Write([]byte(videoBody))
	})

	out, err := h.Execute(context.Background(), &Input{Title: "Sony WH-1000XM5"})

	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
	assert.Equal(t, "abc123", out.Videos[0].VideoID)
	assert.Equal(t, "https://i.ytimg.com/abc.jpg", out.Videos[0].ThumbnailURL)
	assert.Equal(t, "https://www.youtube.com/watch?v=def456", out.Videos[1].EmbedURL)
	assert.Equal(t, "https://img.youtube.com/vi/def456/hqdefault.jpg", out.Videos[1].ThumbnailURL)
}

func TestExecute_MaxResults(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(videoBody))
	})

	out, err := h.Execute(context.Background(), &Input{Title: "xm5", MaxResults: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
}

func TestExecute_ProviderFailureDegradesToEmpty(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	out, err := h.Execute(context.Background(), &Input{Title: "xm5"})

	require.NoError(t, err)
	assert.NotNil(t, out.Videos)
	assert.Equal(t, 0, out.Count)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_BlankTitle(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})

	_, err := h.Execute(context.Background(), &Input{Title: "   "})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
}

// ==========================
// Job Input Tests
// ==========================

func TestJobInput_ValidatedAgainstRegistry(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)

	var in Input
	require.NoError(t, camunda.ParseJobInput(createMockJob(1, `{"title":"xm5","maxResults":2}`), TaskType, v, &in))
	assert.Equal(t, 2, in.MaxResults)

	err = camunda.ParseJobInput(createMockJob(2, `{"title":""}`), TaskType, v, &in)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))

	err = camunda.ParseJobInput(createMockJob(3, `{"title":"xm5","maxResults":50}`), TaskType, v, &in)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
}
