package enrichment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/provider"
)

type fakeSearcher struct {
	resp   map[string]interface{}
	err    error
	engine provider.Engine
	params map[string]string
}

func (f *fakeSearcher) Search(ctx context.Context, engine provider.Engine, params map[string]string) (map[string]interface{}, error) {
	f.engine = engine
	f.params = params
	return f.resp, f.err
}

func decode(t *testing.T, body string) map[string]interface{} {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}

// ==========================
// Video id and thumbnails
// ==========================

func TestVideoID(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/abc123?t=5", "abc123"},
		{"https://youtu.be/abc123", "abc123"},
		{"https://www.youtube.com/shorts/xyz789", "xyz789"},
		{"https://www.youtube.com/embed/xyz789/", "xyz789"},
		{"https://www.youtube.com/", ""},
		{"not a url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VideoID(tt.link), tt.link)
	}
}

func TestNewVideoRecord_DefaultThumbnail(t *testing.T) {
	v := NewVideoRecord("Review", "https://youtu.be/abc123?t=5", "")

	assert.Equal(t, "abc123", v.VideoID)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", v.EmbedURL)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/hqdefault.jpg", v.ThumbnailURL)
}

func TestNewVideoRecord_KeepsProviderThumbnail(t *testing.T) {
	v := NewVideoRecord("Review", "https://www.youtube.com/watch?v=abc", "https://i.ytimg.com/x.jpg")

	assert.Equal(t, "https://i.ytimg.com/x.jpg", v.ThumbnailURL)
}

func TestNewVideoRecord_NoIDUsesLinkAsIs(t *testing.T) {
	v := NewVideoRecord("Channel", "https://www.youtube.com/", "")

	assert.Empty(t, v.VideoID)
	assert.Equal(t, "https://www.youtube.com/", v.EmbedURL)
	assert.Empty(t, v.ThumbnailURL)
}

func TestThumbnail_Shapes(t *testing.T) {
	resp := decode(t, `{"list":[{"url":"https://a"}],"empty":[],"obj":{"url":"https://b"},
		"static":{"static":"https://c"},"str":"https://d","bad":[42],"num":7}`)

	assert.Equal(t, "https://a", Thumbnail(resp["list"]))
	assert.Equal(t, "", Thumbnail(resp["empty"]))
	assert.Equal(t, "https://b", Thumbnail(resp["obj"]))
	assert.Equal(t, "https://c", Thumbnail(resp["static"]))
	assert.Equal(t, "https://d", Thumbnail(resp["str"]))
	assert.Equal(t, "", Thumbnail(resp["bad"]))
	assert.Equal(t, "", Thumbnail(resp["num"]))
	assert.Equal(t, "", Thumbnail(resp["missing"]))
}

// ==========================
// FetchVideos
// ==========================

func TestFetchVideos(t *testing.T) {
	s := &fakeSearcher{resp: decode(t, `{"video_results":[
		{"title":"Unboxing","link":"https://www.youtube.com/watch?v=v1","thumbnail":{"static":"https://t/1"}},
		{"title":"Review","link":"https://youtu.be/v2"},
		"garbage",
		{"title":"Compare","link":"https://www.youtube.com/watch?v=v3","thumbnail":[{"url":"https://t/3"}]},
		{"title":"Extra","link":"https://www.youtube.com/watch?v=v4"}
	]}`)}

	videos, err := NewFetcher(s, logger.NewTestLogger(t)).FetchVideos(context.Background(), "Sony WH-1000XM5", 0)

	require.NoError(t, err)
	assert.Equal(t, provider.EngineVideo, s.engine)
	assert.Equal(t, "Sony WH-1000XM5", s.params["search_query"])
	require.Len(t, videos, 3)
	assert.Equal(t, "https://t/1", videos[0].ThumbnailURL)
	assert.Equal(t, "https://img.youtube.com/vi/v2/hqdefault.jpg", videos[1].ThumbnailURL)
	assert.Equal(t, "Compare", videos[2].Title)
}

func TestFetchVideos_ProviderError(t *testing.T) {
	s := &fakeSearcher{err: errors.NewProviderTimeoutError("youtube", context.DeadlineExceeded)}

	_, err := NewFetcher(s, logger.NewNoOpLogger()).FetchVideos(context.Background(), "x", 3)

	assert.Equal(t, errors.ErrCodeProviderTimeout, errors.CodeOf(err))
}

// ==========================
// Review probing
// ==========================

func TestParseReviews_ProbeOrder(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRule string
		wantLen  int
	}{
		{
			name:     "product_results.user_reviews wins over top level",
			body:     `{"product_results":{"user_reviews":[{"text":"a"}]},"reviews":[{"text":"b"},{"text":"c"}]}`,
			wantRule: "product_results.user_reviews",
			wantLen:  1,
		},
		{
			name:     "product_results.reviews",
			body:     `{"product_results":{"reviews":[{"text":"a"},{"text":"b"}]}}`,
			wantRule: "product_results.reviews",
			wantLen:  2,
		},
		{
			name:     "singular product_result alias",
			body:     `{"product_result":{"user_reviews":[{"text":"a"}]}}`,
			wantRule: "product_results.user_reviews",
			wantLen:  1,
		},
		{
			name:     "empty nested falls through to top level",
			body:     `{"product_results":{"user_reviews":[]},"user_reviews":[{"text":"a"}]}`,
			wantRule: "user_reviews",
			wantLen:  1,
		},
		{
			name:     "reviews_results object probed one level deeper",
			body:     `{"reviews_results":{"reviews":[{"text":"a"},{"text":"b"},{"text":"c"}]}}`,
			wantRule: "reviews_results",
			wantLen:  3,
		},
		{
			name:     "object with user_reviews inside",
			body:     `{"reviews":{"user_reviews":[{"text":"a"}]}}`,
			wantRule: "reviews",
			wantLen:  1,
		},
		{
			name:     "nothing matches",
			body:     `{"product_results":{"title":"x"},"reviews":"n/a"}`,
			wantRule: "",
			wantLen:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, rule := ParseReviews(decode(t, tt.body), 5)

			assert.Equal(t, tt.wantRule, rule)
			assert.Len(t, reviews, tt.wantLen)
		})
	}
}

func TestParseReviews_FieldSynonyms(t *testing.T) {
	resp := decode(t, `{"reviews":[
		{"title":"Great","rating":4.5,"snippet":"Loved it","date":"2 weeks ago","user":{"name":"Asha"},"source":"Amazon","icon":"https://i/1"},
		{"stars":3,"review_text":"Okay","user_name":"Ravi","profile_photo":"https://i/2"},
		{"rating":0,"stars":"4","text":"Fine"}
	]}`)

	reviews, _ := ParseReviews(resp, 5)
	require.Len(t, reviews, 3)

	first := reviews[0]
	assert.Equal(t, "Great", first.Title)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4.5, *first.Rating)
	assert.Equal(t, "Loved it", first.Snippet)
	assert.Equal(t, "Asha", first.User)
	assert.Equal(t, "https://i/1", first.Icon)

	second := reviews[1]
	require.NotNil(t, second.Rating)
	assert.Equal(t, 3.0, *second.Rating)
	assert.Equal(t, "Okay", second.Snippet)
	assert.Equal(t, "Ravi", second.User)
	assert.Equal(t, "https://i/2", second.Icon)
	assert.Empty(t, second.Title)

	third := reviews[2]
	require.NotNil(t, third.Rating)
	assert.Equal(t, 4.0, *third.Rating)
	assert.Equal(t, "Fine", third.Snippet)
	assert.Equal(t, "Fine", third.Raw.(map[string]interface{})["text"])
}

func TestParseReviews_SynonymPriority(t *testing.T) {
	resp := decode(t, `{"reviews":[
		{"snippet":"short","text":"full review text","review_text":"raw","user":{"name":"asha_k"},"user_name":"Asha K"}
	]}`)

	reviews, _ := ParseReviews(resp, 5)
	require.Len(t, reviews, 1)
	assert.Equal(t, "full review text", reviews[0].Snippet)
	assert.Equal(t, "Asha K", reviews[0].User)
}

func TestParseReviews_Limit(t *testing.T) {
	resp := decode(t, `{"reviews":[{"text":"1"},{"text":"2"},{"text":"3"},{"text":"4"},{"text":"5"},{"text":"6"},{"text":"7"}]}`)

	reviews, _ := ParseReviews(resp, 5)

	assert.Len(t, reviews, 5)
	assert.Equal(t, "5", reviews[4].Snippet)
}

// ==========================
// FetchReviews
// ==========================

func TestFetchReviews_RequestShape(t *testing.T) {
	s := &fakeSearcher{resp: decode(t, `{"product_results":{"reviews":[{"text":"good"}]}}`)}

	reviews := NewFetcher(s, logger.NewTestLogger(t)).FetchReviews(context.Background(), "tok-123", 0)

	assert.Equal(t, provider.EngineProductDetail, s.engine)
	assert.Equal(t, "tok-123", s.params["page_token"])
	assert.Equal(t, "true", s.params["reviews"])
	require.Len(t, reviews, 1)
	assert.Equal(t, "good", reviews[0].Snippet)
}

func TestFetchReviews_ErrorsBecomeEmpty(t *testing.T) {
	s := &fakeSearcher{err: errors.NewProviderStatusError("google_immersive_product", 500, "boom")}

	reviews := NewFetcher(s, logger.NewTestLogger(t)).FetchReviews(context.Background(), "tok", 5)

	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestFetchReviews_NoTokenSkipsProvider(t *testing.T) {
	s := &fakeSearcher{}

	reviews := NewFetcher(s, logger.NewNoOpLogger()).FetchReviews(context.Background(), "", 5)

	assert.Empty(t, reviews)
	assert.Empty(t, s.engine)
}
