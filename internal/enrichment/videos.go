// Package enrichment fetches on-demand side data for one product: related
// videos by title and user reviews by page token.
package enrichment

import (
	"context"
	"net/url"
	"strings"

	"price-finder/internal/common/logger"
	"price-finder/internal/models"
	"price-finder/internal/provider"
)

const (
	DefaultMaxVideos  = 3
	DefaultMaxReviews = 5
)

type Fetcher struct {
	searcher provider.Searcher
	logger   logger.Logger
}

func NewFetcher(searcher provider.Searcher, log logger.Logger) *Fetcher {
	return &Fetcher{
		searcher: searcher,
		logger:   log.With(map[string]interface{}{"component": "enrichment"}),
	}
}

// FetchVideos returns up to limit videos for title. Provider errors are
// returned; a malformed item degrades to an absent thumbnail.
func (f *Fetcher) FetchVideos(ctx context.Context, title string, limit int) ([]models.VideoRecord, error) {
	if limit <= 0 {
		limit = DefaultMaxVideos
	}

	resp, err := f.searcher.Search(ctx, provider.EngineVideo, map[string]string{"search_query": title})
	if err != nil {
		return nil, err
	}

	videos := ParseVideos(resp, limit)
	f.logger.Debug("fetched videos", map[string]interface{}{"title": title, "count": len(videos)})
	return videos, nil
}

// ParseVideos extracts video records from a video search response.
func ParseVideos(resp map[string]interface{}, limit int) []models.VideoRecord {
	items, _ := resp["video_results"].([]interface{})
	out := make([]models.VideoRecord, 0, min(len(items), limit))
	for _, raw := range items {
		if len(out) == limit {
			break
		}
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, NewVideoRecord(str(item["title"]), str(item["link"]), Thumbnail(item["thumbnail"])))
	}
	return out
}

// NewVideoRecord derives the embed URL and, when the provider gave no
// thumbnail, a default one from the video id.
func NewVideoRecord(title, link, thumbnail string) models.VideoRecord {
	v := models.VideoRecord{
		Title:        title,
		Link:         link,
		ThumbnailURL: thumbnail,
		EmbedURL:     link,
	}
	if id := VideoID(link); id != "" {
		v.VideoID = id
		v.EmbedURL = "https://www.youtube.com/watch?v=" + id
		if v.ThumbnailURL == "" {
			v.ThumbnailURL = "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
		}
	}
	return v
}

// Thumbnail reads the provider thumbnail, which is a list of {url} objects,
// a single {url} or {static} object, a plain string, or absent.
func Thumbnail(v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		return Thumbnail(t[0])
	case map[string]interface{}:
		if u := str(t["url"]); u != "" {
			return u
		}
		return str(t["static"])
	case string:
		return t
	default:
		return ""
	}
}

// VideoID checks the watch?v= parameter, then a youtu.be/ path, then the
// last path segment. Empty means no id could be derived.
func VideoID(link string) string {
	if link == "" {
		return ""
	}
	if i := strings.Index(link, "watch?v="); i >= 0 {
		return cut(link[i+len("watch?v="):], "&#")
	}
	if i := strings.Index(link, "youtu.be/"); i >= 0 {
		return cut(link[i+len("youtu.be/"):], "?&#/")
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func cut(s, stops string) string {
	if i := strings.IndexAny(s, stops); i >= 0 {
		return s[:i]
	}
	return s
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
