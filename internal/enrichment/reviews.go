package enrichment

import (
	"context"
	"strconv"

	"price-finder/internal/common/errors"
	"price-finder/internal/models"
	"price-finder/internal/provider"
)

// probeRule is one place in a product-detail response where reviews may live.
type probeRule struct {
	name string
	get  func(resp map[string]interface{}) interface{}
}

func nested(outer []string, inner string) func(map[string]interface{}) interface{} {
	return func(resp map[string]interface{}) interface{} {
		for _, key := range outer {
			if obj, ok := resp[key].(map[string]interface{}); ok && len(obj) > 0 {
				return obj[inner]
			}
		}
		return nil
	}
}

func topLevel(key string) func(map[string]interface{}) interface{} {
	return func(resp map[string]interface{}) interface{} { return resp[key] }
}

var productResultKeys = []string{"product_results", "product_result"}

// reviewProbes is tried in order; the first non-empty candidate wins.
var reviewProbes = []probeRule{
	{name: "product_results.user_reviews", get: nested(productResultKeys, "user_reviews")},
	{name: "product_results.reviews", get: nested(productResultKeys, "reviews")},
	{name: "user_reviews", get: topLevel("user_reviews")},
	{name: "reviews_results", get: topLevel("reviews_results")},
	{name: "reviews", get: topLevel("reviews")},
}

// innerReviewKeys are probed when a candidate is an object.
var innerReviewKeys = []string{"reviews", "user_reviews"}

// FetchReviews returns up to limit reviews for pageToken. It never fails:
// provider errors are logged and yield an empty slice.
func (f *Fetcher) FetchReviews(ctx context.Context, pageToken string, limit int) []models.ReviewRecord {
	if limit <= 0 {
		limit = DefaultMaxReviews
	}
	if pageToken == "" {
		return []models.ReviewRecord{}
	}

	resp, err := f.searcher.Search(ctx, provider.EngineProductDetail, map[string]string{
		"page_token": pageToken,
		"reviews":    "true",
	})
	if err != nil {
		f.logger.Warn("review fetch failed", map[string]interface{}{
			"errorCode": string(errors.CodeOf(err)),
			"error":     err.Error(),
		})
		return []models.ReviewRecord{}
	}

	reviews, rule := ParseReviews(resp, limit)
	f.logger.Debug("fetched reviews", map[string]interface{}{"count": len(reviews), "matched": rule})
	return reviews
}

// ParseReviews probes resp for review items and normalises up to limit of
// them. The matched rule name is returned for logging ("" when none).
func ParseReviews(resp map[string]interface{}, limit int) ([]models.ReviewRecord, string) {
	items, rule := probeReviews(resp)

	out := make([]models.ReviewRecord, 0, min(len(items), limit))
	for _, raw := range items {
		if len(out) == limit {
			break
		}
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, normalizeReview(item))
	}
	return out, rule
}

func probeReviews(resp map[string]interface{}) ([]interface{}, string) {
	if resp == nil {
		return nil, ""
	}
	for _, rule := range reviewProbes {
		if items := asReviewList(rule.get(resp)); len(items) > 0 {
			return items, rule.name
		}
	}
	return nil, ""
}

// asReviewList accepts a list, or an object holding the list one level down.
func asReviewList(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case map[string]interface{}:
		for _, key := range innerReviewKeys {
			if list, ok := t[key].([]interface{}); ok && len(list) > 0 {
				return list
			}
		}
	}
	return nil
}

func normalizeReview(item map[string]interface{}) models.ReviewRecord {
	return models.ReviewRecord{
		Title:   firstString(item, "title"),
		Rating:  firstNumber(item, "rating", "stars"),
		Snippet: firstString(item, "text", "snippet", "review_text"),
		Date:    firstString(item, "date"),
		User:    firstString(item, "user_name", "user"),
		Source:  firstString(item, "source"),
		Icon:    firstString(item, "icon", "profile_photo"),
		Raw:     item,
	}
}

func firstString(item map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			// user may be {"name": ...}
			if name := str(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func firstNumber(item map[string]interface{}, keys ...string) *float64 {
	for _, k := range keys {
		switch v := item[k].(type) {
		case float64:
			if v != 0 {
				return &v
			}
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil && f != 0 {
				return &f
			}
		}
	}
	return nil
}
