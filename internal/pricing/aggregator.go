// Package pricing fetches shopping results for a product query and exposes
// the price filter and sort used by the presentation side.
package pricing

import (
	"context"
	"math"
	"strconv"
	"strings"

	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/models"
	"price-finder/internal/provider"
)

// MaxResults is the provider page size the aggregator never exceeds.
const MaxResults = 8

type Aggregator struct {
	searcher provider.Searcher
	limit    int
	logger   logger.Logger
}

// NewAggregator clamps limit into 1..MaxResults.
func NewAggregator(searcher provider.Searcher, limit int, log logger.Logger) *Aggregator {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	return &Aggregator{
		searcher: searcher,
		limit:    limit,
		logger:   log.With(map[string]interface{}{"component": "price-aggregator"}),
	}
}

// FetchPrices returns at most limit normalised records in provider order.
// It does not filter or sort.
func (a *Aggregator) FetchPrices(ctx context.Context, query string) ([]models.ProductRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewInvalidQueryError("query must not be empty")
	}

	resp, err := a.searcher.Search(ctx, provider.EngineShopping, map[string]string{"q": query})
	if err != nil {
		return nil, err
	}

	items, _ := resp["shopping_results"].([]interface{})
	records := make([]models.ProductRecord, 0, min(len(items), a.limit))
	for _, raw := range items {
		if len(records) == a.limit {
			break
		}
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, normalize(item))
	}

	a.logger.Info("fetched prices", map[string]interface{}{
		"query":    query,
		"received": len(items),
		"returned": len(records),
	})
	return records, nil
}

func normalize(item map[string]interface{}) models.ProductRecord {
	link := stringField(item, "product_link")
	if link == "" {
		link = stringField(item, "link")
	}
	return models.ProductRecord{
		Title:     stringField(item, "title"),
		Price:     priceField(item["extracted_price"]),
		Currency:  models.CurrencyINR,
		Source:    stringField(item, "source"),
		Link:      link,
		PageToken: stringField(item, "immersive_product_page_token"),
		ProductID: stringField(item, "product_id"),
	}
}

func stringField(item map[string]interface{}, key string) string {
	switch v := item[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// priceField accepts a JSON number or numeric string. Negative prices are
// dropped so a present price is always non-negative.
func priceField(v interface{}) *float64 {
	var p float64
	switch t := v.(type) {
	case float64:
		p = t
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		if err != nil {
			return nil
		}
		p = f
	default:
		return nil
	}
	if p < 0 || math.IsNaN(p) {
		return nil
	}
	return &p
}
