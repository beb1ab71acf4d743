package pricing

import (
	"fmt"
	"sort"
	"strings"

	"price-finder/internal/models"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseDirection accepts asc, desc, low-high and high-low.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "low-high":
		return Ascending, nil
	case "desc", "descending", "high-low":
		return Descending, nil
	default:
		return Descending, fmt.Errorf("unknown sort order %q", s)
	}
}

// FilterPriced keeps records that carry a price, preserving order.
func FilterPriced(records []models.ProductRecord) []models.ProductRecord {
	out := make([]models.ProductRecord, 0, len(records))
	for _, r := range records {
		if r.HasPrice() {
			out = append(out, r)
		}
	}
	return out
}

// SortByPrice returns a stably sorted copy. Records without a price sort
// after all priced records in either direction.
func SortByPrice(records []models.ProductRecord, dir Direction) []models.ProductRecord {
	out := make([]models.ProductRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Price, out[j].Price
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case dir == Descending:
			return *a > *b
		default:
			return *a < *b
		}
	})
	return out
}
