package rankproducts

import "price-finder/internal/models"

type Input struct {
	Products   []models.ProductRecord `json:"products"`
	SortOrder  string                 `json:"sortOrder"`
	PricedOnly *bool                  `json:"pricedOnly"`
}

type Output struct {
	Products []models.ProductRecord `json:"products"`
	Count    int                    `json:"count"`
}
