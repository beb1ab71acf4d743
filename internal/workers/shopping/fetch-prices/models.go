package fetchprices

import "price-finder/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
	Query     string `json:"query"`
	Limit     int    `json:"limit"`
}

type Output struct {
	Query    string                 `json:"query"`
	Products []models.ProductRecord `json:"products"`
	Count    int                    `json:"count"`
}
