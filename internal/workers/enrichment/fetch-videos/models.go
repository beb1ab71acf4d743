package fetchvideos

import "price-finder/internal/models"

type Input struct {
	Title      string `json:"title"`
	MaxResults int    `json:"maxResults"`
}

type Output struct {
	Videos []models.VideoRecord `json:"videos"`
	Count  int                  `json:"count"`
}
