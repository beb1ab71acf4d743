package fetchreviews

import "price-finder/internal/models"

type Input struct {
	PageToken  string `json:"pageToken"`
	ProductID  string `json:"productId"`
	MaxReviews int    `json:"maxReviews"`
}

type Output struct {
	Reviews          []models.ReviewRecord `json:"reviews"`
	ReviewsAvailable bool                  `json:"reviewsAvailable"`
	Count            int                   `json:"count"`
}
