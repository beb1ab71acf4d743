package models

// VideoRecord is a related video for one product title.
type VideoRecord struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	VideoID      string `json:"videoId,omitempty"`
	EmbedURL     string `json:"embedUrl"`
}

// ReviewRecord is one user review. Every field is optional because the
// provider's review schema varies; Raw keeps the provider item as received.
type ReviewRecord struct {
	Title   string      `json:"title,omitempty"`
	Rating  *float64    `json:"rating,omitempty"`
	Snippet string      `json:"snippet,omitempty"`
	Date    string      `json:"date,omitempty"`
	User    string      `json:"user,omitempty"`
	Source  string      `json:"source,omitempty"`
	Icon    string      `json:"icon,omitempty"`
	Raw     interface{} `json:"raw,omitempty"`
}
