package models

// CurrencyINR is the only currency the shopping engine is queried with.
const CurrencyINR = "INR"

// ProductRecord is one normalised shopping result. Price is nil when the
// provider did not supply a usable price; it is never negative.
type ProductRecord struct {
	Title     string   `json:"title"`
	Price     *float64 `json:"price,omitempty"`
	Currency  string   `json:"currency"`
	Source    string   `json:"source,omitempty"`
	Link      string   `json:"link,omitempty"`
	PageToken string   `json:"pageToken,omitempty"`
	ProductID string   `json:"productId,omitempty"`
}

func (p ProductRecord) HasPrice() bool {
	return p.Price != nil
}

// ReviewsMayExist gates review enrichment for this record.
func (p ProductRecord) ReviewsMayExist() bool {
	return p.ProductID != "" && p.PageToken != ""
}
