package identifyproduct

type Input struct {
	SessionID   string `json:"sessionId"`
	ImageBase64 string `json:"imageBase64"`
	ImageURL    string `json:"imageUrl"`
	Strategy    string `json:"strategy"`
}

type Output struct {
	SessionID        string `json:"sessionId"`
	Caption          string `json:"caption"`
	CaptionSource    string `json:"captionSource"`
	CaptionAvailable bool   `json:"captionAvailable"`
	Query            string `json:"query"`
	Reused           bool   `json:"reused"`
}
