package models

// MHeadline mirrors one persisted news item.
type MHeadline struct {
	Ticker    string `json:"ticker"`
	ID        int64  `json:"id"`
	Timestamp int64  `json:"datetime"` // epoch seconds
	Text      string `json:"headline"`
	Category  string `json:"category"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
}
