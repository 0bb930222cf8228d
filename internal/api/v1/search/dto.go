package search

import "time"

// SubmitSearchRequest starts a new lookup.
type SubmitSearchRequest struct {
	Address string `json:"address" binding:"required"`
	Segment string `json:"segment" binding:"required"`
	CEP     string `json:"cep"`
}

// SearchStatus is the presentation of a search's progress. Expired is
// derived at read time from the record's age, it is never stored.
const (
	StatusProcessing = "processing"
	StatusFinalized  = "finalized"
	StatusExpired    = "expired"
)

// SearchItem is one entry of the user's search listing.
type SearchItem struct {
	ID          uint      `json:"id"`
	SearchID    string    `json:"search_id"`
	Address     string    `json:"address"`
	Segment     string    `json:"segment"`
	CreditsUsed int       `json:"credits_used"`
	Finalizado  bool      `json:"finalizado"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// SearchListResponse wraps the listing.
type SearchListResponse struct {
	Searches []SearchItem `json:"searches"`
	Total    int          `json:"total"`
}
