package credit

import "time"

// AdjustCreditsRequest applies a signed adjustment to a user's balance.
type AdjustCreditsRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Note   string `json:"note"`
}

// AdjustCreditsResponse returns the updated account alongside the audit
// entry that recorded the change.
type AdjustCreditsResponse struct {
	UserID   uint            `json:"user_id"`
	Credits  int             `json:"credits"`
	LastMove TransactionItem `json:"transaction"`
}

// TransactionItem is one ledger entry as presented to admins.
type TransactionItem struct {
	ID              uint      `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UserID          uint      `json:"user_id"`
	Amount          int       `json:"amount"`
	PreviousBalance int       `json:"previous_balance"`
	NewBalance      int       `json:"new_balance"`
	Note            string    `json:"note,omitempty"`
	AdminID         *uint     `json:"admin_id,omitempty"`
	Hash            string    `json:"hash,omitempty"`
}

type TransactionListResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int64             `json:"total"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
}

type HistoryResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int               `json:"total"`
}
