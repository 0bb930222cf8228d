package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// CreditTransaction is one immutable entry of the credit audit trail.
// Rows are append-only: nothing in the codebase updates or deletes them
// once created. NewBalance is always max(0, PreviousBalance+Amount).
type CreditTransaction struct {
	ID              uint      `gorm:"primarykey"`
	CreatedAt       time.Time `gorm:"precision:3"` // Millisecond precision
	UserID          uint      `gorm:"index;not null"`
	Amount          int       `gorm:"not null"` // positive=credit, negative=debit
	PreviousBalance int       `gorm:"not null"`
	NewBalance      int       `gorm:"not null"`
	Note            string    `gorm:"type:text"`
	AdminID         *uint     `gorm:"index"` // nil for system debits (search consumption)
	Hash            string    `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *CreditTransaction) GenerateHash(secret string) string {
	adminID := uint(0)
	if t.AdminID != nil {
		adminID = *t.AdminID
	}
	data := fmt.Sprintf("%d|%d|%d|%d|%d|%s|%d",
		t.UserID, t.CreatedAt.UnixNano(), t.Amount, t.PreviousBalance, t.NewBalance,
		t.Note, adminID)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
