package models

import (
	"time"

	"gorm.io/datatypes"
)

// SearchExpiry is how long an unfinished search is still considered
// "processing" by consumers. It is applied at read time, never persisted.
const SearchExpiry = 6 * time.Hour

// Search is the append-only record of a submitted lookup. Finalizado is
// the only field ever updated after creation.
type Search struct {
	ID              uint `gorm:"primarykey"`
	CreatedAt       time.Time
	SearchID        string `gorm:"index;not null"` // provider-side reference
	UserID          uint   `gorm:"index;not null"`
	Address         string `gorm:"type:text"`
	Segment         string `gorm:"type:varchar(255)"`
	CreditsUsed     int    `gorm:"not null"`
	Finalizado      bool   `gorm:"not null;default:false"`
	ProviderPayload datatypes.JSON // raw provider response at submission time
}

// Expired reports whether the search should be presented as expired:
// still not finalized past the expiry window. Derived from CreatedAt so
// nothing has to flip a stored flag when the window elapses.
func (s *Search) Expired(now time.Time) bool {
	return !s.Finalizado && now.Sub(s.CreatedAt) > SearchExpiry
}
