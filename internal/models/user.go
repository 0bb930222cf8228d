package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleRegular = "regular"
)

const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User is the account record. Credits is only ever written through the
// ledger service so that every balance change has a matching
// CreditTransaction row.
type User struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string `gorm:"type:varchar(100)"`
	LastName     string `gorm:"type:varchar(100)"`
	Role         string `gorm:"not null;default:'regular'"`
	Status       string `gorm:"not null;default:'active'"`
	Credits      int    `gorm:"not null;default:0"`
	CreditLimit  int    `gorm:"not null;default:0"`
	Version      int    `gorm:"default:1"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}
