package user

import "time"

// UserListItem is the admin view of an account.
type UserListItem struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	Credits     int       `json:"credits"`
	CreditLimit int       `json:"credit_limit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// CreateUserRequest is the admin account-creation payload.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=admin regular"`
	Credits   int    `json:"credits" binding:"omitempty,gte=0"`
}

// UpdateProfileRequest is a partial name update. Email and password are
// out of reach here.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// SetStatusRequest blocks or unblocks an account.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active blocked"`
}

// SetLimitRequest updates the advisory credit ceiling.
type SetLimitRequest struct {
	CreditLimit *int `json:"credit_limit" binding:"required"`
}
