package user

// UserResponse is the account view returned to its owner.
type UserResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	Credits     int    `json:"credits"`
	CreditLimit int    `json:"credit_limit"`
	Token       string `json:"token,omitempty"`
}
