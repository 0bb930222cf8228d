package services

import (
	"errors"

	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/joaoanzolim/maps-b2b/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBlocked     = errors.New("account is blocked")
)

// RegisterUser creates an account from the public registration form.
// The very first account becomes the admin.
func RegisterUser(email, password, firstName, lastName string) (*models.User, error) {
	var userCount int64
	if err := database.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return nil, err
	}

	role := models.RoleRegular
	if userCount == 0 {
		role = models.RoleAdmin
	}

	return CreateUser(CreateUserInput{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	})
}

// LoginUser verifies credentials and issues a JWT. Blocked accounts
// cannot log in.
func LoginUser(email, password string) (string, *models.User, error) {
	user, err := FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if user.IsBlocked() {
		return "", nil, ErrAccountBlocked
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}
