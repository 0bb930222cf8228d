package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/joaoanzolim/maps-b2b/internal/utils"
)

// CurrentUser godoc
// @Summary Get current user
// @Description Get the authenticated user's account, including the live credit balance
// @Tags user
// @Produce  json
// @Security Bearer
// @Success 200 {object} utils.Response{data=user.UserResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/user [get]
func CurrentUser(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	u := userVal.(models.User)

	// Reload from the DB so the credit balance is current even when the
	// middleware served a cached copy.
	var latest models.User
	if err := database.DB.First(&latest, u.ID).Error; err == nil {
		u = latest
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Status:      u.Status,
		Credits:     u.Credits,
		CreditLimit: u.CreditLimit,
		Token:       token,
	}))
}
