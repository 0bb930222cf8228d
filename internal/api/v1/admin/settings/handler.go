package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joaoanzolim/maps-b2b/internal/services"
	"github.com/joaoanzolim/maps-b2b/internal/utils"
)

// SearchCostResponse is the typed settings view.
type SearchCostResponse struct {
	SearchCost int `json:"search_cost"`
}

// UpdateSearchCostRequest changes the per-search credit cost.
type UpdateSearchCostRequest struct {
	SearchCost int `json:"search_cost" binding:"required,gt=0"`
}

// GetSearchCost godoc
// @Summary Get search cost
// @Description Current per-search credit cost. Admin only.
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=SearchCostResponse}
// @Failure 500 {object} utils.Response
// @Router /admin/settings/search-cost [get]
func GetSearchCost(c *gin.Context) {
	cost, err := services.GetSearchCost()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load settings"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Settings retrieved successfully", SearchCostResponse{SearchCost: cost}))
}

// UpdateSearchCost godoc
// @Summary Update search cost
// @Description Set the per-search credit cost. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param body body UpdateSearchCostRequest true "New cost"
// @Success 200 {object} utils.Response{data=SearchCostResponse}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/settings/search-cost [put]
func UpdateSearchCost(c *gin.Context) {
	var req UpdateSearchCostRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := services.SetSearchCost(req.SearchCost); err != nil {
		if errors.Is(err, services.ErrInvalidSearchCost) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update settings"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Settings updated successfully", SearchCostResponse{SearchCost: req.SearchCost}))
}
