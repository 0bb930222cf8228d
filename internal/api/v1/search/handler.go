package search

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/joaoanzolim/maps-b2b/internal/services"
	"github.com/joaoanzolim/maps-b2b/internal/utils"
)

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	u, ok := userVal.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	return u, true
}

func toItem(s models.Search, now time.Time) SearchItem {
	status := StatusProcessing
	switch {
	case s.Finalizado:
		status = StatusFinalized
	case s.Expired(now):
		status = StatusExpired
	}

	return SearchItem{
		ID:          s.ID,
		SearchID:    s.SearchID,
		Address:     s.Address,
		Segment:     s.Segment,
		CreditsUsed: s.CreditsUsed,
		Finalizado:  s.Finalizado,
		Status:      status,
		CreatedAt:   s.CreatedAt,
	}
}

// SubmitSearch godoc
// @Summary Submit a search
// @Description Start an external business lookup. Debits the per-search credit cost.
// @Tags search
// @Accept json
// @Produce json
// @Security Bearer
// @Param body body SubmitSearchRequest true "Search parameters"
// @Success 201 {object} utils.Response{data=SearchItem}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 502 {object} utils.Response
// @Router /searches [post]
func SubmitSearch(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubmitSearchRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	s, err := services.SubmitSearch(u.ID, services.SubmitSearchInput{
		Address: req.Address,
		Segment: req.Segment,
		CEP:     req.CEP,
	})
	if err != nil {
		if errors.Is(err, services.ErrInsufficientCredits) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, "Search provider is unavailable"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Search submitted successfully", toItem(*s, time.Now())))
}

// ListSearches godoc
// @Summary List searches
// @Description List the authenticated user's searches, newest first
// @Tags search
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=SearchListResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /searches [get]
func ListSearches(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	searches, err := services.ListForUser(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch searches"))
		return
	}

	now := time.Now()
	items := make([]SearchItem, 0, len(searches))
	for _, s := range searches {
		items = append(items, toItem(s, now))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Searches retrieved successfully", SearchListResponse{
		Searches: items,
		Total:    len(items),
	}))
}

// RefreshSearch godoc
// @Summary Refresh search status
// @Description Ask the provider whether the search finished. Rate limited to once per 30s per search.
// @Tags search
// @Produce json
// @Security Bearer
// @Param id path int true "Search ID"
// @Success 200 {object} utils.Response{data=SearchItem}
// @Failure 404 {object} utils.Response
// @Failure 429 {object} utils.Response
// @Failure 502 {object} utils.Response
// @Router /searches/{id}/refresh [post]
func RefreshSearch(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid search ID"))
		return
	}

	s, err := services.RefreshSearch(u.ID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSearchNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrRefreshCooldown):
			c.JSON(http.StatusTooManyRequests, utils.NewErrorResponse(http.StatusTooManyRequests, err.Error()))
		default:
			c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, "Search provider is unavailable"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Search status refreshed", toItem(*s, time.Now())))
}

// DownloadResult godoc
// @Summary Download search result
// @Description Download the finished result spreadsheet
// @Tags search
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security Bearer
// @Param id path int true "Search ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 502 {object} utils.Response
// @Router /searches/{id}/download [get]
func DownloadResult(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid search ID"))
		return
	}

	content, filename, err := services.DownloadResult(u.ID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSearchNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrSearchNotFinalized):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, "Search provider is unavailable"))
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
