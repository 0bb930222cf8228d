package settings

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	settings.GET("/search-cost", GetSearchCost)
	settings.PUT("/search-cost", UpdateSearchCost)
}
