package search

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	searches := router.Group("/searches")
	searches.POST("", SubmitSearch)
	searches.GET("", ListSearches)
	searches.POST("/:id/refresh", RefreshSearch)
	searches.GET("/:id/download", DownloadResult)
}
