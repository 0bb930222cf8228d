package credit

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users/:id/credits", AdjustCredits)
	router.GET("/users/:id/credits", History)
	router.GET("/transactions", ListTransactions)
	router.GET("/transactions/export", ExportTransactions)
}
