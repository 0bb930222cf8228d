package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users", ListUsers)
	router.POST("/users", CreateUser)
	router.PATCH("/users/:id", UpdateProfile)
	router.PUT("/users/:id/status", SetStatus)
	router.PUT("/users/:id/limit", SetCreditLimit)
	router.GET("/stats", Stats)
}
