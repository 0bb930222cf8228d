package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joaoanzolim/maps-b2b/config"
	_ "github.com/joaoanzolim/maps-b2b/docs"
	adminCredit "github.com/joaoanzolim/maps-b2b/internal/api/v1/admin/credit"
	adminSettings "github.com/joaoanzolim/maps-b2b/internal/api/v1/admin/settings"
	adminUser "github.com/joaoanzolim/maps-b2b/internal/api/v1/admin/user"
	"github.com/joaoanzolim/maps-b2b/internal/api/v1/auth"
	"github.com/joaoanzolim/maps-b2b/internal/api/v1/search"
	userRoutes "github.com/joaoanzolim/maps-b2b/internal/api/v1/user"
	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized)
			search.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(admin)
			adminCredit.RegisterRoutes(admin)
			adminSettings.RegisterRoutes(admin)
		}
	}

	return router, nil
}
