package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/handler"
	"bloommarket/internal/adapter/api/middleware"
)

func SetupPlantRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	plantHandler := handler.GetPlantHandler()

	plants := api.Group("/plants")
	plants.POST("/nearby", plantHandler.NearbyPlants, VerifyToken(authMiddleware))
	plants.GET("/:id", plantHandler.GetPlant)
	plants.POST("", plantHandler.CreatePlant, authMiddleware.Authenticate)

	api.GET("/my-plants", plantHandler.ListMyPlants, authMiddleware.Authenticate)
}
