package router

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"bloommarket/internal/adapter/api/handler"
	"bloommarket/internal/adapter/api/middleware"
)

func SetupUploadRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	uploadHandler := handler.GetUploadHandler()

	uploads := api.Group("/uploads")
	uploads.Use(authMiddleware.Authenticate)
	uploads.POST("/plant-image", uploadHandler.UploadPlantImage, echomiddleware.BodyLimit("6M"))
	uploads.DELETE("/plant-image", uploadHandler.DeletePlantImage)
}
