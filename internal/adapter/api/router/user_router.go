package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/handler"
	"bloommarket/internal/adapter/api/middleware"
)

func SetupUserRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	me := api.Group("/me")
	me.Use(authMiddleware.Authenticate)
	me.GET("", userHandler.GetMe)
	me.PUT("/location", userHandler.UpdateLocation)
}
