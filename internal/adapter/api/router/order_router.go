package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/handler"
	"bloommarket/internal/adapter/api/middleware"
)

func SetupOrderRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	orderHandler := handler.GetOrderHandler()

	orders := api.Group("/orders")
	orders.Use(authMiddleware.Authenticate)
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("/user/:userId", orderHandler.ListUserOrders)
	orders.GET("/:id", orderHandler.GetOrder)
}
