package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/firebase-health", healthHandler.CheckFirebaseHealth)
	e.GET("/ready", healthHandler.CheckReadiness)
}
