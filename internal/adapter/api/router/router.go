package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	api := e.Group("/api")

	SetupPlantRouter(api, authMiddleware)
	SetupCommunityRouter(api, authMiddleware)
	SetupOrderRouter(api, authMiddleware)
	SetupUserRouter(api, authMiddleware)
	SetupUploadRouter(api, authMiddleware)
	SetupHealthRouter(e)
}
