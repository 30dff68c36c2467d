package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/handler"
	"bloommarket/internal/adapter/api/middleware"
)

func SetupCommunityRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	communityHandler := handler.GetCommunityHandler()

	communities := api.Group("/communities")
	communities.POST("/nearby", communityHandler.NearbyCommunities, VerifyToken(authMiddleware))
	communities.POST("", communityHandler.CreateCommunity, authMiddleware.Authenticate)
	communities.POST("/:id/join", communityHandler.JoinCommunity, authMiddleware.Authenticate)
	communities.POST("/:id/leave", communityHandler.LeaveCommunity, authMiddleware.Authenticate)

	api.GET("/my-communities", communityHandler.ListMyCommunities, authMiddleware.Authenticate)
}
