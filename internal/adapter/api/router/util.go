package router

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/adapter/api/middleware"
)

// VerifyToken sets "uid" when a valid bearer token is present and lets the
// request through either way.
func VerifyToken(authMiddleware *middleware.AuthMiddleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := middleware.BearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return next(c)
			}

			uid, err := authMiddleware.GetUIDFromToken(c.Request().Context(), token)
			if err != nil {
				return next(c)
			}

			c.Set("uid", uid)
			return next(c)
		}
	}
}
