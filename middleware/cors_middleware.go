package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

var defaultOrigins = []string{
	"http://localhost:3000", // React dev server
	"http://localhost:3001",
}

// GlobalCORS allows the storefront origins plus any configured extras
func GlobalCORS(extraOrigins []string) echo.MiddlewareFunc {
	origins := append(append([]string{}, defaultOrigins...), extraOrigins...)

	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})
}
