// middleware/jwt_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/simstore_backend/models"
	"github.com/HSouheill/simstore_backend/services"
)

// ContextClaims is the context key JWTMiddleware stores verified claims under
const ContextClaims = "claims"

// SessionVerifier validates a bearer token
type SessionVerifier interface {
	Authenticate(token string) (*services.SessionClaims, error)
}

// ExtractBearerToken pulls the token out of an "Authorization: Bearer <token>" header
func ExtractBearerToken(authHeader string) (string, bool) {
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len(prefix):])
	return token, token != ""
}

// JWTMiddleware rejects requests without a valid session token
func JWTMiddleware(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Missing or malformed authorization header",
				})
			}

			claims, err := verifier.Authenticate(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token",
				})
			}

			// Store claims in context for easy access
			c.Set(ContextClaims, claims)
			return next(c)
		}
	}
}

// GetUserIDFromToken returns the authenticated user id, or "" outside JWTMiddleware
func GetUserIDFromToken(c echo.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// GetClaims returns the verified session claims, or nil outside JWTMiddleware
func GetClaims(c echo.Context) *services.SessionClaims {
	claims, _ := c.Get(ContextClaims).(*services.SessionClaims)
	return claims
}
