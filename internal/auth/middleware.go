package auth

import (
	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/user"
	"github.com/digitalogic/catalog/pkg/auth"
	"github.com/digitalogic/catalog/pkg/parser"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/labstack/echo/v4"
)

// RequireCapability rejects authenticated callers whose token does not carry
// the given capability.
func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, apiErr := auth.GetClaims(c)
			if apiErr != nil {
				return apiErr
			}
			if claims.Capability != capability {
				return rest.NewForbiddenError("missing capability: " + capability)
			}
			return next(c)
		}
	}
}

// WithRequestInfo copies the caller's identity and address into the request
// context so services can attribute audit entries without seeing the
// transport.
func WithRequestInfo() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var userID string
			if currentUser, err := user.GetCurrentUser(c); err == nil {
				userID, _ = parser.PgUUIDToString(currentUser.ID)
			}

			info := audit.InfoFromEcho(c, userID)
			ctx := audit.WithRequestInfo(c.Request().Context(), info)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
