package middleware

import (
	"strings"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Identity resolves the caller's bearer token against the user store and
// stashes the resulting identity on the request context. Missing or unknown
// tokens yield an anonymous identity; individual handlers decide whether
// authentication is required.
func Identity(users domain.UserStore, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				token = ""
			}

			identity := domain.Identity{}
			if token != "" {
				user, err := users.GetUserByToken(c.Request().Context(), token)
				switch {
				case err == nil:
					identity = domain.Identity{UserID: user.ID, Roles: user.Roles}
				case err == domain.ErrNotFound:
					// Unknown token: treat as anonymous rather than failing the request.
				default:
					log.Error("Failed to resolve identity", "error", err)
					return echo.NewHTTPError(500, "identity lookup failed")
				}
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity set by the middleware, or an anonymous
// identity when the middleware did not run.
func IdentityFrom(c echo.Context) domain.Identity {
	if identity, ok := c.Get(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.Identity{}
}
