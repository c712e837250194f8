package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

// RequireRole rejects requests whose authenticated role is not in the
// allowed set. The service layer re-checks permissions with full context;
// this gate only keeps obviously unauthorized calls off the service.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
