package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/policy"
)

// RequireAdmin must run after RequireAuth.
func (m *SessionAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := policy.RequireRole(CurrentUser(c), models.RoleAdmin); err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}
