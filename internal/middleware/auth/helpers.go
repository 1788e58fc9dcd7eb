package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blog/internal/models"
	loggingmw "github.com/Skotchmaster/blog/pkg/middleware/logging"
)

const userKey = "user"

func setUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
	c.Set(loggingmw.UserIDKey, u.ID)
}

// CurrentUser returns the caller resolved by RequireAuth, or nil.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}
