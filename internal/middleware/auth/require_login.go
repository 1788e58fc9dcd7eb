package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/session"
	"github.com/Skotchmaster/blog/pkg/logging"
)

type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (*models.User, error)
}

type SessionAuth struct {
	Resolver     SessionResolver
	CookieSecure bool
}

func NewSessionAuth(r SessionResolver, cookieSecure bool) *SessionAuth {
	return &SessionAuth{Resolver: r, CookieSecure: cookieSecure}
}

func (m *SessionAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		raw := ""
		if ck, err := c.Cookie(session.CookieName); err == nil {
			raw = ck.Value
		}
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		user, err := m.Resolver.Resolve(ctx, raw)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				l.Warn("session_rejected", "status", 401, "error", err)
				c.SetCookie(session.ClearCookie(m.CookieSecure))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}
			l.Error("session_resolve_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		setUser(c, user)
		return next(c)
	}
}
