package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blog/internal/config"
	"github.com/Skotchmaster/blog/internal/domain"
	authmw "github.com/Skotchmaster/blog/internal/middleware/auth"
	"github.com/Skotchmaster/blog/internal/service"
	"github.com/Skotchmaster/blog/internal/session"
	"github.com/Skotchmaster/blog/internal/transport"
	"github.com/Skotchmaster/blog/pkg/logging"
)

type AuthHTTP struct {
	Svc              *service.AuthService
	Users            *service.UserService
	CookieTTL        time.Duration
	CookieSecure     bool
	RegistrationMode config.RegistrationMode
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var (
		res *service.LoginResult
		err error
	)
	if req.Token != "" {
		res, err = h.Svc.LoginFederated(ctx, req.Token)
	} else {
		login := req.Username
		if login == "" {
			login = req.Email
		}
		res, err = h.Svc.Login(ctx, login, req.Password)
	}
	if errors.Is(err, domain.ErrValidation) {
		l.Warn("login_failed", "status", 401, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, validationMessage(err))
	}
	if err != nil {
		return httpError(l, "login_failed", "user", err)
	}

	c.SetCookie(session.NewCookie(res.Token, h.CookieTTL, h.CookieSecure))
	l.Info("login_successful", "user_id", res.User.ID, "role", res.User.Role)

	return c.JSON(http.StatusOK, transport.MessageResponse{
		Message: fmt.Sprintf("Welcome, %s %s", res.User.Role, res.User.Username),
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_logout")

	c.SetCookie(session.ClearCookie(h.CookieSecure))
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	if h.RegistrationMode != config.RegistrationPublic {
		l.Warn("register_error", "status", 403, "reason", "registration is admin only")
		return echo.NewHTTPError(http.StatusForbidden, "registration is disabled")
	}

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Users.Register(ctx, service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return httpError(l, "register_error", "user", err)
	}

	l.Info("register_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	u := authmw.CurrentUser(c)
	if u == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(http.StatusOK, u)
}
