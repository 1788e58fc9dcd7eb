package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/blog/internal/middleware/auth"
	"github.com/Skotchmaster/blog/internal/service"
	"github.com/Skotchmaster/blog/internal/transport"
	"github.com/Skotchmaster/blog/internal/util"
	"github.com/Skotchmaster/blog/pkg/logging"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_user")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.Create(ctx, authmw.CurrentUser(c), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return httpError(l, "create_user_error", "user", err)
	}

	l.Info("create_user_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *UsersHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_user")

	id, err := parseID(c, l, "get_user_error")
	if err != nil {
		return err
	}

	u, err := h.Svc.Get(ctx, authmw.CurrentUser(c), id)
	if err != nil {
		return httpError(l, "get_user_error", "user", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_users")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.List(ctx, authmw.CurrentUser(c), offset, limit)
	if err != nil {
		return httpError(l, "get_users_error", "user", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": res.Items,
		"meta": util.Meta(page, offset, limit, res.Total),
	})
}

func (h *UsersHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_user")

	id, err := parseID(c, l, "update_user_error")
	if err != nil {
		return err
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.UpdateUsername(ctx, authmw.CurrentUser(c), id, req.Username)
	if err != nil {
		return httpError(l, "update_user_error", "user", err)
	}

	l.Info("update_user_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_role")

	id, err := parseID(c, l, "update_role_error")
	if err != nil {
		return err
	}

	var req transport.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_role_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.UpdateRole(ctx, authmw.CurrentUser(c), id, req.Role)
	if err != nil {
		return httpError(l, "update_role_error", "user", err)
	}

	l.Info("update_role_success", "user_id", u.ID, "role", u.Role)
	return c.JSON(http.StatusOK, u)
}
