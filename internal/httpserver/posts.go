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

type PostsHTTP struct {
	Svc *service.PostService
}

func (h *PostsHTTP) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_post")

	var req transport.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_post_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Create(ctx, authmw.CurrentUser(c), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		return httpError(l, "create_post_error", "post", err)
	}

	l.Info("create_post_success", "post_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *PostsHTTP) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_post")

	id, err := parseID(c, l, "get_post_error")
	if err != nil {
		return err
	}

	p, err := h.Svc.Get(ctx, authmw.CurrentUser(c), id)
	if err != nil {
		return httpError(l, "get_post_error", "post", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PostsHTTP) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_posts")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.List(ctx, authmw.CurrentUser(c), offset, limit)
	if err != nil {
		return httpError(l, "get_posts_error", "post", err)
	}

	l.Info("get_posts_success")
	return c.JSON(http.StatusOK, map[string]any{
		"data": res.Items,
		"meta": util.Meta(page, offset, limit, res.Total),
	})
}

func (h *PostsHTTP) SearchPosts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search_posts")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.Search(ctx, authmw.CurrentUser(c), c.QueryParam("q"), offset, limit)
	if err != nil {
		return httpError(l, "search_posts_error", "post", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": res.Items,
		"meta": util.Meta(page, offset, limit, res.Total),
	})
}

func (h *PostsHTTP) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_post")

	id, err := parseID(c, l, "update_post_error")
	if err != nil {
		return err
	}

	var req transport.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_post_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Update(ctx, authmw.CurrentUser(c), id, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		return httpError(l, "update_post_error", "post", err)
	}

	l.Info("update_post_success", "post_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *PostsHTTP) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_post")

	id, err := parseID(c, l, "delete_post_error")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, authmw.CurrentUser(c), id); err != nil {
		return httpError(l, "delete_post_error", "post", err)
	}

	l.Info("delete_post_success", "post_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Post deleted"})
}
