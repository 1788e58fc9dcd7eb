package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/blog/internal/middleware/auth"
	"github.com/Skotchmaster/blog/internal/middleware/csrf"
	"github.com/Skotchmaster/blog/pkg/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	AuthHandler  *AuthHTTP
	UsersHandler *UsersHTTP
	PostsHandler *PostsHTTP
	SessionAuth  *authmw.SessionAuth
	DB           Pinger

	CSRFEnabled  bool
	CookieSecure bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	root := e.Group("")
	if d.CSRFEnabled {
		root.Use(csrf.Middleware(csrf.Config{
			Secure:    d.CookieSecure,
			SkipPaths: []string{"/login", "/register"},
		}))
	}

	root.POST("/login", d.AuthHandler.Login)
	root.POST("/logout", d.AuthHandler.Logout)
	root.POST("/register", d.AuthHandler.Register)

	private := root.Group("", d.SessionAuth.RequireAuth)
	private.GET("/me", d.AuthHandler.Me)

	users := private.Group("/users")
	users.POST("", d.UsersHandler.CreateUser, d.SessionAuth.RequireAdmin)
	users.GET("", d.UsersHandler.GetUsers)
	users.GET("/:id", d.UsersHandler.GetUser)
	users.PUT("/:id", d.UsersHandler.UpdateUser)
	users.PUT("/:id/role", d.UsersHandler.UpdateRole, d.SessionAuth.RequireAdmin)

	posts := private.Group("/posts")
	posts.POST("", d.PostsHandler.CreatePost)
	posts.GET("", d.PostsHandler.GetPosts)
	posts.GET("/search", d.PostsHandler.SearchPosts)
	posts.GET("/:id", d.PostsHandler.GetPost)
	posts.PUT("/:id", d.PostsHandler.UpdatePost)
	posts.DELETE("/:id", d.PostsHandler.DeletePost)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
