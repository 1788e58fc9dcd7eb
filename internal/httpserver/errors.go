package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blog/internal/domain"
)

// httpError logs err under event and turns it into the response the client sees.
// Internal details never leave the server.
func httpError(l *slog.Logger, event, resource string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid input", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrReferentialIntegrity):
		l.Warn(event, "status", 400, "reason", "referenced user missing", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "User ID does not exist")
	case errors.Is(err, domain.ErrInvalidCredentials):
		l.Warn(event, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, domain.ErrFederatedTokenInvalid):
		l.Warn(event, "status", 401, "reason", "federated token rejected", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid federated token")
	case errors.Is(err, domain.ErrUnauthenticated):
		l.Warn(event, "status", 401, "reason", "not authenticated", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, domain.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		l.Warn(event, "status", 404, "reason", resource+" not found")
		return echo.NewHTTPError(http.StatusNotFound, resource+" not found")
	case errors.Is(err, domain.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, resource+" already exists")
	}
	l.Error(event, "status", 500, "reason", "unexpected error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(domain.ErrValidation.Error())+2:]
	}
	return "invalid input"
}

func parseID(c echo.Context, l *slog.Logger, event string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn(event, "status", 400, "reason", "id is not a positive integer", "error", err)
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return uint(id), nil
}
