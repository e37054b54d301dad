// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserHeader carries the pre-resolved caller id. Upstream is trusted to
// have authenticated the user; here we only check the shape.
const UserHeader = "X-Sharer-User-Id"

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// SharerID extracts the caller id from the UserHeader and stores it under
// "user_id". Routes behind this middleware can assume a positive id.
func SharerID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(UserHeader)
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				rid := c.Response().Header().Get(echo.HeaderXRequestID)
				slog.Warn("missing or invalid user header", "req_id", rid, "ip", c.RealIP())
				return c.JSON(http.StatusBadRequest, echo.Map{
					"message": "missing or invalid " + UserHeader + " header",
				})
			}
			c.Set("user_id", id)
			return next(c)
		}
	}
}
