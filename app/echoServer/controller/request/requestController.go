package request

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	rs "itemshare/service/request"
	"itemshare/util/apperr"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /requests
func (h *Controller) Add(c echo.Context) error {
	var req CreateRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Add(c.Request().Context(), uid, req.Description)
	if err != nil {
		return h.fail(c, "request create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /requests
func (h *Controller) Own(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	out, err := h.Svc.Own(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "request own list", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /requests/all?from=&size=
func (h *Controller) All(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	from, size, err := pageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := h.Svc.All(c.Request().Context(), uid, from, size)
	if err != nil {
		return h.fail(c, "request all list", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /requests/:id
func (h *Controller) ByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.ByID(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "request get", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case apperr.Invalid:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	default:
		h.Log.Error(op, "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pageParams(c echo.Context) (from, size int, err error) {
	from, size = 0, 10
	if raw := c.QueryParam("from"); raw != "" {
		from, err = strconv.Atoi(raw)
		if err != nil || from < 0 {
			return 0, 0, errors.New("from must be a non-negative integer")
		}
	}
	if raw := c.QueryParam("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 {
			return 0, 0, errors.New("size must be a positive integer")
		}
	}
	return from, size, nil
}
