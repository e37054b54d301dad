package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	us "itemshare/service/user"
	"itemshare/util/apperr"
)

type Controller struct {
	Svc us.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /users
func (h *Controller) Add(c echo.Context) error {
	var req CreateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, err := h.Svc.Add(c.Request().Context(), req.Name, req.Email)
	if err != nil {
		return h.fail(c, "user create", err)
	}
	return c.JSON(http.StatusCreated, u)
}

// PATCH /users/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, err := h.Svc.Update(c.Request().Context(), id, req.Name, req.Email)
	if err != nil {
		return h.fail(c, "user update", err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /users/:id
func (h *Controller) ByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "user get", err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /users
func (h *Controller) List(c echo.Context) error {
	users, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "user list", err)
	}
	return c.JSON(http.StatusOK, users)
}

// DELETE /users/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "user delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case apperr.Invalid:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case apperr.Conflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	default:
		h.Log.Error(op, "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
