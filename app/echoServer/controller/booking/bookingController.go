package booking

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	bs "itemshare/service/booking"
	"itemshare/util/apperr"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /bookings
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookingReq
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

	out, err := h.Svc.Create(c.Request().Context(), uid, req.ItemID, req.Start, req.End)
	if err != nil {
		return h.fail(c, "booking create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// PATCH /bookings/:id?approved=true|false
func (h *Controller) SetApproval(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	approved, err := strconv.ParseBool(c.QueryParam("approved"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "approved must be true or false"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.SetApproval(c.Request().Context(), uid, id, approved)
	if err != nil {
		return h.fail(c, "booking approval", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /bookings/:id
func (h *Controller) ByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.ByID(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "booking get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /bookings?state=&from=&size=
func (h *Controller) ListForBooker(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	state, from, size, err := listParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := h.Svc.ListForBooker(c.Request().Context(), uid, state, from, size)
	if err != nil {
		return h.fail(c, "booking list", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /bookings/owner?state=&from=&size=
func (h *Controller) ListForOwner(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	state, from, size, err := listParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := h.Svc.ListForOwner(c.Request().Context(), uid, state, from, size)
	if err != nil {
		return h.fail(c, "booking owner list", err)
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

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func listParams(c echo.Context) (state string, from, size int, err error) {
	state = c.QueryParam("state")
	if state == "" {
		state = "ALL"
	}
	from, size, err = pageParams(c)
	return state, from, size, err
}

func pageParams(c echo.Context) (from, size int, err error) {
	from, err = queryInt(c, "from", 0)
	if err != nil || from < 0 {
		return 0, 0, errors.New("from must be a non-negative integer")
	}
	size, err = queryInt(c, "size", 10)
	if err != nil || size < 1 {
		return 0, 0, errors.New("size must be a positive integer")
	}
	return from, size, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
