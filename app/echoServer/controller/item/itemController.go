package item

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	cs "itemshare/service/comment"
	is "itemshare/service/item"
	"itemshare/util/apperr"
)

type Controller struct {
	Svc      is.Service
	Comments cs.Service
	V        *validator.Validate
	Log      *slog.Logger
}

// POST /items
func (h *Controller) Create(c echo.Context) error {
	var req CreateItemReq
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

	out, err := h.Svc.Create(c.Request().Context(), uid, is.CreateIn{
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return h.fail(c, "item create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// PATCH /items/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Update(c.Request().Context(), uid, id, is.UpdateIn{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		return h.fail(c, "item update", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /items/:id
func (h *Controller) ByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.ByID(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "item get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /items?from=&size=
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	from, size, err := pageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := h.Svc.ListByOwner(c.Request().Context(), uid, from, size)
	if err != nil {
		return h.fail(c, "item list", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /items/search?text=&from=&size=
func (h *Controller) Search(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	from, size, err := pageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := h.Svc.Search(c.Request().Context(), uid, c.QueryParam("text"), from, size)
	if err != nil {
		return h.fail(c, "item search", err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /items/:id/comment
func (h *Controller) AddComment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CreateCommentReq
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

	out, err := h.Comments.Add(c.Request().Context(), uid, id, req.Text)
	if err != nil {
		return h.fail(c, "comment create", err)
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
