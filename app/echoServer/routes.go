package echoServer

import (
	"itemshare/app/echoServer/controller/booking"
	"itemshare/app/echoServer/controller/item"
	"itemshare/app/echoServer/controller/request"
	"itemshare/app/echoServer/controller/user"

	"github.com/labstack/echo/v4"
)

type C struct {
	User    *user.Controller
	Item    *item.Controller
	Booking *booking.Controller
	Request *request.Controller
}

func Register(e *echo.Echo, c C) {
	// Users: no caller header needed, ids travel in the path.
	users := e.Group("/users")
	users.POST("", c.User.Add)
	users.PATCH("/:id", c.User.Update)
	users.GET("/:id", c.User.ByID)
	users.GET("", c.User.List)
	users.DELETE("/:id", c.User.Delete)

	// Everything below acts on behalf of the header-identified caller.
	items := e.Group("/items", SharerID())
	items.POST("", c.Item.Create)
	items.PATCH("/:id", c.Item.Update)
	items.GET("/:id", c.Item.ByID)
	items.GET("", c.Item.List)
	items.GET("/search", c.Item.Search)
	items.POST("/:id/comment", c.Item.AddComment)

	bookings := e.Group("/bookings", SharerID())
	bookings.POST("", c.Booking.Create)
	bookings.PATCH("/:id", c.Booking.SetApproval)
	bookings.GET("/:id", c.Booking.ByID)
	bookings.GET("", c.Booking.ListForBooker)
	bookings.GET("/owner", c.Booking.ListForOwner)

	requests := e.Group("/requests", SharerID())
	requests.POST("", c.Request.Add)
	requests.GET("", c.Request.Own)
	requests.GET("/all", c.Request.All)
	requests.GET("/:id", c.Request.ByID)
}
