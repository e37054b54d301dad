// Package main wires the item-sharing API: users list items, other users
// book them for date ranges, owners approve or reject, borrowers comment
// after a completed booking, and requests collect wishes for items that do
// not exist yet.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"itemshare/app/echoServer"
	bookingctrl "itemshare/app/echoServer/controller/booking"
	itemctrl "itemshare/app/echoServer/controller/item"
	requestctrl "itemshare/app/echoServer/controller/request"
	userctrl "itemshare/app/echoServer/controller/user"
	"itemshare/app/echoServer/validation"
	"itemshare/config"
	bookingrepo "itemshare/repository/booking"
	commentrepo "itemshare/repository/comment"
	itemrepo "itemshare/repository/item"
	requestrepo "itemshare/repository/request"
	userrepo "itemshare/repository/user"
	bookingsvc "itemshare/service/booking"
	commentsvc "itemshare/service/comment"
	itemsvc "itemshare/service/item"
	requestsvc "itemshare/service/request"
	usersvc "itemshare/service/user"
	"itemshare/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repositories
	users := userrepo.New(db)
	items := itemrepo.New(db)
	bookings := bookingrepo.New(db)
	comments := commentrepo.New(db)
	requests := requestrepo.New(db)

	// services
	userSvc := usersvc.New(users)
	bookingSvc := bookingsvc.New(bookings, users, items)
	commentSvc := commentsvc.New(comments, users, items, bookings)
	itemSvc := itemsvc.New(items, users, requests, bookings, comments)
	requestSvc := requestsvc.New(requests, users, items)

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = echoServer.JSONSerializer{}
	v := validation.New()
	e.Validator = v

	echoServer.RegisterMiddlewares(e)
	echoServer.Register(e, echoServer.C{
		User:    &userctrl.Controller{Svc: userSvc, V: v.Raw(), Log: log},
		Item:    &itemctrl.Controller{Svc: itemSvc, Comments: commentSvc, V: v.Raw(), Log: log},
		Booking: &bookingctrl.Controller{Svc: bookingSvc, V: v.Raw(), Log: log},
		Request: &requestctrl.Controller{Svc: requestSvc, V: v.Raw(), Log: log},
	})

	log.Info("starting", "port", cfg.Port, "env", cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
