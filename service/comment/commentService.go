package commentsvc

import (
	"context"
	"time"

	"itemshare/model"
	"itemshare/util/apperr"
)

type CommentOut struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	ItemID     int64     `json:"itemId"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type Repo interface {
	Insert(ctx context.Context, c *model.Comment) error
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Items interface {
	ByID(ctx context.Context, id int64) (*model.Item, error)
}

type Bookings interface {
	HasCompleted(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type Service interface {
	// Add records feedback on an item. Only users with at least one
	// approved booking of the item that has already ended may comment.
	Add(ctx context.Context, authorID, itemID int64, text string) (*CommentOut, error)
}

type service struct {
	r        Repo
	users    Users
	items    Items
	bookings Bookings
	now      func() time.Time
}

func New(r Repo, users Users, items Items, bookings Bookings) Service {
	return &service{r: r, users: users, items: items, bookings: bookings, now: time.Now}
}

func (s *service) Add(ctx context.Context, authorID, itemID int64, text string) (*CommentOut, error) {
	author, err := s.users.ByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}

	item, err := s.items.ByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}

	now := s.now()
	ok, err := s.bookings.HasCompleted(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.E(apperr.Invalid, "must have a completed booking to comment")
	}

	c := &model.Comment{
		ItemID:   itemID,
		AuthorID: authorID,
		Text:     text,
		Created:  now,
	}
	if err := s.r.Insert(ctx, c); err != nil {
		return nil, err
	}

	return &CommentOut{
		ID:         c.ID,
		Text:       c.Text,
		ItemID:     c.ItemID,
		AuthorName: author.Name,
		Created:    c.Created,
	}, nil
}
