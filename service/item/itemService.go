// service/item/itemService.go
package itemsvc

import (
	"context"
	"strings"
	"time"

	"itemshare/model"
	commentrepo "itemshare/repository/comment"
	commentsvc "itemshare/service/comment"
	"itemshare/util/apperr"
)

// dto

type CreateIn struct {
	Name        string
	Description string
	Available   bool
	RequestID   *int64
}

// UpdateIn carries a partial update; nil fields (and blank strings) are
// left untouched.
type UpdateIn struct {
	Name        *string
	Description *string
	Available   *bool
}

// BookingRef is the owner-facing view of an approved booking in the item
// projection.
type BookingRef struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type ItemOut struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Available   bool                    `json:"available"`
	RequestID   *int64                  `json:"requestId,omitempty"`
	LastBooking *BookingRef             `json:"lastBooking"`
	NextBooking *BookingRef             `json:"nextBooking"`
	Comments    []commentsvc.CommentOut `json:"comments"`
}

// collaborators

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	Update(ctx context.Context, it *model.Item) error
	ByID(ctx context.Context, id int64) (*model.Item, error)
	ByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]model.Item, error)
	SearchAvailable(ctx context.Context, text string, limit, offset int) ([]model.Item, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Requests interface {
	ByID(ctx context.Context, id int64) (*model.Request, error)
}

type Bookings interface {
	ApprovedForItems(ctx context.Context, itemIDs []int64) ([]model.Booking, error)
}

type Comments interface {
	ForItems(ctx context.Context, itemIDs []int64) ([]commentrepo.Detail, error)
}

type Service interface {
	Create(ctx context.Context, ownerID int64, in CreateIn) (*ItemOut, error)
	// Update mutates name/description/available; owner only. A non-owner is
	// told the item does not exist.
	Update(ctx context.Context, callerID, itemID int64, in UpdateIn) (*ItemOut, error)
	// ByID returns the item with its comments; lastBooking/nextBooking are
	// populated only for the owner so borrowers cannot read the schedule.
	ByID(ctx context.Context, callerID, itemID int64) (*ItemOut, error)
	// ListByOwner projects all of the owner's items in one pass: approved
	// bookings and comments are fetched grouped, not per item.
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]ItemOut, error)
	Search(ctx context.Context, callerID int64, text string, from, size int) ([]ItemOut, error)
}

type service struct {
	r        Repo
	users    Users
	requests Requests
	bookings Bookings
	comments Comments
	now      func() time.Time
}

func New(r Repo, users Users, requests Requests, bookings Bookings, comments Comments) Service {
	return &service{
		r:        r,
		users:    users,
		requests: requests,
		bookings: bookings,
		comments: comments,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, ownerID int64, in CreateIn) (*ItemOut, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if in.RequestID != nil {
		req, err := s.requests.ByID(ctx, *in.RequestID)
		if err != nil {
			return nil, err
		}
		if req == nil {
			return nil, apperr.E(apperr.NotFound, "request not found")
		}
	}

	it := &model.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
	if err := s.r.Create(ctx, it); err != nil {
		return nil, err
	}
	out := bareOut(it)
	return &out, nil
}

func (s *service) Update(ctx context.Context, callerID, itemID int64, in UpdateIn) (*ItemOut, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	it, err := s.r.ByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}
	if it.OwnerID != callerID {
		return nil, apperr.E(apperr.NotFound, "caller is not the owner of the item")
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		it.Name = *in.Name
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		it.Description = *in.Description
	}
	if in.Available != nil {
		it.Available = *in.Available
	}
	if err := s.r.Update(ctx, it); err != nil {
		return nil, err
	}
	out := bareOut(it)
	return &out, nil
}

func (s *service) ByID(ctx context.Context, callerID, itemID int64) (*ItemOut, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	it, err := s.r.ByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}

	out := bareOut(it)
	comments, err := s.comments.ForItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	out.Comments = toCommentOuts(comments)

	if it.OwnerID != callerID {
		return &out, nil
	}

	approved, err := s.bookings.ApprovedForItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	now := s.now()
	out.LastBooking = lastBooking(approved, now)
	out.NextBooking = nextBooking(approved, now)
	return &out, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]ItemOut, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	limit, offset := page(from, size)
	items, err := s.r.ByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}

	approved, err := s.bookings.ApprovedForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	bookingsByItem := make(map[int64][]model.Booking)
	for _, b := range approved {
		bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
	}

	comments, err := s.comments.ForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]commentrepo.Detail)
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	now := s.now()
	out := make([]ItemOut, 0, len(items))
	for i := range items {
		o := bareOut(&items[i])
		o.Comments = toCommentOuts(commentsByItem[items[i].ID])
		o.LastBooking = lastBooking(bookingsByItem[items[i].ID], now)
		o.NextBooking = nextBooking(bookingsByItem[items[i].ID], now)
		out = append(out, o)
	}
	return out, nil
}

func (s *service) Search(ctx context.Context, callerID int64, text string, from, size int) ([]ItemOut, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []ItemOut{}, nil
	}
	limit, offset := page(from, size)
	items, err := s.r.SearchAvailable(ctx, text, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]ItemOut, 0, len(items))
	for i := range items {
		out = append(out, bareOut(&items[i]))
	}
	return out, nil
}

func (s *service) requireUser(ctx context.Context, userID int64) error {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.E(apperr.NotFound, "user not found")
	}
	return nil
}

func page(from, size int) (limit, offset int) {
	return size, from / size * size
}

// lastBooking picks the approved booking with the latest start that has
// already begun (start <= now).
func lastBooking(bs []model.Booking, now time.Time) *BookingRef {
	var last *model.Booking
	for i := range bs {
		if bs[i].Start.After(now) {
			continue
		}
		if last == nil || bs[i].Start.After(last.Start) {
			last = &bs[i]
		}
	}
	return toRef(last)
}

// nextBooking picks the earliest approved booking that has not begun yet;
// bs is expected sorted by start ascending.
func nextBooking(bs []model.Booking, now time.Time) *BookingRef {
	for i := range bs {
		if bs[i].Start.After(now) {
			return toRef(&bs[i])
		}
	}
	return nil
}

func toRef(b *model.Booking) *BookingRef {
	if b == nil {
		return nil
	}
	return &BookingRef{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

func bareOut(it *model.Item) ItemOut {
	return ItemOut{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		RequestID:   it.RequestID,
		Comments:    []commentsvc.CommentOut{},
	}
}

func toCommentOuts(rows []commentrepo.Detail) []commentsvc.CommentOut {
	out := make([]commentsvc.CommentOut, 0, len(rows))
	for _, c := range rows {
		out = append(out, commentsvc.CommentOut{
			ID:         c.ID,
			Text:       c.Text,
			ItemID:     c.ItemID,
			AuthorName: c.AuthorName,
			Created:    c.Created,
		})
	}
	return out
}
