// service/booking/bookingService.go
package bookingsvc

import (
	"context"
	"fmt"
	"time"

	"itemshare/model"
	bookingrepo "itemshare/repository/booking"
	"itemshare/util/apperr"
)

// dto

type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingOut is the wire shape of a booking. BookerID and ItemID repeat the
// nested ids as flat convenience fields; field order is part of the contract.
type BookingOut struct {
	ID       int64               `json:"id"`
	Item     ItemRef             `json:"item"`
	Start    time.Time           `json:"start"`
	End      time.Time           `json:"end"`
	Booker   UserRef             `json:"booker"`
	Status   model.BookingStatus `json:"status"`
	BookerID int64               `json:"bookerId"`
	ItemID   int64               `json:"itemId"`
}

// collaborators

type Repo interface {
	InsertWaiting(ctx context.Context, b *model.Booking) (bool, error)
	SetStatusIfWaiting(ctx context.Context, bookingID int64, st model.BookingStatus) (bool, error)
	ByID(ctx context.Context, bookingID int64) (*bookingrepo.Detail, error)
	ListByBooker(ctx context.Context, bookerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error)
	ListByOwner(ctx context.Context, ownerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Items interface {
	ByID(ctx context.Context, id int64) (*model.Item, error)
}

type Service interface {
	// Create books an item for [start, end) on behalf of bookerID.
	// The new booking starts in WAITING.
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*BookingOut, error)

	// SetApproval is the single allowed transition: WAITING to APPROVED or
	// REJECTED, by the item's owner. Both outcomes are terminal.
	SetApproval(ctx context.Context, ownerID, bookingID int64, approved bool) (*BookingOut, error)

	// ByID returns the booking to its booker or the item's owner; everyone
	// else is told it does not exist.
	ByID(ctx context.Context, callerID, bookingID int64) (*BookingOut, error)

	ListForBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]BookingOut, error)
	ListForOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]BookingOut, error)
}

type service struct {
	r     Repo
	users Users
	items Items
	now   func() time.Time
}

func New(r Repo, users Users, items Items) Service {
	return &service{r: r, users: users, items: items, now: time.Now}
}

func (s *service) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*BookingOut, error) {
	booker, err := s.users.ByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	if booker == nil {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}

	item, err := s.items.ByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}
	if !item.Available {
		return nil, apperr.E(apperr.Invalid, "item not available for booking")
	}
	// Owners get "not found" for their own items, not "forbidden": the item
	// is simply not bookable from their point of view.
	if item.OwnerID == bookerID {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}
	if !start.Before(end) {
		return nil, apperr.E(apperr.Invalid, "end must be after start")
	}

	b := &model.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
	}
	ok, err := s.r.InsertWaiting(ctx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The guarded insert re-checks availability and ownership; losing
		// here means the item changed under us between read and write.
		return nil, s.classifyRejectedInsert(ctx, itemID, bookerID)
	}

	out := toOut(&bookingrepo.Detail{
		Booking:     *b,
		ItemName:    item.Name,
		ItemOwnerID: item.OwnerID,
		BookerName:  booker.Name,
		BookerEmail: booker.Email,
	})
	return &out, nil
}

func (s *service) classifyRejectedInsert(ctx context.Context, itemID, bookerID int64) error {
	item, err := s.items.ByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.OwnerID == bookerID {
		return apperr.E(apperr.NotFound, "item not found")
	}
	return apperr.E(apperr.Invalid, "item not available for booking")
}

func (s *service) SetApproval(ctx context.Context, ownerID, bookingID int64, approved bool) (*BookingOut, error) {
	d, err := s.r.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.E(apperr.NotFound, "booking not found")
	}
	if d.ItemOwnerID != ownerID {
		return nil, apperr.E(apperr.NotFound, "caller is not the owner")
	}
	if d.Status != model.BookingWaiting {
		return nil, apperr.E(apperr.Invalid, "booking is not awaiting decision")
	}

	st := model.BookingRejected
	if approved {
		st = model.BookingApproved
	}
	ok, err := s.r.SetStatusIfWaiting(ctx, bookingID, st)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else decided first; the state machine is single-shot.
		return nil, apperr.E(apperr.Invalid, "booking is not awaiting decision")
	}

	d.Status = st
	out := toOut(d)
	return &out, nil
}

func (s *service) ByID(ctx context.Context, callerID, bookingID int64) (*BookingOut, error) {
	d, err := s.r.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.E(apperr.NotFound, "booking not found")
	}
	if d.BookerID != callerID && d.ItemOwnerID != callerID {
		return nil, apperr.E(apperr.NotFound, "caller is neither the booker nor the owner")
	}
	out := toOut(d)
	return &out, nil
}

func (s *service) ListForBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]BookingOut, error) {
	f, err := parseState(state)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, bookerID); err != nil {
		return nil, err
	}
	limit, offset := page(from, size)
	rows, err := s.r.ListByBooker(ctx, bookerID, f, s.now(), limit, offset)
	if err != nil {
		return nil, err
	}
	return toOutList(rows), nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]BookingOut, error) {
	f, err := parseState(state)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	limit, offset := page(from, size)
	rows, err := s.r.ListByOwner(ctx, ownerID, f, s.now(), limit, offset)
	if err != nil {
		return nil, err
	}
	return toOutList(rows), nil
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

// parseState matches the state filter case-sensitively against the six
// partition names.
func parseState(state string) (bookingrepo.Filter, error) {
	switch f := bookingrepo.Filter(state); f {
	case bookingrepo.FilterAll, bookingrepo.FilterCurrent, bookingrepo.FilterPast,
		bookingrepo.FilterFuture, bookingrepo.FilterWaiting, bookingrepo.FilterRejected:
		return f, nil
	default:
		return "", apperr.E(apperr.Invalid, fmt.Sprintf("Unknown state: %s", state))
	}
}

// page maps the boundary's (from, size) to limit/offset with floor-division
// page semantics: from is snapped down to a multiple of size.
func page(from, size int) (limit, offset int) {
	return size, from / size * size
}

func toOut(d *bookingrepo.Detail) BookingOut {
	return BookingOut{
		ID:       d.ID,
		Item:     ItemRef{ID: d.ItemID, Name: d.ItemName},
		Start:    d.Start,
		End:      d.End,
		Booker:   UserRef{ID: d.BookerID, Name: d.BookerName, Email: d.BookerEmail},
		Status:   d.Status,
		BookerID: d.BookerID,
		ItemID:   d.ItemID,
	}
}

func toOutList(rows []bookingrepo.Detail) []BookingOut {
	out := make([]BookingOut, 0, len(rows))
	for i := range rows {
		out = append(out, toOut(&rows[i]))
	}
	return out
}
