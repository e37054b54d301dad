// repository/booking/bookingRepository.go
package bookingrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jmoiron/sqlx"

	"itemshare/model"
)

// Filter selects one temporal/status partition of a user's bookings.
// Values match the wire-level state names exactly.
type Filter string

const (
	FilterAll      Filter = "ALL"
	FilterCurrent  Filter = "CURRENT"
	FilterPast     Filter = "PAST"
	FilterFuture   Filter = "FUTURE"
	FilterWaiting  Filter = "WAITING"
	FilterRejected Filter = "REJECTED"
)

// Detail is a booking row joined with its item and booker.
type Detail struct {
	model.Booking
	ItemName    string `db:"item_name"`
	ItemOwnerID int64  `db:"item_owner_id"`
	BookerName  string `db:"booker_name"`
	BookerEmail string `db:"booker_email"`
}

type Repo interface {
	// InsertWaiting persists a new WAITING booking only if the item still
	// exists, is available and is not owned by the booker. The read and the
	// write are one statement, so no separate lock is needed. Returns false
	// when the guard rejected the insert.
	InsertWaiting(ctx context.Context, b *model.Booking) (bool, error)

	// SetStatusIfWaiting flips the status only while the booking is still
	// WAITING. Returns false when the booking is absent or already decided,
	// which makes a lost double-approval race indistinguishable from a
	// repeated call: both see zero rows affected.
	SetStatusIfWaiting(ctx context.Context, bookingID int64, st model.BookingStatus) (bool, error)

	ByID(ctx context.Context, bookingID int64) (*Detail, error)
	ListByBooker(ctx context.Context, bookerID int64, f Filter, now time.Time, limit, offset int) ([]Detail, error)
	ListByOwner(ctx context.Context, ownerID int64, f Filter, now time.Time, limit, offset int) ([]Detail, error)

	// ApprovedForItems returns every APPROVED booking of the given items,
	// ordered by start ascending, for the last/next projection.
	ApprovedForItems(ctx context.Context, itemIDs []int64) ([]model.Booking, error)

	// HasCompleted reports whether the user has at least one APPROVED
	// booking of the item that already ended.
	HasCompleted(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

var dialect = goqu.Dialect("postgres")

func (r *repo) InsertWaiting(ctx context.Context, b *model.Booking) (bool, error) {
	const q = `
		INSERT INTO bookings (item_id, booker_id, start_date, end_date, status)
		SELECT i.id, $2, $3, $4, 'WAITING'
		FROM items i
		WHERE i.id = $1
		  AND i.available
		  AND i.owner_id <> $2
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q, b.ItemID, b.BookerID, b.Start, b.End).Scan(&b.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	b.Status = model.BookingWaiting
	return true, nil
}

func (r *repo) SetStatusIfWaiting(ctx context.Context, bookingID int64, st model.BookingStatus) (bool, error) {
	const q = `
		UPDATE bookings
		SET status = $2
		WHERE id = $1
		  AND status = 'WAITING'`
	res, err := r.db.ExecContext(ctx, q, bookingID, string(st))
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff == 1, nil
}

func (r *repo) ByID(ctx context.Context, bookingID int64) (*Detail, error) {
	const q = `
		SELECT b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status,
		       i.name  AS item_name,
		       i.owner_id AS item_owner_id,
		       u.name  AS booker_name,
		       u.email AS booker_email
		FROM bookings b
		JOIN items i ON i.id = b.item_id
		JOIN users u ON u.id = b.booker_id
		WHERE b.id = $1`
	var d Detail
	err := r.db.GetContext(ctx, &d, q, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) ListByBooker(ctx context.Context, bookerID int64, f Filter, now time.Time, limit, offset int) ([]Detail, error) {
	return r.list(ctx, "b.booker_id", bookerID, f, now, limit, offset)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64, f Filter, now time.Time, limit, offset int) ([]Detail, error) {
	return r.list(ctx, "i.owner_id", ownerID, f, now, limit, offset)
}

func (r *repo) list(ctx context.Context, col string, userID int64, f Filter, now time.Time, limit, offset int) ([]Detail, error) {
	query, args, err := buildListQuery(col, userID, f, now, limit, offset)
	if err != nil {
		return nil, err
	}
	out := []Detail{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// buildListQuery renders one partition query. Every partition is ordered by
// start descending; CURRENT uses inclusive bounds, WAITING filters on status
// only (no additional start-date clause).
func buildListQuery(col string, userID int64, f Filter, now time.Time, limit, offset int) (string, []interface{}, error) {
	q := dialect.From(goqu.T("bookings").As("b")).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.item_id"), goqu.I("b.booker_id"),
			goqu.I("b.start_date"), goqu.I("b.end_date"), goqu.I("b.status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.owner_id").As("item_owner_id"),
			goqu.I("u.name").As("booker_name"),
			goqu.I("u.email").As("booker_email"),
		).
		Where(goqu.I(col).Eq(userID))

	switch f {
	case FilterAll:
		// no extra predicate
	case FilterCurrent:
		q = q.Where(goqu.I("b.start_date").Lte(now), goqu.I("b.end_date").Gte(now))
	case FilterPast:
		q = q.Where(goqu.I("b.end_date").Lt(now))
	case FilterFuture:
		q = q.Where(goqu.I("b.start_date").Gt(now))
	case FilterWaiting:
		q = q.Where(goqu.I("b.status").Eq(string(model.BookingWaiting)))
	case FilterRejected:
		q = q.Where(goqu.I("b.status").Eq(string(model.BookingRejected)))
	default:
		return "", nil, fmt.Errorf("unknown booking filter %q", f)
	}

	q = q.Order(goqu.I("b.start_date").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset))

	return q.Prepared(true).ToSQL()
}

func (r *repo) ApprovedForItems(ctx context.Context, itemIDs []int64) ([]model.Booking, error) {
	if len(itemIDs) == 0 {
		return []model.Booking{}, nil
	}
	query, args, err := dialect.From(goqu.T("bookings")).
		Select(
			goqu.C("id"), goqu.C("item_id"), goqu.C("booker_id"),
			goqu.C("start_date"), goqu.C("end_date"), goqu.C("status"),
		).
		Where(
			goqu.C("item_id").In(itemIDs),
			goqu.C("status").Eq(string(model.BookingApproved)),
		).
		Order(goqu.C("start_date").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []model.Booking{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) HasCompleted(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE booker_id = $1
			  AND item_id = $2
			  AND status = 'APPROVED'
			  AND end_date < $3
		)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, q, bookerID, itemID, now); err != nil {
		return false, err
	}
	return ok, nil
}
